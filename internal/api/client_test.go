package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/nakupi/internal/model"
)

func testServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestStatusErrorCarriesBackendMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail field", `{"detail": "Purchase not found"}`, "Purchase not found"},
		{"error field", `{"error": "bad token"}`, "bad token"},
		{"unparseable body", `<html>oops</html>`, "server returned status 400"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(test.body))
			}))

			client := NewClient(server.URL, "")
			_, err := client.ListPurchases(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %T: %v", err, err)
			}
			if statusErr.Error() != test.want {
				t.Errorf("got message %q, want %q", statusErr.Error(), test.want)
			}
		})
	}
}

func TestExpiredTokenBlocksRequest(t *testing.T) {
	requests := 0
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	client := NewClient(server.URL, token)
	if _, err := client.ListPurchases(context.Background()); err == nil {
		t.Fatal("expected error for expired token")
	} else if !strings.Contains(err.Error(), "expired") {
		t.Errorf("error should mention expiry, got %v", err)
	}
	if requests != 0 {
		t.Errorf("expired token must not reach the backend, saw %d requests", requests)
	}
}

func TestListPurchasesPagesThroughCollection(t *testing.T) {
	const total = 150
	var skips []string
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		skips = append(skips, r.URL.Query().Get("skip"))
		skip := 0
		fmt.Sscanf(r.URL.Query().Get("skip"), "%d", &skip)

		var items []map[string]any
		for i := skip; i < total && i < skip+pageLimit; i++ {
			items = append(items, map[string]any{
				"id":            fmt.Sprintf("p-%03d", i),
				"product_name":  fmt.Sprintf("Item %03d", i),
				"price":         1.0,
				"purchase_date": "2025-01-15",
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"items": items, "total": total})
	}))

	client := NewClient(server.URL, "")
	purchases, err := client.ListPurchases(context.Background())
	if err != nil {
		t.Fatalf("ListPurchases: %v", err)
	}
	if len(purchases) != total {
		t.Errorf("got %d purchases, want %d", len(purchases), total)
	}
	if len(skips) != 2 || skips[0] != "0" || skips[1] != "100" {
		t.Errorf("unexpected paging requests: %v", skips)
	}
}

func TestListPurchasesWarrantyFallback(t *testing.T) {
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{
				"id":            "p-1",
				"product_name":  "Blender",
				"price":         89.0,
				"purchase_date": "2025-03-01",
				"warranty":      map[string]any{"warranty_end": "2027-03-01"},
			}},
			"total": 1,
		})
	}))

	client := NewClient(server.URL, "")
	purchases, err := client.ListPurchases(context.Background())
	if err != nil {
		t.Fatalf("ListPurchases: %v", err)
	}
	if want := model.NewDate(2027, time.March, 1); !purchases[0].WarrantyExpiry.Equal(want) {
		t.Errorf("got warranty %v, want %v", purchases[0].WarrantyExpiry, want)
	}
}

func TestListPurchasesRejectsMalformedRecord(t *testing.T) {
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"id": "p-1", "price": 10.0}},
			"total": 1,
		})
	}))

	client := NewClient(server.URL, "")
	_, err := client.ListPurchases(context.Background())

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for record without product_name, got %v", err)
	}
}

func TestDeletePurchaseTreatsNotFoundAsSuccess(t *testing.T) {
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Purchase not found"})
	}))

	client := NewClient(server.URL, "")
	if err := client.DeletePurchase(context.Background(), "gone"); err != nil {
		t.Errorf("404 on delete must count as success, got %v", err)
	}
}

func TestDeletePurchaseOtherErrorsPropagate(t *testing.T) {
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "not yours"})
	}))

	client := NewClient(server.URL, "")
	err := client.DeletePurchase(context.Background(), "p-1")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 StatusError, got %v", err)
	}
}

func TestCreatePurchaseFillsNamesFromDraft(t *testing.T) {
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The backend echoes flat ids without nested names.
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "p-new",
			"product_name":  "Toaster",
			"price":         45.0,
			"purchase_date": "2025-02-01",
			"retailer_id":   "r-1",
			"brand_id":      "b-1",
		})
	}))

	client := NewClient(server.URL, "")
	draft := model.PurchaseDraft{
		Name:         "Toaster",
		Retailer:     "Local Shop",
		Brand:        "Breville",
		Price:        45,
		PurchaseDate: model.NewDate(2025, time.February, 1),
	}
	created, err := client.CreatePurchase(context.Background(), draft, "r-1", "b-1")
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if created.Retailer != "Local Shop" || created.Brand != "Breville" {
		t.Errorf("names not filled from draft: %+v", created)
	}
}

func TestUploadAttachment(t *testing.T) {
	var gotFilename, gotKind string
	var gotData []byte
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing upload: %v", err)
			return
		}
		gotKind = r.FormValue("file_type")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading file part: %v", err)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		buf := new(bytes.Buffer)
		buf.ReadFrom(file)
		gotData = buf.Bytes()
		w.WriteHeader(http.StatusCreated)
	}))

	client := NewClient(server.URL, "")
	content := strings.NewReader("%PDF-1.4 fake receipt")
	err := client.UploadAttachment(context.Background(), "p-1", AttachmentReceipt, "receipt.pdf", content)
	if err != nil {
		t.Fatalf("UploadAttachment: %v", err)
	}
	if gotKind != "receipt" || gotFilename != "receipt.pdf" {
		t.Errorf("got kind=%q filename=%q", gotKind, gotFilename)
	}
	if string(gotData) != "%PDF-1.4 fake receipt" {
		t.Error("file content altered for non-photo upload")
	}
}

func TestUploadAttachmentPreparesPhotos(t *testing.T) {
	var gotFilename string
	var gotData []byte
	server := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading file part: %v", err)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		buf := new(bytes.Buffer)
		buf.ReadFrom(file)
		gotData = buf.Bytes()
		w.WriteHeader(http.StatusCreated)
	}))

	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 12), G: uint8(y * 12), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}

	client := NewClient(server.URL, "")
	err := client.UploadAttachment(context.Background(), "p-1", AttachmentPhoto, "photo.png", &buf)
	if err != nil {
		t.Fatalf("UploadAttachment: %v", err)
	}
	if gotFilename != "photo.jpg" {
		t.Errorf("photo should be renamed to .jpg, got %q", gotFilename)
	}
	if len(gotData) < 2 || gotData[0] != 0xff || gotData[1] != 0xd8 {
		t.Error("uploaded photo is not JPEG encoded")
	}
}

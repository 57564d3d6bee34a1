package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/erazemk/nakupi/internal/model"
)

// pageLimit is the largest page size the backend allows per request.
const pageLimit = 100

type namedEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// purchaseRecord mirrors a purchase on the wire. The backend nests retailer
// and brand on list responses but returns flat IDs on create/update, and the
// warranty end date appears either inline or inside a warranty object.
type purchaseRecord struct {
	ID            string       `json:"id"`
	ProductName   string       `json:"product_name"`
	Brand         *namedEntity `json:"brand"`
	Retailer      *namedEntity `json:"retailer"`
	BrandID       string       `json:"brand_id"`
	RetailerID    string       `json:"retailer_id"`
	Price         float64      `json:"price"`
	PurchaseDate  string       `json:"purchase_date"`
	WarrantyExpiry string      `json:"warranty_expiry"`
	Warranty      *struct {
		WarrantyEnd string `json:"warranty_end"`
	} `json:"warranty"`
	ReturnDeadline string `json:"return_deadline"`
	ReturnPolicy   string `json:"return_policy"`
	Notes          string `json:"notes"`
	Tags           string `json:"tags"`
	TaxDeductible  bool   `json:"tax_deductible"`
	ModelNumber    string `json:"model_number"`
	SerialNumber   string `json:"serial_number"`
	Link           string `json:"link"`
	Quantity       int    `json:"quantity"`
}

// toPurchase validates and converts a wire record. Records without an id,
// name or purchase date are rejected rather than defaulted.
func (r purchaseRecord) toPurchase() (model.Purchase, error) {
	if r.ID == "" {
		return model.Purchase{}, &DecodeError{Reason: "purchase record has no id"}
	}
	if r.ProductName == "" {
		return model.Purchase{}, &DecodeError{Reason: fmt.Sprintf("purchase %s has no product_name", r.ID)}
	}
	if r.PurchaseDate == "" {
		return model.Purchase{}, &DecodeError{Reason: fmt.Sprintf("purchase %s has no purchase_date", r.ID)}
	}

	purchaseDate, err := model.ParseDate(r.PurchaseDate)
	if err != nil {
		return model.Purchase{}, &DecodeError{Reason: fmt.Sprintf("purchase %s: %v", r.ID, err)}
	}

	p := model.Purchase{
		ID:            r.ID,
		Name:          r.ProductName,
		Price:         r.Price,
		PurchaseDate:  purchaseDate,
		ReturnPolicy:  r.ReturnPolicy,
		Notes:         r.Notes,
		Tags:          r.Tags,
		TaxDeductible: r.TaxDeductible,
		ModelNumber:   r.ModelNumber,
		SerialNumber:  r.SerialNumber,
		Link:          r.Link,
		Quantity:      r.Quantity,
	}
	if p.Quantity < 1 {
		p.Quantity = 1
	}
	if r.Brand != nil {
		p.Brand = r.Brand.Name
	}
	if r.Retailer != nil {
		p.Retailer = r.Retailer.Name
	}

	warrantyEnd := r.WarrantyExpiry
	if warrantyEnd == "" && r.Warranty != nil {
		warrantyEnd = r.Warranty.WarrantyEnd
	}
	if warrantyEnd != "" {
		if p.WarrantyExpiry, err = model.ParseDate(warrantyEnd); err != nil {
			return model.Purchase{}, &DecodeError{Reason: fmt.Sprintf("purchase %s: %v", r.ID, err)}
		}
	}
	if r.ReturnDeadline != "" {
		if p.ReturnDeadline, err = model.ParseDate(r.ReturnDeadline); err != nil {
			return model.Purchase{}, &DecodeError{Reason: fmt.Sprintf("purchase %s: %v", r.ID, err)}
		}
	}

	return p, nil
}

// purchasePayload is the composite create/update body, with retailer and
// brand already resolved to backend identifiers.
type purchasePayload struct {
	ProductName    string  `json:"product_name"`
	Price          float64 `json:"price"`
	RetailerID     string  `json:"retailer_id,omitempty"`
	BrandID        string  `json:"brand_id,omitempty"`
	PurchaseDate   string  `json:"purchase_date"`
	WarrantyExpiry string  `json:"warranty_expiry,omitempty"`
	ReturnDeadline string  `json:"return_deadline,omitempty"`
	ReturnPolicy   string  `json:"return_policy,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	Tags           string  `json:"tags,omitempty"`
	TaxDeductible  bool    `json:"tax_deductible"`
	ModelNumber    string  `json:"model_number,omitempty"`
	SerialNumber   string  `json:"serial_number,omitempty"`
	Link           string  `json:"link,omitempty"`
	Quantity       int     `json:"quantity"`
}

func draftPayload(draft model.PurchaseDraft, retailerID, brandID string) purchasePayload {
	return purchasePayload{
		ProductName:    draft.Name,
		Price:          draft.Price,
		RetailerID:     retailerID,
		BrandID:        brandID,
		PurchaseDate:   draft.PurchaseDate.String(),
		WarrantyExpiry: draft.WarrantyExpiry.String(),
		ReturnDeadline: draft.ReturnDeadline.String(),
		ReturnPolicy:   draft.ReturnPolicy,
		Notes:          draft.Notes,
		Tags:           draft.Tags,
		TaxDeductible:  draft.TaxDeductible,
		ModelNumber:    draft.ModelNumber,
		SerialNumber:   draft.SerialNumber,
		Link:           draft.Link,
		Quantity:       draft.Quantity,
	}
}

type purchasePage struct {
	Items []purchaseRecord `json:"items"`
	Total int              `json:"total"`
}

// ListPurchases fetches the full purchase collection, paging through the
// backend until every record is in.
func (c *Client) ListPurchases(ctx context.Context) ([]model.Purchase, error) {
	var purchases []model.Purchase

	for skip := 0; ; skip += pageLimit {
		resp, err := c.do(ctx, http.MethodGet,
			fmt.Sprintf("/purchases/?skip=%d&limit=%d", skip, pageLimit), nil)
		if err != nil {
			return nil, fmt.Errorf("listing purchases: %w", err)
		}

		var page purchasePage
		if err := decode(resp, &page); err != nil {
			return nil, err
		}

		for _, record := range page.Items {
			p, err := record.toPurchase()
			if err != nil {
				return nil, err
			}
			purchases = append(purchases, p)
		}

		if len(page.Items) < pageLimit || len(purchases) >= page.Total {
			return purchases, nil
		}
	}
}

// CreatePurchase posts a new purchase and returns the canonical record.
// The backend echoes flat IDs only, so retailer and brand names are filled
// back in from the draft.
func (c *Client) CreatePurchase(ctx context.Context, draft model.PurchaseDraft, retailerID, brandID string) (model.Purchase, error) {
	resp, err := c.do(ctx, http.MethodPost, "/purchases/", draftPayload(draft, retailerID, brandID))
	if err != nil {
		return model.Purchase{}, fmt.Errorf("creating purchase: %w", err)
	}
	return c.decodePurchase(resp, draft)
}

// UpdatePurchase replaces an existing purchase and returns the canonical record.
func (c *Client) UpdatePurchase(ctx context.Context, id string, draft model.PurchaseDraft, retailerID, brandID string) (model.Purchase, error) {
	resp, err := c.do(ctx, http.MethodPut, "/purchases/"+id, draftPayload(draft, retailerID, brandID))
	if err != nil {
		return model.Purchase{}, fmt.Errorf("updating purchase: %w", err)
	}
	return c.decodePurchase(resp, draft)
}

func (c *Client) decodePurchase(resp *http.Response, draft model.PurchaseDraft) (model.Purchase, error) {
	var record purchaseRecord
	if err := decode(resp, &record); err != nil {
		return model.Purchase{}, err
	}
	p, err := record.toPurchase()
	if err != nil {
		return model.Purchase{}, err
	}
	if p.Retailer == "" {
		p.Retailer = draft.Retailer
	}
	if p.Brand == "" {
		p.Brand = draft.Brand
	}
	return p, nil
}

// DeletePurchase removes a purchase. A 404 counts as success: the end
// state, absence, is the same.
func (c *Client) DeletePurchase(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/purchases/"+id, nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("deleting purchase: %w", err)
	}
	resp.Body.Close()
	return nil
}

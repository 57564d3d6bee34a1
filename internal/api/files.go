package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/erazemk/nakupi/internal/imaging"
)

// AttachmentKind classifies a file uploaded for a purchase.
type AttachmentKind string

// Attachment kinds accepted by the backend.
const (
	AttachmentReceipt  AttachmentKind = "receipt"
	AttachmentManual   AttachmentKind = "manual"
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentWarranty AttachmentKind = "warranty"
	AttachmentOther    AttachmentKind = "other"
)

// UploadAttachment uploads a file for a purchase. Photos are downscaled and
// re-encoded locally first so phone-camera originals don't hit the backend's
// size limit.
func (c *Client) UploadAttachment(ctx context.Context, purchaseID string, kind AttachmentKind, filename string, file io.Reader) error {
	if kind == AttachmentPhoto {
		prepared, err := imaging.Prepare(file)
		if err != nil {
			return fmt.Errorf("preparing photo: %w", err)
		}
		file = bytes.NewReader(prepared.Data)
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("reading attachment: %w", err)
	}
	if err := form.WriteField("file_type", string(kind)); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/files/"+purchaseID+"/", &body)
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("uploading attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body, resp.StatusCode),
		}
	}
	return nil
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erazemk/nakupi/internal/model"
)

type retailerRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	IsBrand bool   `json:"is_brand"`
}

type brandRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListRetailers fetches all known retailers.
func (c *Client) ListRetailers(ctx context.Context) ([]model.Retailer, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/retailers/?limit=%d", pageLimit), nil)
	if err != nil {
		return nil, fmt.Errorf("listing retailers: %w", err)
	}

	var page struct {
		Items []retailerRecord `json:"items"`
	}
	if err := decode(resp, &page); err != nil {
		return nil, err
	}

	retailers := make([]model.Retailer, 0, len(page.Items))
	for _, r := range page.Items {
		if r.ID == "" || r.Name == "" {
			return nil, &DecodeError{Reason: "retailer record missing id or name"}
		}
		retailers = append(retailers, model.Retailer{ID: r.ID, Name: r.Name, URL: r.URL, IsBrand: r.IsBrand})
	}
	return retailers, nil
}

// CreateRetailer registers a new retailer by name.
func (c *Client) CreateRetailer(ctx context.Context, name string) (model.Retailer, error) {
	resp, err := c.do(ctx, http.MethodPost, "/retailers/", map[string]string{"name": name, "url": ""})
	if err != nil {
		return model.Retailer{}, fmt.Errorf("creating retailer: %w", err)
	}

	var r retailerRecord
	if err := decode(resp, &r); err != nil {
		return model.Retailer{}, err
	}
	if r.ID == "" {
		return model.Retailer{}, &DecodeError{Reason: "created retailer has no id"}
	}
	return model.Retailer{ID: r.ID, Name: r.Name, URL: r.URL, IsBrand: r.IsBrand}, nil
}

// ListBrands fetches all known brands.
func (c *Client) ListBrands(ctx context.Context) ([]model.Brand, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/brands/?limit=%d", pageLimit), nil)
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}

	var page struct {
		Items []brandRecord `json:"items"`
	}
	if err := decode(resp, &page); err != nil {
		return nil, err
	}

	brands := make([]model.Brand, 0, len(page.Items))
	for _, b := range page.Items {
		if b.ID == "" || b.Name == "" {
			return nil, &DecodeError{Reason: "brand record missing id or name"}
		}
		brands = append(brands, model.Brand{ID: b.ID, Name: b.Name, URL: b.URL})
	}
	return brands, nil
}

// CreateBrand registers a new brand by name.
func (c *Client) CreateBrand(ctx context.Context, name string) (model.Brand, error) {
	resp, err := c.do(ctx, http.MethodPost, "/brands/", map[string]string{"name": name, "url": ""})
	if err != nil {
		return model.Brand{}, fmt.Errorf("creating brand: %w", err)
	}

	var b brandRecord
	if err := decode(resp, &b); err != nil {
		return model.Brand{}, err
	}
	if b.ID == "" {
		return model.Brand{}, &DecodeError{Reason: "created brand has no id"}
	}
	return model.Brand{ID: b.ID, Name: b.Name, URL: b.URL}, nil
}

package model

import "strings"

// Purchase represents a single purchased product.
type Purchase struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Brand          string  `json:"brand,omitempty"`
	Retailer       string  `json:"retailer,omitempty"`
	Price          float64 `json:"price"`
	PurchaseDate   Date    `json:"purchase_date"`
	WarrantyExpiry Date    `json:"warranty_expiry"`
	ReturnDeadline Date    `json:"return_deadline"`
	ReturnPolicy   string  `json:"return_policy,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	Tags           string  `json:"tags,omitempty"`
	TaxDeductible  bool    `json:"tax_deductible"`
	ModelNumber    string  `json:"model_number,omitempty"`
	SerialNumber   string  `json:"serial_number,omitempty"`
	Link           string  `json:"link,omitempty"`
	Quantity       int     `json:"quantity"`
}

// TagList splits the comma-delimited tag field into trimmed tags.
func (p Purchase) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(p.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Retailer represents a seller a purchase was made from.
// A retailer may also be flagged as a brand.
type Retailer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IsBrand bool   `json:"is_brand"`
}

// Brand represents the manufacturer of a purchased product.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

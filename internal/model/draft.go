package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalid marks local validation failures. These are caught before any
// network call is made.
var ErrInvalid = errors.New("invalid purchase")

// PurchaseDraft is the editable form of a purchase, as entered in the
// add/edit form. Retailer and brand are plain names here; they are resolved
// to backend identifiers on submission.
type PurchaseDraft struct {
	Name           string
	Brand          string
	Retailer       string
	Price          float64
	PurchaseDate   Date
	WarrantyExpiry Date
	ReturnDeadline Date
	ReturnPolicy   string
	Notes          string
	Tags           string
	TaxDeductible  bool
	ModelNumber    string
	SerialNumber   string
	Link           string
	Quantity       int
}

// Normalize coerces the draft into submittable shape: trims names, takes the
// absolute value of a negative price, defaults quantity to 1, and clears
// warranty/return dates that fall before the purchase date.
func (d *PurchaseDraft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Brand = strings.TrimSpace(d.Brand)
	d.Retailer = strings.TrimSpace(d.Retailer)

	d.Price = math.Abs(d.Price)

	if d.Quantity < 1 {
		d.Quantity = 1
	}

	if !d.WarrantyExpiry.IsZero() && d.WarrantyExpiry.Before(d.PurchaseDate) {
		d.WarrantyExpiry = Date{}
	}
	if !d.ReturnDeadline.IsZero() && d.ReturnDeadline.Before(d.PurchaseDate) {
		d.ReturnDeadline = Date{}
	}
}

// Validate checks the required fields and the purchase-date invariant.
// Errors wrap ErrInvalid.
func (d PurchaseDraft) Validate(now time.Time) error {
	if d.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalid)
	}
	if d.Retailer == "" {
		return fmt.Errorf("%w: retailer is required", ErrInvalid)
	}
	if d.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: purchase date is required", ErrInvalid)
	}
	if d.PurchaseDate.After(DateOf(now)) {
		return fmt.Errorf("%w: purchase date cannot be in the future", ErrInvalid)
	}
	if d.Price <= 0 {
		return fmt.Errorf("%w: price is required", ErrInvalid)
	}
	return nil
}

package model

import (
	"errors"
	"testing"
	"time"
)

func validDraft() PurchaseDraft {
	return PurchaseDraft{
		Name:         "Laptop",
		Retailer:     "Amazon",
		Price:        999.99,
		PurchaseDate: NewDate(2025, time.March, 10),
	}
}

func TestValidateRequiredFields(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*PurchaseDraft)
	}{
		{"missing name", func(d *PurchaseDraft) { d.Name = "" }},
		{"missing retailer", func(d *PurchaseDraft) { d.Retailer = "" }},
		{"missing date", func(d *PurchaseDraft) { d.PurchaseDate = Date{} }},
		{"zero price", func(d *PurchaseDraft) { d.Price = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)
			err := draft.Validate(now)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if err := validDraft().Validate(now); err != nil {
		t.Errorf("valid draft rejected: %v", err)
	}
}

func TestValidateFuturePurchaseDate(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	draft := validDraft()
	draft.PurchaseDate = NewDate(2025, time.June, 2)
	if err := draft.Validate(now); err == nil {
		t.Error("expected error for future purchase date")
	}

	// Today itself is fine.
	draft.PurchaseDate = NewDate(2025, time.June, 1)
	if err := draft.Validate(now); err != nil {
		t.Errorf("today rejected: %v", err)
	}
}

func TestNormalizeCoercesNegativePrice(t *testing.T) {
	draft := validDraft()
	draft.Price = -49.99
	draft.Normalize()
	if draft.Price != 49.99 {
		t.Errorf("expected 49.99, got %v", draft.Price)
	}
}

func TestNormalizeDefaultsQuantity(t *testing.T) {
	draft := validDraft()
	draft.Normalize()
	if draft.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", draft.Quantity)
	}

	draft.Quantity = 3
	draft.Normalize()
	if draft.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", draft.Quantity)
	}
}

func TestNormalizeClearsOutOfOrderDates(t *testing.T) {
	draft := validDraft()
	draft.WarrantyExpiry = NewDate(2025, time.January, 1) // before purchase
	draft.ReturnDeadline = NewDate(2025, time.April, 1)   // after purchase
	draft.Normalize()

	if !draft.WarrantyExpiry.IsZero() {
		t.Errorf("expected warranty before purchase date to be cleared, got %v", draft.WarrantyExpiry)
	}
	if draft.ReturnDeadline.IsZero() {
		t.Error("expected valid return deadline to be kept")
	}
}

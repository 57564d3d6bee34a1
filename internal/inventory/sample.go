package inventory

import (
	"fmt"
	"time"

	"github.com/erazemk/nakupi/internal/model"
)

// SampleData returns a fixed placeholder collection, shown when the backend
// is unreachable and no cached snapshot exists, so the list renders
// populated instead of empty. Deterministic: same output on every call.
func SampleData() []model.Purchase {
	products := []struct {
		name     string
		brand    string
		retailer string
		price    float64
		date     model.Date
		tax      bool
	}{
		{"iPhone 15 Pro", "Apple", "Apple Store", 999, model.NewDate(2024, time.July, 3), false},
		{"Galaxy S24", "Samsung", "Amazon", 899, model.NewDate(2024, time.July, 19), false},
		{"MacBook Pro 16\"", "Apple", "Apple Store", 2499, model.NewDate(2024, time.August, 5), true},
		{"WH-1000XM5 Headphones", "Sony", "Amazon", 399, model.NewDate(2024, time.August, 22), false},
		{"iPad Air", "Apple", "eBay", 599, model.NewDate(2024, time.September, 8), false},
		{"XPS 13", "Dell", "Dell", 1299, model.NewDate(2024, time.September, 27), true},
		{"27\" Gaming Monitor", "LG", "Amazon", 499, model.NewDate(2024, time.October, 10), true},
		{"Watch Series 9", "Apple", "Apple Store", 399, model.NewDate(2024, time.October, 30), false},
		{"PlayStation 5", "Sony", "Walmart", 499, model.NewDate(2024, time.November, 12), false},
		{"Billy Bookshelf", "IKEA", "IKEA", 79.99, model.NewDate(2024, time.November, 28), false},
		{"Smart Speaker", "Bose", "Amazon", 199, model.NewDate(2024, time.December, 9), false},
		{"55\" QLED TV", "Samsung", "Walmart", 1299, model.NewDate(2024, time.December, 23), false},
		{"AirPods Pro Max", "Apple", "Apple Store", 549, model.NewDate(2025, time.January, 4), false},
		{"Mechanical Keyboard", "Corsair", "Amazon", 149, model.NewDate(2025, time.January, 17), true},
		{"Wireless Mouse", "Logitech", "Amazon", 59.99, model.NewDate(2025, time.January, 29), true},
	}

	purchases := make([]model.Purchase, len(products))
	for i, p := range products {
		purchases[i] = model.Purchase{
			ID:            fmt.Sprintf("sample-%02d", i+1),
			Name:          p.name,
			Brand:         p.brand,
			Retailer:      p.retailer,
			Price:         p.price,
			PurchaseDate:  p.date,
			TaxDeductible: p.tax,
			Quantity:      1,
		}
	}
	return purchases
}

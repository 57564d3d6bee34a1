package inventory

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erazemk/nakupi/internal/model"
)

// PageSize is the fixed number of purchases per page.
const PageSize = 10

// windowSize is the width of the visible pagination window.
const windowSize = 5

// PageEllipsis marks a gap in the visible page numbers.
const PageEllipsis = -1

// DateFilter selects a predefined purchase-date bucket.
type DateFilter string

// Date filter buckets. Week runs from Monday of the current week through
// today, month and year cover the current calendar month and year up to
// today. Anything unrecognized passes everything.
const (
	DateAny    DateFilter = ""
	DateWeek   DateFilter = "week"
	DateMonth  DateFilter = "month"
	DateYear   DateFilter = "year"
	DateCustom DateFilter = "custom"
)

// Filters holds the search and date criteria for the purchase list.
type Filters struct {
	Query string
	Date  DateFilter

	// Custom range bounds, inclusive. If either is unset, the custom
	// filter passes everything.
	From model.Date
	To   model.Date
}

// Direction is a sort order.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort holds the active sort key and direction.
type Sort struct {
	Field     string
	Direction Direction
}

// Sortable purchase fields.
const (
	FieldName     = "name"
	FieldBrand    = "brand"
	FieldRetailer = "retailer"
	FieldPrice    = "price"
	FieldDate     = "purchase_date"
	FieldQuantity = "quantity"
	FieldTax      = "tax_deductible"
)

// DefaultSort is newest purchases first.
var DefaultSort = Sort{Field: FieldDate, Direction: Descending}

// Stats summarizes the full collection, independent of active filters.
type Stats struct {
	Count         int
	TotalSpending float64
	TaxDeductible int
}

// View is the derived, render-ready state of the purchase list.
type View struct {
	Items        []model.Purchase // the visible page
	Filtered     int              // purchases matching the active filters
	Page         int
	TotalPages   int
	VisiblePages []int
	Stats        Stats
}

// Project derives a complete view from the collection and the current
// filter, sort and page parameters. today anchors the date buckets.
func Project(items []model.Purchase, filters Filters, sortBy Sort, page int, today model.Date) View {
	filtered := SortPurchases(FilterPurchases(items, filters, today), sortBy)
	pageItems, totalPages, page := Paginate(filtered, page)
	return View{
		Items:        pageItems,
		Filtered:     len(filtered),
		Page:         page,
		TotalPages:   totalPages,
		VisiblePages: VisiblePages(page, totalPages),
		Stats:        Summarize(items),
	}
}

// FilterPurchases returns the purchases matching the search query and date
// filter. The query is a case-insensitive substring match against name and
// brand; an empty query matches everything.
func FilterPurchases(items []model.Purchase, filters Filters, today model.Date) []model.Purchase {
	query := strings.ToLower(strings.TrimSpace(filters.Query))

	matched := make([]model.Purchase, 0, len(items))
	for _, p := range items {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Brand), query) {
			continue
		}
		if !matchesDate(p.PurchaseDate, filters, today) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

// matchesDate applies the date bucket. Comparisons are whole calendar days.
func matchesDate(d model.Date, filters Filters, today model.Date) bool {
	switch filters.Date {
	case DateWeek:
		// Monday of the current week through today, inclusive.
		monday := model.DateOf(today.AddDate(0, 0, -mondayOffset(today)))
		return !d.Before(monday) && !d.After(today)
	case DateMonth:
		return d.Year() == today.Year() && d.Month() == today.Month() && !d.After(today)
	case DateYear:
		return d.Year() == today.Year() && !d.After(today)
	case DateCustom:
		if filters.From.IsZero() || filters.To.IsZero() {
			return true
		}
		return !d.Before(filters.From) && !d.After(filters.To)
	default:
		return true
	}
}

// mondayOffset returns how many days back the week's Monday is.
func mondayOffset(d model.Date) int {
	return (int(d.Weekday()) + 6) % 7
}

// SortPurchases returns a sorted copy. Numeric fields compare numerically,
// the tax flag as 0/1, everything else as locale-aware strings. Unknown
// fields leave the order untouched.
func SortPurchases(items []model.Purchase, s Sort) []model.Purchase {
	sorted := make([]model.Purchase, len(items))
	copy(sorted, items)

	collator := collate.New(language.Und, collate.Loose)

	sort.SliceStable(sorted, func(i, j int) bool {
		if s.Direction == Descending {
			i, j = j, i
		}
		return lessByField(collator, sorted[i], sorted[j], s.Field)
	})
	return sorted
}

func lessByField(collator *collate.Collator, a, b model.Purchase, field string) bool {
	switch field {
	case FieldPrice:
		return a.Price < b.Price
	case FieldQuantity:
		return a.Quantity < b.Quantity
	case FieldTax:
		return !a.TaxDeductible && b.TaxDeductible
	case FieldName:
		return collator.CompareString(a.Name, b.Name) < 0
	case FieldBrand:
		return collator.CompareString(a.Brand, b.Brand) < 0
	case FieldRetailer:
		return collator.CompareString(a.Retailer, b.Retailer) < 0
	case FieldDate:
		// ISO dates order correctly as strings.
		return a.PurchaseDate.String() < b.PurchaseDate.String()
	default:
		return false
	}
}

// Paginate slices the filtered collection into the requested page. The page
// is clamped into [1, totalPages] so a stale page number never yields an
// empty view.
func Paginate(filtered []model.Purchase, page int) (items []model.Purchase, totalPages, clamped int) {
	totalPages = (len(filtered) + PageSize - 1) / PageSize

	clamped = page
	if clamped < 1 {
		clamped = 1
	}
	if totalPages > 0 && clamped > totalPages {
		clamped = totalPages
	}

	start := (clamped - 1) * PageSize
	end := start + PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], totalPages, clamped
}

// VisiblePages computes the pagination strip: a window of up to five pages
// centered on the current page, clamped at both ends, with page 1 and the
// last page added behind PageEllipsis gaps when the window doesn't reach
// them.
func VisiblePages(current, total int) []int {
	half := windowSize / 2

	start := current - half
	if start < 1 {
		start = 1
	}
	end := start + windowSize - 1
	if end > total {
		end = total
	}
	if end-start < windowSize-1 {
		start = end - windowSize + 1
		if start < 1 {
			start = 1
		}
	}

	var pages []int
	if start > 1 {
		pages = append(pages, 1)
		if start > 2 {
			pages = append(pages, PageEllipsis)
		}
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	if end < total {
		if end < total-1 {
			pages = append(pages, PageEllipsis)
		}
		pages = append(pages, total)
	}
	return pages
}

// Summarize computes collection-level statistics.
func Summarize(items []model.Purchase) Stats {
	stats := Stats{Count: len(items)}
	for _, p := range items {
		stats.TotalSpending += p.Price
		if p.TaxDeductible {
			stats.TaxDeductible++
		}
	}
	return stats
}

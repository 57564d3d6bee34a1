// Package inventory implements the purchase-list view-model: it owns the
// local copy of the purchase collection, derives the filtered, sorted and
// paginated view, and mediates create/update/delete against the backend.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/nakupi/internal/api"
	"github.com/erazemk/nakupi/internal/model"
	"github.com/erazemk/nakupi/internal/notify"
	"github.com/erazemk/nakupi/internal/store"
)

// Inventory is the purchase-list view-model. Methods are not safe for
// concurrent use; only one user-initiated operation runs at a time.
type Inventory struct {
	client   *api.Client
	notifier notify.Notifier
	db       *sql.DB // optional local cache; nil disables it
	now      func() time.Time

	items     []model.Purchase
	retailers []model.Retailer
	brands    []model.Brand

	filters Filters
	sortBy  Sort
	page    int

	filtered []model.Purchase // filter+sort applied, before paging
	view     View
}

// New creates a view-model around the given API client. notifier receives
// user-facing notifications (nil logs them). cacheDB, when non-nil, persists
// snapshots and serves as the offline fallback.
func New(client *api.Client, notifier notify.Notifier, cacheDB *sql.DB) *Inventory {
	if notifier == nil {
		notifier = notify.Logger{}
	}
	inv := &Inventory{
		client:   client,
		notifier: notifier,
		db:       cacheDB,
		now:      time.Now,
		sortBy:   DefaultSort,
		page:     1,
	}
	inv.recompute()
	return inv
}

// View returns the current derived view.
func (inv *Inventory) View() View {
	return inv.view
}

// Items returns the full local collection, unfiltered.
func (inv *Inventory) Items() []model.Purchase {
	return inv.items
}

// Load fetches the full collection from the backend and replaces local
// state. On failure it keeps the UI populated by substituting the last
// cached snapshot, or the sample dataset if there is none, and returns the
// error. No automatic retry.
func (inv *Inventory) Load(ctx context.Context) error {
	items, err := inv.client.ListPurchases(ctx)
	if err != nil {
		slog.Error("loading purchases", "error", err)
		inv.notifier.Notify(notify.Error, "Failed to load purchases: "+err.Error())
		inv.items = inv.fallback(ctx)
		inv.page = 1
		inv.recompute()
		return err
	}

	inv.items = items
	inv.refreshReferences(ctx)
	inv.saveSnapshot(ctx)
	inv.page = 1
	inv.recompute()
	return nil
}

// fallback returns the cached snapshot if one exists, else the sample data.
func (inv *Inventory) fallback(ctx context.Context) []model.Purchase {
	if inv.db != nil {
		cached, fetchedAt, err := store.LoadSnapshot(ctx, inv.db)
		if err != nil {
			slog.Warn("loading cached snapshot", "error", err)
		} else if len(cached) > 0 {
			slog.Info("using cached snapshot", "purchases", len(cached), "fetched_at", fetchedAt)
			return cached
		}
	}
	return SampleData()
}

// refreshReferences updates the retailer/brand caches used by get-or-create
// resolution. Best effort: a failure here only delays resolution.
func (inv *Inventory) refreshReferences(ctx context.Context) {
	if retailers, err := inv.client.ListRetailers(ctx); err != nil {
		slog.Warn("refreshing retailers", "error", err)
	} else {
		inv.retailers = retailers
	}
	if brands, err := inv.client.ListBrands(ctx); err != nil {
		slog.Warn("refreshing brands", "error", err)
	} else {
		inv.brands = brands
	}
}

func (inv *Inventory) saveSnapshot(ctx context.Context) {
	if inv.db == nil {
		return
	}
	if err := store.SaveSnapshot(ctx, inv.db, inv.items); err != nil {
		slog.Warn("saving snapshot", "error", err)
	}
}

// SetFilter replaces the search and date criteria, resets to page 1 and
// recomputes the view. Idempotent for identical inputs.
func (inv *Inventory) SetFilter(filters Filters) {
	inv.filters = filters
	inv.page = 1
	inv.recompute()
}

// Filters returns the active filter criteria.
func (inv *Inventory) Filters() Filters {
	return inv.filters
}

// SortBy sets the sort key. Sorting by the active field flips the
// direction; a new field starts ascending. Resets to page 1.
func (inv *Inventory) SortBy(field string) {
	if inv.sortBy.Field == field {
		if inv.sortBy.Direction == Ascending {
			inv.sortBy.Direction = Descending
		} else {
			inv.sortBy.Direction = Ascending
		}
	} else {
		inv.sortBy = Sort{Field: field, Direction: Ascending}
	}
	inv.page = 1
	inv.recompute()
}

// Sort returns the active sort key and direction.
func (inv *Inventory) Sort() Sort {
	return inv.sortBy
}

// SetSort replaces the sort key and direction outright (used to restore
// saved preferences). Resets to page 1.
func (inv *Inventory) SetSort(s Sort) {
	if s.Field == "" {
		s = DefaultSort
	}
	if s.Direction != Descending {
		s.Direction = Ascending
	}
	inv.sortBy = s
	inv.page = 1
	inv.recompute()
}

// GoToPage switches to page n. Out-of-range pages are ignored. Only the
// visible slice changes; filtering and sorting are not redone.
func (inv *Inventory) GoToPage(n int) {
	if n < 1 || n > inv.view.TotalPages {
		return
	}
	inv.page = n
	inv.repage()
}

// Create validates the draft, resolves retailer and brand, submits the
// purchase and merges the canonical record into local state. Local state is
// untouched on any failure.
func (inv *Inventory) Create(ctx context.Context, draft model.PurchaseDraft) (model.Purchase, error) {
	draft.Normalize()
	if err := draft.Validate(inv.now()); err != nil {
		inv.notifier.Notify(notify.Warning, err.Error())
		return model.Purchase{}, err
	}

	retailerID, brandID, err := inv.resolveReferences(ctx, draft)
	if err != nil {
		inv.notifier.Notify(notify.Error, err.Error())
		return model.Purchase{}, err
	}

	created, err := inv.client.CreatePurchase(ctx, draft, retailerID, brandID)
	if err != nil {
		inv.notifier.Notify(notify.Error, err.Error())
		return model.Purchase{}, err
	}

	inv.items = append(inv.items, created)
	inv.recompute()
	inv.saveSnapshot(ctx)
	inv.notifier.Notify(notify.Success, fmt.Sprintf("Purchase %q added", created.Name))
	return created, nil
}

// Update works like Create but replaces the purchase with the given id.
func (inv *Inventory) Update(ctx context.Context, id string, draft model.PurchaseDraft) error {
	draft.Normalize()
	if err := draft.Validate(inv.now()); err != nil {
		inv.notifier.Notify(notify.Warning, err.Error())
		return err
	}

	retailerID, brandID, err := inv.resolveReferences(ctx, draft)
	if err != nil {
		inv.notifier.Notify(notify.Error, err.Error())
		return err
	}

	updated, err := inv.client.UpdatePurchase(ctx, id, draft, retailerID, brandID)
	if err != nil {
		inv.notifier.Notify(notify.Error, err.Error())
		return err
	}

	replaced := false
	for i := range inv.items {
		if inv.items[i].ID == updated.ID {
			inv.items[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		inv.items = append(inv.items, updated)
	}
	inv.recompute()
	inv.saveSnapshot(ctx)
	inv.notifier.Notify(notify.Success, fmt.Sprintf("Purchase %q updated", updated.Name))
	return nil
}

// Remove deletes the purchase with the given id. The caller is expected to
// have confirmed the deletion with the user. The purchase leaves local
// state only once the backend call succeeds; a backend 404 counts as
// success since the end state is the same.
func (inv *Inventory) Remove(ctx context.Context, id string) error {
	if err := inv.client.DeletePurchase(ctx, id); err != nil {
		inv.notifier.Notify(notify.Error, err.Error())
		return err
	}

	kept := inv.items[:0]
	for _, p := range inv.items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	inv.items = kept
	inv.recompute()
	inv.saveSnapshot(ctx)
	inv.notifier.Notify(notify.Success, "Purchase deleted")
	return nil
}

// resolveReferences turns the draft's retailer and brand names into backend
// identifiers, creating them remotely when no case-insensitive match exists
// in the local caches. Brand is optional.
func (inv *Inventory) resolveReferences(ctx context.Context, draft model.PurchaseDraft) (retailerID, brandID string, err error) {
	retailerID, err = inv.resolveRetailer(ctx, draft.Retailer)
	if err != nil {
		return "", "", err
	}
	brandID, err = inv.resolveBrand(ctx, draft.Brand)
	if err != nil {
		return "", "", err
	}
	return retailerID, brandID, nil
}

func (inv *Inventory) resolveRetailer(ctx context.Context, name string) (string, error) {
	if inv.retailers == nil {
		if retailers, err := inv.client.ListRetailers(ctx); err == nil {
			inv.retailers = retailers
		}
	}
	for _, r := range inv.retailers {
		if strings.EqualFold(r.Name, name) {
			return r.ID, nil
		}
	}

	created, err := inv.client.CreateRetailer(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolving retailer %q: %w", name, err)
	}
	inv.retailers = append(inv.retailers, created)
	return created.ID, nil
}

func (inv *Inventory) resolveBrand(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if inv.brands == nil {
		if brands, err := inv.client.ListBrands(ctx); err == nil {
			inv.brands = brands
		}
	}
	for _, b := range inv.brands {
		if strings.EqualFold(b.Name, name) {
			return b.ID, nil
		}
	}

	created, err := inv.client.CreateBrand(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolving brand %q: %w", name, err)
	}
	inv.brands = append(inv.brands, created)
	return created.ID, nil
}

// recompute runs the full projection pipeline: filter, sort, paginate.
func (inv *Inventory) recompute() {
	today := model.DateOf(inv.now())
	inv.filtered = SortPurchases(FilterPurchases(inv.items, inv.filters, today), inv.sortBy)
	inv.repage()
}

// repage re-slices the already filtered and sorted collection.
func (inv *Inventory) repage() {
	items, totalPages, page := Paginate(inv.filtered, inv.page)
	inv.page = page
	inv.view = View{
		Items:        items,
		Filtered:     len(inv.filtered),
		Page:         page,
		TotalPages:   totalPages,
		VisiblePages: VisiblePages(page, totalPages),
		Stats:        Summarize(inv.items),
	}
}

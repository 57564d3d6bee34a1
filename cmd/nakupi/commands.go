package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/erazemk/nakupi/internal/api"
	"github.com/erazemk/nakupi/internal/inventory"
	"github.com/erazemk/nakupi/internal/model"
	"github.com/erazemk/nakupi/internal/store"
)

func (a *app) runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)

	var search string
	fs.StringVar(&search, "search", "", "")
	fs.StringVar(&search, "s", "", "")

	var dateRange string
	fs.StringVar(&dateRange, "range", "", "")
	fs.StringVar(&dateRange, "r", "", "")

	var from, to string
	fs.StringVar(&from, "from", "", "")
	fs.StringVar(&to, "to", "", "")

	var sortField string
	fs.StringVar(&sortField, "sort", "", "")

	var desc bool
	fs.BoolVar(&desc, "desc", false, "")

	var page int
	fs.IntVar(&page, "page", 1, "")
	fs.IntVar(&page, "p", 1, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: nakupi list [flags]

Flags:
  -s, -search <text>   match against product and brand names
  -r, -range <bucket>  week, month or year
  -from <date>         custom range start (YYYY-MM-DD)
  -to <date>           custom range end (YYYY-MM-DD)
  -sort <field>        name, brand, retailer, price, purchase_date, quantity, tax_deductible
  -desc                sort descending
  -p, -page <n>        page to show (default: 1)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	filters := inventory.Filters{Query: search}
	switch dateRange {
	case "":
	case "week", "month", "year":
		filters.Date = inventory.DateFilter(dateRange)
	default:
		return fmt.Errorf("unknown range %q, expected week, month or year", dateRange)
	}
	if from != "" || to != "" {
		if dateRange != "" {
			return fmt.Errorf("-from/-to cannot be combined with -range")
		}
		filters.Date = inventory.DateCustom
		var err error
		if from != "" {
			if filters.From, err = model.ParseDate(from); err != nil {
				return fmt.Errorf("parsing -from: %w", err)
			}
		}
		if to != "" {
			if filters.To, err = model.ParseDate(to); err != nil {
				return fmt.Errorf("parsing -to: %w", err)
			}
		}
	}

	if err := a.inv.Load(ctx); err != nil {
		// The view-model already substituted cached or sample data; show it.
		fmt.Fprintln(os.Stderr, "showing offline data")
	}

	a.inv.SetFilter(filters)
	if sortField != "" {
		direction := inventory.Ascending
		if desc {
			direction = inventory.Descending
		}
		a.inv.SetSort(inventory.Sort{Field: sortField, Direction: direction})
		a.savePreferredSort(ctx)
	}
	a.inv.GoToPage(page)

	a.printView(a.inv.View())
	return nil
}

// savePreferredSort persists the active sort so the next run starts with it.
func (a *app) savePreferredSort(ctx context.Context) {
	if a.cache == nil {
		return
	}
	sort := a.inv.Sort()
	a.prefs.SortField = sort.Field
	a.prefs.SortDirection = string(sort.Direction)
	if err := store.SavePreferences(ctx, a.cache, a.prefs); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving sort preference: %v\n", err)
	}
}

func (a *app) printView(view inventory.View) {
	if view.Filtered == 0 {
		fmt.Println("No purchases found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBRAND\tRETAILER\tPRICE\tDATE\tQTY\tTAX")
	for _, p := range view.Items {
		tax := ""
		if p.TaxDeductible {
			tax = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			p.Name, p.Brand, p.Retailer,
			a.formatPrice(p.Price), a.formatDate(p.PurchaseDate), p.Quantity, tax)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Page %d/%d  %s\n", view.Page, view.TotalPages, pageStrip(view))
	fmt.Printf("%d of %d purchases · total %s · %d tax deductible\n",
		view.Filtered, view.Stats.Count,
		a.formatPrice(view.Stats.TotalSpending), view.Stats.TaxDeductible)
}

// pageStrip renders the pagination controls, e.g. "1 … 4 [5] 6 … 10".
func pageStrip(view inventory.View) string {
	parts := make([]string, 0, len(view.VisiblePages))
	for _, p := range view.VisiblePages {
		switch {
		case p == inventory.PageEllipsis:
			parts = append(parts, "…")
		case p == view.Page:
			parts = append(parts, fmt.Sprintf("[%d]", p))
		default:
			parts = append(parts, fmt.Sprintf("%d", p))
		}
	}
	return strings.Join(parts, " ")
}

func (a *app) formatPrice(v float64) string {
	switch a.prefs.CurrencyCode {
	case "USD":
		return fmt.Sprintf("$%.2f", v)
	case "EUR":
		return fmt.Sprintf("%.2f €", v)
	case "GBP":
		return fmt.Sprintf("£%.2f", v)
	default:
		return fmt.Sprintf("%.2f %s", v, a.prefs.CurrencyCode)
	}
}

func (a *app) formatDate(d model.Date) string {
	if d.IsZero() {
		return ""
	}
	switch a.prefs.DateFormat {
	case "DD/MM/YYYY":
		return d.Format("02/01/2006")
	case "YYYY-MM-DD":
		return d.Format("2006-01-02")
	default: // MM/DD/YYYY
		return d.Format("01/02/2006")
	}
}

func (a *app) runAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)

	var draft model.PurchaseDraft
	fs.StringVar(&draft.Name, "name", "", "")
	fs.StringVar(&draft.Name, "n", "", "")
	fs.StringVar(&draft.Retailer, "retailer", "", "")
	fs.StringVar(&draft.Retailer, "r", "", "")
	fs.StringVar(&draft.Brand, "brand", "", "")
	fs.StringVar(&draft.Brand, "b", "", "")
	fs.Float64Var(&draft.Price, "price", 0, "")
	fs.Float64Var(&draft.Price, "p", 0, "")
	fs.IntVar(&draft.Quantity, "qty", 1, "")
	fs.StringVar(&draft.ReturnPolicy, "policy", "", "")
	fs.StringVar(&draft.Notes, "notes", "", "")
	fs.StringVar(&draft.Tags, "tags", "", "")
	fs.BoolVar(&draft.TaxDeductible, "deductible", false, "")
	fs.StringVar(&draft.ModelNumber, "model", "", "")
	fs.StringVar(&draft.SerialNumber, "serial", "", "")
	fs.StringVar(&draft.Link, "link", "", "")

	var date, warranty, returnBy string
	fs.StringVar(&date, "date", "", "")
	fs.StringVar(&date, "d", "", "")
	fs.StringVar(&warranty, "warranty", "", "")
	fs.StringVar(&returnBy, "return", "", "")

	var attach, kind string
	fs.StringVar(&attach, "attach", "", "")
	fs.StringVar(&kind, "kind", "receipt", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: nakupi add -name <name> -retailer <name> -price <amount> [flags]

Flags:
  -n, -name <text>       product name (required)
  -r, -retailer <name>   retailer name (required, created if unknown)
  -b, -brand <name>      brand name (created if unknown)
  -p, -price <amount>    price (required)
  -d, -date <date>       purchase date, YYYY-MM-DD (default: today)
  -warranty <date>       warranty end date
  -return <date>         return deadline
  -policy <text>         return policy
  -qty <n>               quantity (default: 1)
  -notes <text>          free-form notes
  -tags <a,b,c>          comma-separated tags
  -deductible            mark as tax deductible
  -model <text>          model number
  -serial <text>         serial number
  -link <url>            product page link
  -attach <path>         upload a file after creating
  -kind <type>           attachment type: receipt, manual, photo, warranty, other
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if date == "" {
		draft.PurchaseDate = model.DateOf(time.Now())
	} else if draft.PurchaseDate, err = model.ParseDate(date); err != nil {
		return fmt.Errorf("parsing -date: %w", err)
	}
	if warranty != "" {
		if draft.WarrantyExpiry, err = model.ParseDate(warranty); err != nil {
			return fmt.Errorf("parsing -warranty: %w", err)
		}
	}
	if returnBy != "" {
		if draft.ReturnDeadline, err = model.ParseDate(returnBy); err != nil {
			return fmt.Errorf("parsing -return: %w", err)
		}
	}

	created, err := a.inv.Create(ctx, draft)
	if err != nil {
		return err
	}

	if attach != "" {
		if err := a.uploadAttachment(ctx, created.ID, attach, kind); err != nil {
			return fmt.Errorf("purchase added, but attachment failed: %w", err)
		}
		fmt.Printf("Attached %s\n", attach)
	}
	return nil
}

func (a *app) uploadAttachment(ctx context.Context, purchaseID, path, kind string) error {
	switch api.AttachmentKind(kind) {
	case api.AttachmentReceipt, api.AttachmentManual, api.AttachmentPhoto,
		api.AttachmentWarranty, api.AttachmentOther:
	default:
		return fmt.Errorf("unknown attachment kind %q", kind)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return a.client.UploadAttachment(ctx, purchaseID, api.AttachmentKind(kind), filepath.Base(path), f)
}

func (a *app) runRemove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)

	var yes bool
	fs.BoolVar(&yes, "yes", false, "")
	fs.BoolVar(&yes, "y", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: nakupi rm [-y] <id>

Flags:
  -y, -yes   skip the confirmation prompt
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("rm expects exactly one purchase id")
	}
	id := fs.Arg(0)

	// Best effort: name the purchase in the prompt when the backend is up.
	label := id
	if err := a.inv.Load(ctx); err == nil {
		for _, p := range a.inv.Items() {
			if p.ID == id {
				label = fmt.Sprintf("%q (%s)", p.Name, id)
				break
			}
		}
	}

	if !yes && !confirm(fmt.Sprintf("Delete purchase %s?", label)) {
		fmt.Println("Aborted.")
		return nil
	}

	return a.inv.Remove(ctx, id)
}

// confirm asks a yes/no question on the terminal, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (a *app) runRetailers(ctx context.Context) error {
	retailers, err := a.client.ListRetailers(ctx)
	if err != nil {
		return fmt.Errorf("listing retailers: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, r := range retailers {
		fmt.Fprintf(w, "%s\t%s\n", r.ID, r.Name)
	}
	return w.Flush()
}

func (a *app) runBrands(ctx context.Context) error {
	brands, err := a.client.ListBrands(ctx)
	if err != nil {
		return fmt.Errorf("listing brands: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, b := range brands {
		fmt.Fprintf(w, "%s\t%s\n", b.ID, b.Name)
	}
	return w.Flush()
}

// Package engine implements the tagging engine: classifying transactions as
// tagged or untagged, suggesting tags from vendor history, applying tag edits
// and computing progress statistics.
package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mpoirier/tagflow/internal/common"
	"github.com/mpoirier/tagflow/internal/model"
)

// Engine holds the two lookup tables behind tag suggestions. It carries no
// row state: every operation receives the transaction table explicitly, so a
// session can round-trip rows through storage between calls.
type Engine struct {
	tags       *Counts
	vendorTags *VendorTable
}

// New creates an engine over the given frequency and association tables.
func New(tags *Counts, vendorTags *VendorTable) *Engine {
	if tags == nil {
		tags = NewCounts()
	}
	if vendorTags == nil {
		vendorTags = NewVendorTable()
	}
	return &Engine{tags: tags, vendorTags: vendorTags}
}

// Tags exposes the global tag frequency table.
func (e *Engine) Tags() *Counts { return e.tags }

// VendorTags exposes the vendor association table.
func (e *Engine) VendorTags() *VendorTable { return e.vendorTags }

// VendorSummary describes one vendor with untagged transactions.
type VendorSummary struct {
	Name   string
	Amount decimal.Decimal // Summed absolute amount of untagged rows
	Count  int
	Known  bool // Present in the vendor association table
}

// UntaggedVendors groups untagged rows by vendor, sums their absolute
// amounts and sorts descending by amount. Known vendors come first. This is
// a pure read.
func (e *Engine) UntaggedVendors(rows []model.Transaction) []VendorSummary {
	sums := make(map[string]*VendorSummary)
	var order []string
	for i := range rows {
		if rows[i].Tagged() {
			continue
		}
		s, ok := sums[rows[i].Vendor]
		if !ok {
			s = &VendorSummary{
				Name:   rows[i].Vendor,
				Amount: decimal.Zero,
				Known:  e.vendorTags.Known(rows[i].Vendor),
			}
			sums[rows[i].Vendor] = s
			order = append(order, rows[i].Vendor)
		}
		s.Amount = s.Amount.Add(rows[i].AmountAbs)
		s.Count++
	}

	summaries := make([]VendorSummary, 0, len(order))
	for _, name := range order {
		summaries = append(summaries, *sums[name])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Amount.GreaterThan(summaries[j].Amount)
	})

	// Known vendors first, amount order preserved within each partition.
	known := make([]VendorSummary, 0, len(summaries))
	unknown := make([]VendorSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.Known {
			known = append(known, s)
		} else {
			unknown = append(unknown, s)
		}
	}
	return append(known, unknown...)
}

// VendorAggregate sums the untagged transactions of one vendor.
type VendorAggregate struct {
	Total decimal.Decimal
	Count int
}

// Details lists the untagged transactions of the selected vendors together
// with per-vendor aggregates.
type Details struct {
	Transactions []model.Transaction
	Summary      map[string]VendorAggregate
}

// TransactionDetails returns the untagged rows of the selected vendors,
// sorted by date ascending then absolute amount descending. Row IDs stay
// valid for later apply and delete calls as long as the row is not removed.
func (e *Engine) TransactionDetails(rows []model.Transaction, vendors []string) Details {
	selected := make(map[string]struct{}, len(vendors))
	for _, v := range vendors {
		selected[v] = struct{}{}
	}

	details := Details{Summary: make(map[string]VendorAggregate)}
	for i := range rows {
		if rows[i].Tagged() {
			continue
		}
		if _, ok := selected[rows[i].Vendor]; !ok {
			continue
		}
		details.Transactions = append(details.Transactions, rows[i])
		agg := details.Summary[rows[i].Vendor]
		agg.Total = agg.Total.Add(rows[i].AmountAbs)
		agg.Count++
		details.Summary[rows[i].Vendor] = agg
	}

	sort.SliceStable(details.Transactions, func(i, j int) bool {
		a, b := details.Transactions[i], details.Transactions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.AmountAbs.GreaterThan(b.AmountAbs)
	})

	return details
}

// DayContext lists every transaction sharing a calendar day, largest first.
type DayContext struct {
	Transactions []model.Transaction
	Total        decimal.Decimal
	TaggedCount  int
}

// DailyContext returns all rows from the same day as the identified row,
// sorted by absolute amount descending, for review while tagging a single
// transaction.
func (e *Engine) DailyContext(rows []model.Transaction, id string) (DayContext, error) {
	idx := indexByID(rows, id)
	if idx < 0 {
		return DayContext{}, common.ErrNotFound
	}
	day := rows[idx].Day()

	ctx := DayContext{Total: decimal.Zero}
	for i := range rows {
		if !rows[i].Day().Equal(day) {
			continue
		}
		ctx.Transactions = append(ctx.Transactions, rows[i])
		ctx.Total = ctx.Total.Add(rows[i].AmountAbs)
		if rows[i].Tagged() {
			ctx.TaggedCount++
		}
	}
	sort.SliceStable(ctx.Transactions, func(i, j int) bool {
		return ctx.Transactions[i].AmountAbs.GreaterThan(ctx.Transactions[j].AmountAbs)
	})
	return ctx, nil
}

// ApplyToVendors sets the tag list of every untagged row belonging to one of
// the selected vendors. With no vendors or no tags it is a no-op returning
// zero. Already-tagged rows are never touched, so re-applying the same
// arguments affects zero rows.
func (e *Engine) ApplyToVendors(rows []model.Transaction, vendors, tags []string) int {
	if len(vendors) == 0 || len(tags) == 0 {
		return 0
	}
	selected := make(map[string]struct{}, len(vendors))
	for _, v := range vendors {
		selected[v] = struct{}{}
	}

	affected := 0
	for i := range rows {
		if rows[i].Tagged() {
			continue
		}
		if _, ok := selected[rows[i].Vendor]; !ok {
			continue
		}
		rows[i].Tags = append([]string{}, tags...)
		affected++
	}
	return affected
}

// ApplyToTransactions sets the tag list of the identified rows. Identifiers
// that no longer resolve, or resolve to an already-tagged row, are silently
// skipped: a stale selection is an expected race in an interactive session,
// not an error. Returns the affected count and the distinct vendors touched.
func (e *Engine) ApplyToTransactions(rows []model.Transaction, ids, tags []string) (int, []string) {
	if len(ids) == 0 || len(tags) == 0 {
		return 0, nil
	}

	affected := 0
	var vendors []string
	seen := make(map[string]struct{})
	for _, id := range ids {
		idx := indexByID(rows, id)
		if idx < 0 || rows[idx].Tagged() {
			continue
		}
		rows[idx].Tags = append([]string{}, tags...)
		affected++
		if _, ok := seen[rows[idx].Vendor]; !ok {
			seen[rows[idx].Vendor] = struct{}{}
			vendors = append(vendors, rows[idx].Vendor)
		}
	}
	return affected, vendors
}

// RecordUsage bumps the frequency tables after a successful apply: each tag's
// global count once per call (not per affected row), and each (vendor, tag)
// pair once. Persisting the tables is the caller's responsibility.
func (e *Engine) RecordUsage(tags, vendors []string) {
	for _, tag := range tags {
		e.tags.Inc(tag)
	}
	for _, vendor := range vendors {
		for _, tag := range tags {
			e.vendorTags.Inc(vendor, tag)
		}
	}
}

// CorrectAmount overwrites the identified row's amount, preserving its sign.
// The new amount must be strictly positive; otherwise nothing is mutated.
func (e *Engine) CorrectAmount(rows []model.Transaction, id string, newAmount decimal.Decimal) error {
	if !newAmount.IsPositive() {
		return &common.ValidationError{Field: "amount", Reason: "must be strictly positive"}
	}
	idx := indexByID(rows, id)
	if idx < 0 {
		return common.ErrNotFound
	}

	if rows[idx].Amount.IsNegative() {
		rows[idx].Amount = newAmount.Neg()
	} else {
		rows[idx].Amount = newAmount
	}
	rows[idx].AmountAbs = newAmount
	return nil
}

// Delete removes the identified row from the table. The frequency tables are
// left untouched: they are append-only history, not a live index.
func (e *Engine) Delete(rows []model.Transaction, id string) ([]model.Transaction, error) {
	idx := indexByID(rows, id)
	if idx < 0 {
		return rows, common.ErrNotFound
	}
	return append(rows[:idx], rows[idx+1:]...), nil
}

// Progress summarizes tagging completion over the whole table.
type Progress struct {
	TotalCount     int
	TaggedCount    int
	UntaggedCount  int
	TotalAmount    decimal.Decimal
	TaggedAmount   decimal.Decimal
	UntaggedAmount decimal.Decimal
	Percent        float64 // Monetary-weighted: tagged amount over total amount
}

// ComputeProgress reports tagged and untagged counts and amount sums. The
// percentage is monetary-weighted, so one large untagged transaction
// suppresses completion more than many small ones. An empty-of-amount table
// reports zero, never NaN.
func (e *Engine) ComputeProgress(rows []model.Transaction) Progress {
	p := Progress{
		TotalAmount:    decimal.Zero,
		TaggedAmount:   decimal.Zero,
		UntaggedAmount: decimal.Zero,
	}
	for i := range rows {
		p.TotalCount++
		p.TotalAmount = p.TotalAmount.Add(rows[i].AmountAbs)
		if rows[i].Tagged() {
			p.TaggedCount++
			p.TaggedAmount = p.TaggedAmount.Add(rows[i].AmountAbs)
		} else {
			p.UntaggedCount++
			p.UntaggedAmount = p.UntaggedAmount.Add(rows[i].AmountAbs)
		}
	}
	if !p.TotalAmount.IsZero() {
		p.Percent = p.TaggedAmount.Div(p.TotalAmount).InexactFloat64() * 100
	}
	return p
}

func indexByID(rows []model.Transaction, id string) int {
	for i := range rows {
		if rows[i].ID == id {
			return i
		}
	}
	return -1
}

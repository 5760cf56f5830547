// Package report aggregates the unified store into category breakdowns and
// monthly trends for terminal rendering.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mpoirier/tagflow/internal/model"
)

// Reporter computes aggregates over tagged transactions. The main-category
// list is read-only configuration deciding which tag of a row counts as its
// primary category.
type Reporter struct {
	mainCategories []string
}

// NewReporter creates a reporter using the given ordered main categories.
func NewReporter(mainCategories []string) *Reporter {
	return &Reporter{mainCategories: mainCategories}
}

// Entry is one labeled amount in a breakdown or trend.
type Entry struct {
	Label  string
	Amount decimal.Decimal
}

// CategoryBreakdown sums absolute amounts by main category for one month
// (or every month when month is empty), largest first.
func (r *Reporter) CategoryBreakdown(rows []model.Transaction, month string) []Entry {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for i := range rows {
		if month != "" && rows[i].Month != month {
			continue
		}
		cat := model.MainCategory(rows[i].Tags, r.mainCategories)
		if _, ok := sums[cat]; !ok {
			order = append(order, cat)
		}
		sums[cat] = sums[cat].Add(rows[i].AmountAbs)
	}
	return sortedEntries(sums, order)
}

// SubtagBreakdown sums, within one main category and month, the absolute
// amounts carried by each secondary tag (the main tag itself excluded).
// Sentinel categories have no subtags.
func (r *Reporter) SubtagBreakdown(rows []model.Transaction, month, category string) []Entry {
	if category == model.CategoryUntagged || category == model.CategoryOther {
		return nil
	}

	sums := make(map[string]decimal.Decimal)
	var order []string
	for i := range rows {
		if month != "" && rows[i].Month != month {
			continue
		}
		if model.MainCategory(rows[i].Tags, r.mainCategories) != category {
			continue
		}
		for _, tag := range rows[i].Tags {
			if tag == category {
				continue
			}
			if _, ok := sums[tag]; !ok {
				order = append(order, tag)
			}
			sums[tag] = sums[tag].Add(rows[i].AmountAbs)
		}
	}
	return sortedEntries(sums, order)
}

// MonthlyTrend sums a main category's absolute amounts per month, in
// chronological order.
func (r *Reporter) MonthlyTrend(rows []model.Transaction, category string) []Entry {
	sums := make(map[string]decimal.Decimal)
	for i := range rows {
		if model.MainCategory(rows[i].Tags, r.mainCategories) != category {
			continue
		}
		sums[rows[i].Month] = sums[rows[i].Month].Add(rows[i].AmountAbs)
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Strings(months)

	entries := make([]Entry, 0, len(months))
	for _, m := range months {
		entries = append(entries, Entry{Label: m, Amount: sums[m]})
	}
	return entries
}

// MonthSplit separates one month's spending into regular and exceptional
// expenses.
type MonthSplit struct {
	Month       string
	Regular     decimal.Decimal
	Exceptional decimal.Decimal
	Total       decimal.Decimal
}

// Timeseries splits every month's total on the exceptional category, in
// chronological order.
func (r *Reporter) Timeseries(rows []model.Transaction) []MonthSplit {
	splits := make(map[string]*MonthSplit)
	for i := range rows {
		sp, ok := splits[rows[i].Month]
		if !ok {
			sp = &MonthSplit{
				Month:       rows[i].Month,
				Regular:     decimal.Zero,
				Exceptional: decimal.Zero,
				Total:       decimal.Zero,
			}
			splits[rows[i].Month] = sp
		}
		if hasTag(rows[i].Tags, model.CategoryExceptional) {
			sp.Exceptional = sp.Exceptional.Add(rows[i].AmountAbs)
		} else {
			sp.Regular = sp.Regular.Add(rows[i].AmountAbs)
		}
		sp.Total = sp.Total.Add(rows[i].AmountAbs)
	}

	months := make([]string, 0, len(splits))
	for m := range splits {
		months = append(months, m)
	}
	sort.Strings(months)

	series := make([]MonthSplit, 0, len(months))
	for _, m := range months {
		series = append(series, *splits[m])
	}
	return series
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sortedEntries(sums map[string]decimal.Decimal, order []string) []Entry {
	entries := make([]Entry, 0, len(order))
	for _, label := range order {
		entries = append(entries, Entry{Label: label, Amount: sums[label]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})
	return entries
}

package classify

import (
	"context"
	"fmt"
	"strings"

	"easyaccounting/internal/core"
)

// Summarize sums expense and income amounts per category across the given
// rows. Totals are seeded from the taxonomy (expense namespace first, then
// income) so output order follows taxonomy order; rows whose classification
// is unknown contribute nothing. Categories with no activity are omitted.
func (s *Service) Summarize(ctx context.Context, rows []core.Row) ([]core.PivotEntry, error) {
	expenseCats, err := s.tax.LoadTaxonomy(ctx, core.KindExpense)
	if err != nil {
		return nil, fmt.Errorf("load expense taxonomy: %w", err)
	}
	incomeCats, err := s.tax.LoadTaxonomy(ctx, core.KindIncome)
	if err != nil {
		return nil, fmt.Errorf("load income taxonomy: %w", err)
	}

	type totals struct {
		expense float64
		income  float64
	}
	known := map[string]*totals{}
	var order []string
	for _, cats := range [][]core.Category{expenseCats, incomeCats} {
		for _, c := range cats {
			if _, seen := known[c.Label]; seen {
				continue
			}
			known[c.Label] = &totals{}
			order = append(order, c.Label)
		}
	}

	for _, r := range rows {
		label := strings.TrimSpace(r.Classification)
		t, ok := known[label]
		if !ok {
			continue
		}
		if r.Expense > 0 {
			t.expense += r.Expense
		}
		if r.Income > 0 {
			t.income += r.Income
		}
	}

	var entries []core.PivotEntry
	for _, label := range order {
		t := known[label]
		if t.expense > 0 || t.income > 0 {
			entries = append(entries, core.PivotEntry{Label: label, Expense: t.expense, Income: t.income})
		}
	}
	return entries, nil
}

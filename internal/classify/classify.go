// Package classify implements the keyword-to-category engine: batch
// classification, taxonomy editing and pivot aggregation. Every operation
// reloads the taxonomy from its store; nothing is cached across calls.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"easyaccounting/internal/core"
	"easyaccounting/internal/store"
)

type Service struct {
	tax store.TaxonomyStore
}

func NewService(tax store.TaxonomyStore) *Service {
	return &Service{tax: tax}
}

// Unmatched is a row no keyword matched, kept with its original positional
// index so the frontend can splice the manual decision back in.
type Unmatched struct {
	Index int
	Row   core.Row
}

// MarshalJSON emits the row fields plus the original index under "idx".
func (u Unmatched) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(u.Row)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	m["idx"] = u.Index
	return json.Marshal(m)
}

// Classify assigns a category label to every row with activity matching a
// taxonomy keyword. Matching is an ordered scan: expense rows against the
// expense namespace, income rows against the income namespace, first match
// wins (category list order, then keyword list order). Rows with no match
// keep the sentinel label and are reported separately. Rows with neither
// expense nor income are skipped entirely.
//
// The returned rows are sorted by classification label; re-running with an
// unchanged taxonomy yields identical output.
func (s *Service) Classify(ctx context.Context, rows []core.Row) ([]core.Row, []Unmatched, error) {
	expenseCats, err := s.tax.LoadTaxonomy(ctx, core.KindExpense)
	if err != nil {
		return nil, nil, fmt.Errorf("load expense taxonomy: %w", err)
	}
	incomeCats, err := s.tax.LoadTaxonomy(ctx, core.KindIncome)
	if err != nil {
		return nil, nil, fmt.Errorf("load income taxonomy: %w", err)
	}

	updated := append([]core.Row(nil), rows...)
	var unmatched []Unmatched

	for i := range updated {
		// Prior assignments are overwritten unconditionally.
		updated[i].Classification = core.NoClassification

		activity := strings.ToLower(updated[i].Activity)

		var cats []core.Category
		switch {
		case updated[i].Expense > 0:
			cats = expenseCats
		case updated[i].Income > 0:
			cats = incomeCats
		default:
			// Neither expense nor income: nothing to attribute.
			continue
		}

		label, ok := match(cats, activity)
		if !ok {
			unmatched = append(unmatched, Unmatched{Index: i, Row: updated[i]})
			continue
		}
		updated[i].Classification = label
		slog.DebugContext(ctx, "Row classified", "activity", activity, "classification", label)
	}

	sort.SliceStable(updated, func(a, b int) bool {
		return updated[a].Classification < updated[b].Classification
	})

	return updated, unmatched, nil
}

// match scans categories in store order and returns the label owning the
// first keyword equal (case-insensitively) to the activity. A linear scan is
// deliberate: priority depends on list order, which a keyword map would lose.
func match(cats []core.Category, activity string) (string, bool) {
	for _, c := range cats {
		for _, keyword := range c.Keywords {
			if strings.ToLower(keyword) == activity {
				return c.Label, true
			}
		}
	}
	return "", false
}

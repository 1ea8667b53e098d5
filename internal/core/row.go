package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Row is one parsed transaction line. The five named fields are the wire
// contract; any other fields found in incoming JSON are kept in Extra and
// written back untouched.
type Row struct {
	Date           string
	Activity       string
	Expense        float64
	Income         float64
	Classification string
	Extra          map[string]json.RawMessage
}

var rowFields = map[string]struct{}{
	"date":           {},
	"activity":       {},
	"expense":        {},
	"income":         {},
	"classification": {},
}

// UnmarshalJSON decodes the five known fields with lenient coercion and
// stashes everything else in Extra.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Date = coerceString(raw["date"])
	r.Activity = coerceString(raw["activity"])
	r.Expense = coerceAmount(raw["expense"])
	r.Income = coerceAmount(raw["income"])
	r.Classification = coerceString(raw["classification"])
	r.Extra = nil
	for k, v := range raw {
		if _, known := rowFields[k]; known {
			continue
		}
		if r.Extra == nil {
			r.Extra = map[string]json.RawMessage{}
		}
		r.Extra[k] = v
	}
	return nil
}

// MarshalJSON emits the five known fields plus the passthrough extras.
func (r Row) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 5+len(r.Extra))
	for k, v := range r.Extra {
		m[k] = v
	}
	m["date"] = r.Date
	m["activity"] = r.Activity
	m["expense"] = r.Expense
	m["income"] = r.Income
	m["classification"] = r.Classification
	return json.Marshal(m)
}

// ParseAmount coerces free-form input to a non-failing amount: malformed
// values become 0, they never reject a row.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Numbers and other scalars keep their textual form.
	return strings.TrimSpace(string(raw))
}

func coerceAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseAmount(s)
	}
	return 0
}

// RowFromPositional builds a row from the positional wire form
// [date, activity, expense, income, classification]. Missing cells
// default to zero values, coercion matches the object form.
func RowFromPositional(cells []json.RawMessage) Row {
	cell := func(i int) json.RawMessage {
		if i < len(cells) {
			return cells[i]
		}
		return nil
	}
	return Row{
		Date:           coerceString(cell(0)),
		Activity:       coerceString(cell(1)),
		Expense:        coerceAmount(cell(2)),
		Income:         coerceAmount(cell(3)),
		Classification: coerceString(cell(4)),
	}
}

// MarshalJSON renders a pivot entry in the positional wire form the
// frontend table consumes: [label, expense, income].
func (p PivotEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Label, p.Expense, p.Income})
}

package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRowUnmarshalCoercion(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantExpense float64
		wantIncome  float64
		wantDate    string
	}{
		{
			name:        "numeric amounts",
			in:          `{"date":"01/02","activity":"coop","expense":12.5,"income":0,"classification":""}`,
			wantExpense: 12.5,
			wantDate:    "01/02",
		},
		{
			name:        "string amounts parsed",
			in:          `{"date":"01/02","activity":"coop","expense":"33.10","income":"","classification":""}`,
			wantExpense: 33.10,
			wantDate:    "01/02",
		},
		{
			name:     "malformed amounts become zero",
			in:       `{"date":"01/02","activity":"coop","expense":"n/a","income":{},"classification":""}`,
			wantDate: "01/02",
		},
		{
			name:     "numeric date keeps textual form",
			in:       `{"date":0,"activity":"coop","expense":0,"income":0,"classification":""}`,
			wantDate: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Row
			if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if r.Expense != tt.wantExpense {
				t.Fatalf("expense=%v, want %v", r.Expense, tt.wantExpense)
			}
			if r.Income != tt.wantIncome {
				t.Fatalf("income=%v, want %v", r.Income, tt.wantIncome)
			}
			if r.Date != tt.wantDate {
				t.Fatalf("date=%q, want %q", r.Date, tt.wantDate)
			}
		})
	}
}

func TestRowExtraFieldsRoundTrip(t *testing.T) {
	in := `{"date":"01/02","activity":"coop","expense":10,"income":0,"classification":"01 - Food","total":1200.5,"idx":3}`
	var r Row
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(r.Extra) != 2 {
		t.Fatalf("extra=%v, want total and idx preserved", r.Extra)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"total":1200.5`, `"idx":3`, `"classification":"01 - Food"`} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("marshalled row %s missing %s", out, want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.50", 12.5},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"-3.2", -3.2},
	}
	for _, tt := range tests {
		if got := ParseAmount(tt.in); got != tt.want {
			t.Fatalf("ParseAmount(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPivotEntryMarshalsPositional(t *testing.T) {
	b, err := json.Marshal(PivotEntry{Label: "01 - Food", Expense: 50})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(b); got != `["01 - Food",50,0]` {
		t.Fatalf("pivot entry=%s", got)
	}
}

func TestEntryUnmarshalDispatch(t *testing.T) {
	doc := `[
		{"id":"f1","filename":"jan.csv","uploadDate":"2026-01-01T00:00:00Z","totalRecords":1,"totalExpense":10,"totalIncome":0,"data":[]},
		{"id":"d1","type":"folder","name":"2026","createdDate":"2026-01-02T00:00:00Z","files":[]}
	]`
	var entries []Entry
	if err := json.Unmarshal([]byte(doc), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries=%d", len(entries))
	}
	if entries[0].File == nil || entries[0].ID() != "f1" {
		t.Fatalf("first entry should be file f1: %+v", entries[0])
	}
	if entries[1].Folder == nil || entries[1].ID() != "d1" {
		t.Fatalf("second entry should be folder d1: %+v", entries[1])
	}

	out, err := json.Marshal(entries[1])
	if err != nil {
		t.Fatalf("marshal folder: %v", err)
	}
	if !strings.Contains(string(out), `"type":"folder"`) {
		t.Fatalf("folder marshal missing discriminator: %s", out)
	}
}

func TestRowFromPositional(t *testing.T) {
	cells := []json.RawMessage{
		json.RawMessage(`"01/02/2024"`),
		json.RawMessage(`"COOP"`),
		json.RawMessage(`"12.5"`),
		json.RawMessage(`0`),
		json.RawMessage(`"01 - Food"`),
	}
	row := RowFromPositional(cells)
	if row.Date != "01/02/2024" || row.Activity != "COOP" {
		t.Fatalf("row=%+v", row)
	}
	if row.Expense != 12.5 || row.Income != 0 {
		t.Fatalf("amounts=%v/%v", row.Expense, row.Income)
	}
	if row.Classification != "01 - Food" {
		t.Fatalf("classification=%q", row.Classification)
	}

	short := RowFromPositional(cells[:2])
	if short.Expense != 0 || short.Classification != "" {
		t.Fatalf("short row=%+v", short)
	}
}

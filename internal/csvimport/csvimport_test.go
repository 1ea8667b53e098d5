package csvimport

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	in := strings.Join([]string{
		"01/02/2026,COOP PRONTO,12.50,0,987.50",
		"02/02/2026,ACME PAYROLL,0,4200,5187.50",
	}, "\n")

	rows, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0].Activity != "COOP PRONTO" || rows[0].Expense != 12.5 || rows[0].Income != 0 {
		t.Fatalf("first row=%+v", rows[0])
	}
	if rows[1].Income != 4200 {
		t.Fatalf("second row=%+v", rows[1])
	}
	if string(rows[0].Extra["total"]) != "987.5" {
		t.Fatalf("total=%s", rows[0].Extra["total"])
	}
}

func TestParseCoercesMalformedAmounts(t *testing.T) {
	rows, err := Parse(strings.NewReader("01/02,shop,n/a,,--"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows[0].Expense != 0 || rows[0].Income != 0 {
		t.Fatalf("row=%+v, want zeroed amounts", rows[0])
	}
}

func TestParseShortLines(t *testing.T) {
	rows, err := Parse(strings.NewReader("01/02,shop"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows[0].Date != "01/02" || rows[0].Activity != "shop" || rows[0].Expense != 0 {
		t.Fatalf("row=%+v", rows[0])
	}
}

func TestParsedRowsMarshalWithTotal(t *testing.T) {
	rows, err := Parse(strings.NewReader("01/02,shop,5,0,100"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := json.Marshal(rows[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"total":100`) {
		t.Fatalf("marshalled row missing total: %s", b)
	}
}

func TestParseEmptyInput(t *testing.T) {
	rows, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows=%d, want none", len(rows))
	}
}

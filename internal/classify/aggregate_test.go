package classify

import (
	"context"
	"reflect"
	"testing"

	"easyaccounting/internal/core"
)

func TestSummarize(t *testing.T) {
	svc, _ := seededService()

	rows := []core.Row{
		{Expense: 50, Classification: "01 - Food"},
		{Expense: 20, Classification: "01 - Food"},
		{Income: 200, Classification: "IN: 01 - Salary"},
	}
	entries, err := svc.Summarize(context.Background(), rows)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	want := []core.PivotEntry{
		{Label: "01 - Food", Expense: 70},
		{Label: "IN: 01 - Salary", Income: 200},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("entries=%v, want %v", entries, want)
	}
}

func TestSummarizeOmitsZeroActivityCategories(t *testing.T) {
	svc, _ := seededService()

	entries, err := svc.Summarize(context.Background(), []core.Row{
		{Expense: 5, Classification: "02 - Transport"},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(entries) != 1 || entries[0].Label != "02 - Transport" {
		t.Fatalf("entries=%v, want only 02 - Transport", entries)
	}
}

func TestSummarizeSkipsUnknownLabels(t *testing.T) {
	svc, _ := seededService()

	entries, err := svc.Summarize(context.Background(), []core.Row{
		{Expense: 5, Classification: "No classification"},
		{Expense: 7, Classification: "99 - Stale"},
		{Expense: 9, Classification: ""},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries=%v, want none for unrecognised labels", entries)
	}
}

func TestSummarizeLabelWhitespaceTrimmed(t *testing.T) {
	svc, _ := seededService()

	entries, err := svc.Summarize(context.Background(), []core.Row{
		{Expense: 5, Classification: " 01 - Food "},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(entries) != 1 || entries[0].Expense != 5 {
		t.Fatalf("entries=%v", entries)
	}
}

func TestSummarizeOrderFollowsTaxonomy(t *testing.T) {
	svc, _ := seededService()

	// Input order reversed relative to taxonomy order.
	entries, err := svc.Summarize(context.Background(), []core.Row{
		{Income: 100, Classification: "IN: 01 - Salary"},
		{Expense: 3, Classification: "02 - Transport"},
		{Expense: 8, Classification: "01 - Food"},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	var labels []string
	for _, e := range entries {
		labels = append(labels, e.Label)
	}
	want := []string{"01 - Food", "02 - Transport", "IN: 01 - Salary"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("order=%v, want %v", labels, want)
	}
}

package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"easyaccounting/internal/core"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st, dir
}

func TestTaxonomyDocumentFormat(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	cats := []core.Category{
		{Label: "01 - Food", Keywords: []string{"coop", "migros"}},
		{Label: "02 - Transport", Keywords: nil},
	}
	if err := st.SaveTaxonomy(ctx, core.KindExpense, cats); err != nil {
		t.Fatalf("SaveTaxonomy: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "expense_classification.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc []map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc[0]["classification"] != "01 - Food" {
		t.Fatalf("classification field = %v", doc[0]["classification"])
	}
	if _, ok := doc[0]["expenses_attributed"]; !ok {
		t.Fatal("expense document must use expenses_attributed")
	}
	// nil keyword lists are written as [], never null
	if kw, ok := doc[1]["expenses_attributed"].([]any); !ok || kw == nil {
		t.Fatalf("empty keywords = %v", doc[1]["expenses_attributed"])
	}

	got, err := st.LoadTaxonomy(ctx, core.KindExpense)
	if err != nil {
		t.Fatalf("LoadTaxonomy: %v", err)
	}
	if len(got) != 2 || got[0].Label != "01 - Food" || got[0].Keywords[1] != "migros" {
		t.Fatalf("round-trip = %+v", got)
	}
}

func TestIncomeTaxonomyUsesIncomeAttributed(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	if err := st.SaveTaxonomy(ctx, core.KindIncome, []core.Category{
		{Label: "IN: 01 - Salary", Keywords: []string{"acme payroll"}},
	}); err != nil {
		t.Fatalf("SaveTaxonomy: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "income_classification.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.Contains(string(raw), "income_attributed") {
		t.Fatalf("income document missing income_attributed: %s", raw)
	}
}

func TestLoadTaxonomyMissingFileIsError(t *testing.T) {
	st, _ := newStore(t)
	if _, err := st.LoadTaxonomy(context.Background(), core.KindExpense); err == nil {
		t.Fatal("expected error for missing taxonomy document")
	}
}

func TestLoadTaxonomyInvalidKind(t *testing.T) {
	st, _ := newStore(t)
	if _, err := st.LoadTaxonomy(context.Background(), core.Kind("bogus")); err == nil {
		t.Fatal("expected error for invalid kind")
	}
}

func TestRecordsOptionalAndRoundTrip(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	entries, err := st.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords on empty dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v, want none", entries)
	}

	file := core.FileRecord{
		ID:           "f1",
		Filename:     "jan.csv",
		UploadDate:   "2024-02-01T10:00:00Z",
		TotalRecords: 1,
		TotalExpense: 12.5,
		Data: []core.Row{
			{Date: "01/02/2024", Activity: "COOP", Expense: 12.5, Classification: "01 - Food"},
		},
	}
	folder := core.Folder{
		ID:          "d1",
		Type:        core.FolderType,
		Name:        "2024",
		CreatedDate: "2024-02-01T10:00:00Z",
		Files:       []core.FileRecord{},
	}
	if err := st.SaveRecords(ctx, []core.Entry{{File: &file}, {Folder: &folder}}); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}

	// On disk, folders are distinguished by a type field next to plain files.
	raw, err := os.ReadFile(filepath.Join(dir, "uploaded_files.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc []map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if _, ok := doc[0]["type"]; ok {
		t.Fatal("file records must not carry a type field")
	}
	if doc[1]["type"] != "folder" {
		t.Fatalf("folder type = %v", doc[1]["type"])
	}

	got, err := st.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(got) != 2 || got[0].File == nil || got[1].Folder == nil {
		t.Fatalf("round-trip = %+v", got)
	}
	if got[0].File.Data[0].Activity != "COOP" {
		t.Fatalf("row data = %+v", got[0].File.Data)
	}
}

func TestSessionsRoundTrip(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	sessions, err := st.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("LoadSessions on empty dir: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("sessions = %v, want none", sessions)
	}

	sessions["tok-1"] = core.Session{Username: "alice", CreatedAt: "2024-02-01T10:00:00Z"}
	if err := st.SaveSessions(ctx, sessions); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}

	got, err := st.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	if got["tok-1"].Username != "alice" {
		t.Fatalf("session = %+v", got["tok-1"])
	}
}

func TestCredentialsDocumentFormat(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	// Missing credentials are an error, there is no default user.
	if _, err := st.LoadCredentials(ctx); err == nil {
		t.Fatal("expected error for missing credentials")
	}

	if err := st.SaveCredentials(ctx, core.Credentials{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "user_information.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc []map[string]string
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(doc) != 1 || doc[0]["User Name"] != "alice" || doc[0]["Password"] != "s3cret" {
		t.Fatalf("document = %v", doc)
	}

	got, err := st.LoadCredentials(ctx)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("credentials = %+v", got)
	}
}

func TestLoadCredentialsAcceptsBareObject(t *testing.T) {
	st, dir := newStore(t)

	doc := `{"User Name": "alice", "Password": "s3cret"}`
	if err := os.WriteFile(filepath.Join(dir, "user_information.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	got, err := st.LoadCredentials(context.Background())
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if got.Username != "alice" || got.Password != "s3cret" {
		t.Fatalf("credentials = %+v", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	if err := st.SaveRecords(ctx, nil); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}

	names, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range names {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"easyaccounting/internal/core"
)

// handleReclassify re-runs the classifier over rows the frontend already
// holds, typically after the taxonomy was edited. Unmatched rows are not
// reported here, the caller only wants the refreshed labels.
func (s *Server) handleReclassify(w http.ResponseWriter, r *http.Request) {
	var rows []core.Row
	if err := decodeJSON(r, &rows); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	classified, _, err := s.classifier.Classify(r.Context(), rows)
	if err != nil {
		slog.ErrorContext(r.Context(), "Reclassification failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "classification failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"parsed": classified})
}

func (s *Server) handleAddKeyword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Classification string `json:"classification"`
		Activity       string `json:"activity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.classifier.AttachKeyword(r.Context(), req.Classification, sanitizeInput(req.Activity)); err != nil {
		if errors.Is(err, core.ErrCategoryNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "classification not found"})
			return
		}
		slog.ErrorContext(r.Context(), "Keyword attach failed", "error", err, "classification", req.Classification)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "Expense added successfully",
		"classification": req.Classification,
	})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewClassification string `json:"new_classification"`
		SelectedActivity  string `json:"selected_activity"`
		ChosenType        string `json:"chosen_type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	// Anything other than "income" lands in the expense namespace.
	kind := core.KindExpense
	if req.ChosenType == core.KindIncome.String() {
		kind = core.KindIncome
	}

	label, err := s.classifier.CreateCategory(r.Context(), sanitizeInput(req.NewClassification), sanitizeInput(req.SelectedActivity), kind)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category create failed", "error", err, "name", req.NewClassification)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "Classification added succesfully",
		"classification": label,
	})
}

func (s *Server) handleExpenseOptions(w http.ResponseWriter, r *http.Request) {
	s.writeOptions(w, r, core.KindExpense)
}

func (s *Server) handleIncomeOptions(w http.ResponseWriter, r *http.Request) {
	s.writeOptions(w, r, core.KindIncome)
}

func (s *Server) writeOptions(w http.ResponseWriter, r *http.Request, kind core.Kind) {
	options, err := s.classifier.Options(r.Context(), kind)
	if err != nil {
		slog.ErrorContext(r.Context(), "Options listing failed", "error", err, "kind", kind.String())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"options": options})
}

// handlePivotTable sums expense and income per category. The body is a list
// of positional arrays [date, activity, expense, income, classification] and
// the response mirrors that style with [label, expense, income] triples.
func (s *Server) handlePivotTable(w http.ResponseWriter, r *http.Request) {
	var raw [][]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	rows := make([]core.Row, 0, len(raw))
	for _, cells := range raw {
		rows = append(rows, core.RowFromPositional(cells))
	}

	entries, err := s.classifier.Summarize(r.Context(), rows)
	if err != nil {
		slog.ErrorContext(r.Context(), "Pivot aggregation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "aggregation failed"})
		return
	}
	if entries == nil {
		entries = []core.PivotEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

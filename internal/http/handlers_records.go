package http

import (
	"errors"
	"log/slog"
	"net/http"

	"easyaccounting/internal/core"
	"easyaccounting/internal/csvimport"
)

// handleUploadCSV ingests a multipart CSV, classifies the rows and persists
// the batch. Unmatched rows come back under "rem_class" so the frontend can
// prompt for new taxonomy entries.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		slog.ErrorContext(r.Context(), "Multipart file missing", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	rows, err := csvimport.Parse(file)
	if err != nil {
		slog.ErrorContext(r.Context(), "CSV parse failed", "error", err, "filename", header.Filename)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid CSV"})
		return
	}

	classified, unmatched, err := s.classifier.Classify(r.Context(), rows)
	if err != nil {
		slog.ErrorContext(r.Context(), "Classification failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "classification failed"})
		return
	}

	rec, err := s.records.AddBatch(r.Context(), header.Filename, classified)
	if err != nil {
		slog.ErrorContext(r.Context(), "Batch store failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}

	resp := map[string]any{
		"parsed": classified,
		"fileId": rec.ID,
	}
	if len(unmatched) > 0 {
		resp["rem_class"] = unmatched
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStoredFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := s.records.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Record listing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleFileData keeps the original 200-with-error contract: the frontend
// checks for an "error" key rather than the status code.
func (s *Server) handleFileData(w http.ResponseWriter, r *http.Request) {
	rows, err := s.records.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, core.ErrFileNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"error": "File not found"})
			return
		}
		slog.ErrorContext(r.Context(), "File data load failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Delete(r.Context(), r.PathValue("id")); err != nil {
		slog.ErrorContext(r.Context(), "File delete failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderName string `json:"folder_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	name := sanitizeInput(req.FolderName)
	if name == "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Folder name is required"})
		return
	}

	id, err := s.records.CreateFolder(r.Context(), name)
	if err != nil {
		if errors.Is(err, core.ErrFolderExists) {
			writeJSON(w, http.StatusOK, map[string]string{"error": "Folder already exists"})
			return
		}
		slog.ErrorContext(r.Context(), "Folder create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Folder created successfully",
		"folderId": id,
	})
}

func (s *Server) handleRenameFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID  string `json:"file_id"`
		NewName string `json:"new_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.records.Rename(r.Context(), req.FileID, sanitizeInput(req.NewName)); err != nil {
		if errors.Is(err, core.ErrFileNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"error": "File not found"})
			return
		}
		slog.ErrorContext(r.Context(), "File rename failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File renamed successfully"})
}

func (s *Server) handleMoveFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID   string `json:"file_id"`
		FolderID string `json:"folder_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.records.Move(r.Context(), req.FileID, req.FolderID); err != nil {
		switch {
		case errors.Is(err, core.ErrFileNotFound):
			writeJSON(w, http.StatusOK, map[string]string{"error": "File not found"})
		case errors.Is(err, core.ErrFolderNotFound):
			writeJSON(w, http.StatusOK, map[string]string{"error": "Folder not found"})
		default:
			slog.ErrorContext(r.Context(), "File move failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File moved successfully"})
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeleteContents bool `json:"delete_contents"`
	}
	// Body is optional; absence means delete_contents=false.
	_ = decodeJSON(r, &req)

	if err := s.records.DeleteFolder(r.Context(), r.PathValue("id"), req.DeleteContents); err != nil {
		switch {
		case errors.Is(err, core.ErrFolderNotFound):
			writeJSON(w, http.StatusOK, map[string]string{"error": "Folder not found"})
		case errors.Is(err, core.ErrFolderNotEmpty):
			writeJSON(w, http.StatusOK, map[string]string{
				"error": "Folder contains files. Set delete_contents to true to delete folder and its contents.",
			})
		default:
			slog.ErrorContext(r.Context(), "Folder delete failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Folder deleted successfully"})
}

func (s *Server) handleDebugStored(w http.ResponseWriter, r *http.Request) {
	entries, err := s.records.Dump(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Record dump failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files": entries,
		"count": len(entries),
	})
}

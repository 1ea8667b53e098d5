// Package records manages uploaded transaction batches and the folders that
// group them, on top of the record store's whole-document contract.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"easyaccounting/internal/core"
	"easyaccounting/internal/store"
)

type Service struct {
	store store.RecordStore
}

func NewService(st store.RecordStore) *Service {
	return &Service{store: st}
}

// FileMeta is the listing view of a file record: summary figures without the
// row data.
type FileMeta struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	UploadDate   string  `json:"uploadDate"`
	TotalRecords int     `json:"totalRecords"`
	TotalExpense float64 `json:"totalExpense"`
	TotalIncome  float64 `json:"totalIncome"`
}

// ListEntry is one element of the listing: file metadata or a whole folder.
type ListEntry struct {
	File   *FileMeta
	Folder *core.Folder
}

func (e ListEntry) MarshalJSON() ([]byte, error) {
	if e.Folder != nil {
		return json.Marshal(e.Folder)
	}
	return json.Marshal(e.File)
}

// AddBatch stores a new classified batch and returns the created record.
func (s *Service) AddBatch(ctx context.Context, filename string, rows []core.Row) (core.FileRecord, error) {
	var totalExpense, totalIncome float64
	for _, r := range rows {
		totalExpense += r.Expense
		totalIncome += r.Income
	}

	rec := core.FileRecord{
		ID:           uuid.NewString(),
		Filename:     filename,
		UploadDate:   time.Now().UTC().Format(time.RFC3339),
		TotalRecords: len(rows),
		TotalExpense: totalExpense,
		TotalIncome:  totalIncome,
		Data:         rows,
	}

	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return core.FileRecord{}, fmt.Errorf("load records: %w", err)
	}
	entries = append(entries, core.Entry{File: &rec})
	if err := s.store.SaveRecords(ctx, entries); err != nil {
		return core.FileRecord{}, fmt.Errorf("save records: %w", err)
	}

	slog.InfoContext(ctx, "Batch stored",
		"file_id", rec.ID,
		"filename", rec.Filename,
		"records", rec.TotalRecords,
		"total_expense", rec.TotalExpense,
		"total_income", rec.TotalIncome)
	return rec, nil
}

// List returns the stored entries as metadata: folders whole, files without
// their row data.
func (s *Service) List(ctx context.Context) ([]ListEntry, error) {
	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	out := make([]ListEntry, 0, len(entries))
	for _, e := range entries {
		if e.Folder != nil {
			out = append(out, ListEntry{Folder: e.Folder})
			continue
		}
		if e.File == nil {
			continue
		}
		out = append(out, ListEntry{File: &FileMeta{
			ID:           e.File.ID,
			Filename:     e.File.Filename,
			UploadDate:   e.File.UploadDate,
			TotalRecords: e.File.TotalRecords,
			TotalExpense: e.File.TotalExpense,
			TotalIncome:  e.File.TotalIncome,
		}})
	}
	return out, nil
}

// Get returns the row data of a file, looking at the top level first and
// then inside folders.
func (s *Service) Get(ctx context.Context, fileID string) ([]core.Row, error) {
	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	for _, e := range entries {
		if e.File != nil && e.File.ID == fileID {
			return e.File.Data, nil
		}
	}
	for _, e := range entries {
		if e.Folder == nil {
			continue
		}
		for _, f := range e.Folder.Files {
			if f.ID == fileID {
				return f.Data, nil
			}
		}
	}
	return nil, fmt.Errorf("get file %s: %w", fileID, core.ErrFileNotFound)
}

// Delete removes a top-level file. Deleting an absent id is not an error.
func (s *Service) Delete(ctx context.Context, fileID string) error {
	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.File != nil && e.File.ID == fileID {
			continue
		}
		kept = append(kept, e)
	}
	if err := s.store.SaveRecords(ctx, kept); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	slog.InfoContext(ctx, "File deleted", "file_id", fileID)
	return nil
}

// Rename changes a file's display name, at the top level or inside a folder.
func (s *Service) Rename(ctx context.Context, fileID, newName string) error {
	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	renamed := false
	for _, e := range entries {
		if e.File != nil && e.File.ID == fileID {
			e.File.Filename = newName
			renamed = true
			break
		}
		if e.Folder != nil {
			for i := range e.Folder.Files {
				if e.Folder.Files[i].ID == fileID {
					e.Folder.Files[i].Filename = newName
					renamed = true
					break
				}
			}
		}
		if renamed {
			break
		}
	}
	if !renamed {
		return fmt.Errorf("rename file %s: %w", fileID, core.ErrFileNotFound)
	}
	if err := s.store.SaveRecords(ctx, entries); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	slog.InfoContext(ctx, "File renamed", "file_id", fileID, "new_name", newName)
	return nil
}

// Move transfers a top-level file into a folder.
func (s *Service) Move(ctx context.Context, fileID, folderID string) error {
	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	var file *core.FileRecord
	var folder *core.Folder
	for _, e := range entries {
		switch {
		case e.File != nil && e.File.ID == fileID:
			file = e.File
		case e.Folder != nil && e.Folder.ID == folderID:
			folder = e.Folder
		}
	}
	if file == nil {
		return fmt.Errorf("move file %s: %w", fileID, core.ErrFileNotFound)
	}
	if folder == nil {
		return fmt.Errorf("move file %s to %s: %w", fileID, folderID, core.ErrFolderNotFound)
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.File != nil && e.File.ID == fileID {
			continue
		}
		kept = append(kept, e)
	}
	folder.Files = append(folder.Files, *file)

	if err := s.store.SaveRecords(ctx, kept); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	slog.InfoContext(ctx, "File moved", "file_id", fileID, "folder_id", folderID)
	return nil
}

// CreateFolder adds an empty folder; names must be unique among folders.
func (s *Service) CreateFolder(ctx context.Context, name string) (string, error) {
	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return "", fmt.Errorf("load records: %w", err)
	}
	for _, e := range entries {
		if e.Folder != nil && e.Folder.Name == name {
			return "", fmt.Errorf("create folder %q: %w", name, core.ErrFolderExists)
		}
	}

	folder := core.Folder{
		ID:          uuid.NewString(),
		Type:        core.FolderType,
		Name:        name,
		CreatedDate: time.Now().UTC().Format(time.RFC3339),
		Files:       []core.FileRecord{},
	}
	entries = append(entries, core.Entry{Folder: &folder})
	if err := s.store.SaveRecords(ctx, entries); err != nil {
		return "", fmt.Errorf("save records: %w", err)
	}
	slog.InfoContext(ctx, "Folder created", "folder_id", folder.ID, "name", name)
	return folder.ID, nil
}

// DeleteFolder removes a folder. A folder that still holds files is only
// removed when deleteContents is set; its files go with it.
func (s *Service) DeleteFolder(ctx context.Context, folderID string, deleteContents bool) error {
	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	var folder *core.Folder
	for _, e := range entries {
		if e.Folder != nil && e.Folder.ID == folderID {
			folder = e.Folder
			break
		}
	}
	if folder == nil {
		return fmt.Errorf("delete folder %s: %w", folderID, core.ErrFolderNotFound)
	}
	if len(folder.Files) > 0 && !deleteContents {
		return fmt.Errorf("delete folder %s: %w", folderID, core.ErrFolderNotEmpty)
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Folder != nil && e.Folder.ID == folderID {
			continue
		}
		kept = append(kept, e)
	}
	if err := s.store.SaveRecords(ctx, kept); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	slog.InfoContext(ctx, "Folder deleted", "folder_id", folderID, "had_files", len(folder.Files))
	return nil
}

// Dump returns the raw stored document, for the debug endpoint.
func (s *Service) Dump(ctx context.Context) ([]core.Entry, error) {
	entries, err := s.store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return entries, nil
}

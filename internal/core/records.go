package core

import "encoding/json"

// FolderType is the discriminator value stored on folder entries.
const FolderType = "folder"

// FileRecord is one uploaded transaction batch with its summary figures.
type FileRecord struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	UploadDate   string  `json:"uploadDate"`
	TotalRecords int     `json:"totalRecords"`
	TotalExpense float64 `json:"totalExpense"`
	TotalIncome  float64 `json:"totalIncome"`
	Data         []Row   `json:"data"`
}

// Folder is a named grouping of file records.
type Folder struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Name        string       `json:"name"`
	CreatedDate string       `json:"createdDate"`
	Files       []FileRecord `json:"files"`
}

// Entry is one element of the record document: either a file or a folder.
// The stored document interleaves both in a single ordered list,
// discriminated by the "type" field.
type Entry struct {
	File   *FileRecord
	Folder *Folder
}

// ID returns the identifier of whichever record the entry holds.
func (e Entry) ID() string {
	switch {
	case e.Folder != nil:
		return e.Folder.ID
	case e.File != nil:
		return e.File.ID
	default:
		return ""
	}
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Folder != nil {
		return json.Marshal(e.Folder)
	}
	return json.Marshal(e.File)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Type == FolderType {
		var f Folder
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		e.Folder, e.File = &f, nil
		return nil
	}
	var f FileRecord
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	e.File, e.Folder = &f, nil
	return nil
}

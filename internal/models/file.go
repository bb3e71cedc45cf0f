package models

import "time"

// Entity types a file can be attached to
const (
	FileEntityProject = "project"
	FileEntityTask    = "task"
	FileEntityTicket  = "ticket"
	FileEntityIdea    = "idea"
)

// IsValidFileEntity checks an association entity type
func IsValidFileEntity(t string) bool {
	switch t {
	case FileEntityProject, FileEntityTask, FileEntityTicket, FileEntityIdea:
		return true
	}
	return false
}

// FileUpload is stored file metadata; the payload lives on disk under a
// generated name so user-supplied names never touch the filesystem.
type FileUpload struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"-"`
	MimeType     string    `json:"mime_type,omitempty"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedBy   int       `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileAssociation links a file to a domain entity
type FileAssociation struct {
	ID         int    `json:"id"`
	FileID     string `json:"file_id"`
	EntityType string `json:"entity_type"`
	EntityID   int    `json:"entity_id"`
}

package services

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// FileService stores uploaded files on disk under generated names and tracks
// their metadata and entity associations in the database.
type FileService struct {
	db        *database.DB
	uploadDir string
	maxBytes  int64
}

// NewFileService creates a new file service
func NewFileService(db *database.DB, uploadDir string, maxSizeMB int) (*FileService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, err
	}
	return &FileService{
		db:        db,
		uploadDir: uploadDir,
		maxBytes:  int64(maxSizeMB) * 1024 * 1024,
	}, nil
}

// Save writes the payload to disk and records its metadata. The stored name
// is a generated uuid plus the original extension; the user-supplied name is
// metadata only.
func (s *FileService) Save(ctx context.Context, originalName, mimeType string, size int64, payload io.Reader, uploadedBy int) (*models.FileUpload, error) {
	if strings.TrimSpace(originalName) == "" {
		return nil, apperrors.Validation("A file name is required")
	}
	if size <= 0 {
		return nil, apperrors.Validation("Cannot store an empty file")
	}
	if size > s.maxBytes {
		return nil, apperrors.Validation("File exceeds the maximum upload size")
	}

	id := uuid.New().String()
	storedName := id + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.uploadDir, storedName)

	dst, err := os.Create(path)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	written, err := io.Copy(dst, io.LimitReader(payload, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = apperrors.Validation("File exceeds the maximum upload size")
	}
	if err != nil {
		os.Remove(path)
		if appErr, ok := err.(*apperrors.Error); ok {
			return nil, appErr
		}
		return nil, apperrors.Internal(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO file_uploads (id, original_name, stored_name, mime_type, size_bytes, uploaded_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, originalName, storedName, mimeType, written, uploadedBy)
	if err != nil {
		os.Remove(path)
		return nil, apperrors.FromStore(err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns file metadata by id, or a NOT_FOUND error
func (s *FileService) GetByID(ctx context.Context, id string) (*models.FileUpload, error) {
	var f models.FileUpload
	var mime sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, original_name, stored_name, mime_type, size_bytes, uploaded_by, created_at
		FROM file_uploads WHERE id = ?
	`, id).Scan(&f.ID, &f.OriginalName, &f.StoredName, &mime, &f.SizeBytes, &f.UploadedBy, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("File not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	f.MimeType = mime.String
	return &f, nil
}

// Path returns the on-disk path of a stored file
func (s *FileService) Path(f *models.FileUpload) string {
	return filepath.Join(s.uploadDir, f.StoredName)
}

// Associate links a file to a domain entity. Linking twice is a no-op
// conflict.
func (s *FileService) Associate(ctx context.Context, fileID, entityType string, entityID int) error {
	if !models.IsValidFileEntity(entityType) {
		return apperrors.Validation("Unknown entity type: " + entityType)
	}
	if _, err := s.GetByID(ctx, fileID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_associations (file_id, entity_type, entity_id) VALUES (?, ?, ?)
	`, fileID, entityType, entityID)
	if err != nil {
		if database.IsConstraint(err) {
			return apperrors.Conflict("The file is already linked to this entity")
		}
		return apperrors.FromStore(err)
	}
	return nil
}

// ListByEntity returns the files attached to a domain entity
func (s *FileService) ListByEntity(ctx context.Context, entityType string, entityID int) ([]models.FileUpload, error) {
	if !models.IsValidFileEntity(entityType) {
		return nil, apperrors.Validation("Unknown entity type: " + entityType)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.original_name, f.stored_name, f.mime_type, f.size_bytes, f.uploaded_by, f.created_at
		FROM file_uploads f
		JOIN file_associations a ON a.file_id = f.id
		WHERE a.entity_type = ? AND a.entity_id = ?
		ORDER BY f.created_at DESC
	`, entityType, entityID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var files []models.FileUpload
	for rows.Next() {
		var f models.FileUpload
		var mime sql.NullString
		if err := rows.Scan(&f.ID, &f.OriginalName, &f.StoredName, &mime, &f.SizeBytes, &f.UploadedBy, &f.CreatedAt); err != nil {
			return nil, apperrors.FromStore(err)
		}
		f.MimeType = mime.String
		files = append(files, f)
	}
	return files, rows.Err()
}

// Delete removes a file's metadata, associations and on-disk payload
func (s *FileService) Delete(ctx context.Context, id string) error {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM file_uploads WHERE id = ?", id); err != nil {
		return apperrors.FromStore(err)
	}
	os.Remove(s.Path(f))
	return nil
}

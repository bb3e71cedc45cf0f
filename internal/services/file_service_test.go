package services

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

func newTestFileService(t *testing.T) (*FileService, int) {
	t.Helper()

	db := testDB(t)
	user := createTestUser(t, db, "files@test.com", models.RoleRPADeveloper)
	svc, err := NewFileService(db, t.TempDir(), 1)
	if err != nil {
		t.Fatalf("NewFileService failed: %v", err)
	}
	return svc, user.ID
}

func TestFileSaveGeneratesStoredName(t *testing.T) {
	svc, userID := newTestFileService(t)

	payload := []byte("process definition")
	upload, err := svc.Save(context.Background(), "../../etc/passwd.pdd", "application/octet-stream",
		int64(len(payload)), bytes.NewReader(payload), userID)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if upload.OriginalName != "../../etc/passwd.pdd" {
		t.Errorf("original name = %s", upload.OriginalName)
	}
	// The stored name is generated; traversal in the original name never
	// reaches the filesystem
	if upload.StoredName == upload.OriginalName {
		t.Error("stored name reuses the user-supplied name")
	}

	data, err := os.ReadFile(svc.Path(upload))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("stored payload differs")
	}
}

func TestFileSaveRejectsOversized(t *testing.T) {
	svc, userID := newTestFileService(t)

	big := int64(2 * 1024 * 1024) // limit is 1MB
	_, err := svc.Save(context.Background(), "big.zip", "application/zip",
		big, bytes.NewReader(make([]byte, 16)), userID)
	if err == nil {
		t.Error("oversized file accepted")
	}
}

func TestFileAssociations(t *testing.T) {
	svc, userID := newTestFileService(t)

	payload := []byte("screenshot")
	upload, err := svc.Save(context.Background(), "error.png", "image/png",
		int64(len(payload)), bytes.NewReader(payload), userID)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := svc.Associate(context.Background(), upload.ID, models.FileEntityTicket, 7); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}
	if err := svc.Associate(context.Background(), upload.ID, models.FileEntityTicket, 7); err == nil {
		t.Error("duplicate association accepted")
	}
	if err := svc.Associate(context.Background(), upload.ID, "bogus", 7); err == nil {
		t.Error("unknown entity type accepted")
	}

	files, err := svc.ListByEntity(context.Background(), models.FileEntityTicket, 7)
	if err != nil {
		t.Fatalf("ListByEntity failed: %v", err)
	}
	if len(files) != 1 || files[0].ID != upload.ID {
		t.Errorf("ListByEntity = %+v", files)
	}
}

func TestFileDeleteRemovesPayload(t *testing.T) {
	svc, userID := newTestFileService(t)

	payload := []byte("x")
	upload, _ := svc.Save(context.Background(), "tmp.txt", "text/plain",
		1, bytes.NewReader(payload), userID)
	path := svc.Path(upload)

	if err := svc.Delete(context.Background(), upload.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("payload survived deletion")
	}
	if _, err := svc.GetByID(context.Background(), upload.ID); err == nil {
		t.Error("metadata survived deletion")
	}
}

package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/decoydrop/decoydrop/internal/db/models"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fileLinkCols = []string{
	"id", "owner_id", "file_name", "size_bytes", "checksum",
	"token", "expires_at", "created_at", "updated_at",
}

func newFileLinkRepo(t *testing.T) (*FileLinkRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFileLinkRepository(db), mock
}

func sampleFileLinkRows(n int) *sqlmock.Rows {
	rows := sqlmock.NewRows(fileLinkCols)
	for i := 0; i < n; i++ {
		rows.AddRow("link-"+string(rune('a'+i)), "user-1", "payroll_export_2026.csv",
			int64(48213), "deadbeef", "tok-"+string(rune('a'+i)),
			time.Now().AddDate(0, 0, 14), time.Now(), time.Now())
	}
	return rows
}

// ---------------------------------------------------------------------------
// CreateFileLink
// ---------------------------------------------------------------------------

func TestCreateFileLink_AssignsID(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectExec("INSERT INTO file_links").
		WillReturnResult(sqlmock.NewResult(1, 1))

	link := &models.FileLink{
		FileName:  "board_minutes_confidential.docx",
		SizeBytes: 120331,
		Checksum:  "cafebabe",
		Token:     "tok-x",
		ExpiresAt: time.Now().AddDate(0, 0, 30),
	}
	if err := repo.CreateFileLink(context.Background(), link); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.ID == "" {
		t.Error("CreateFileLink should assign an ID")
	}
}

func TestCreateFileLink_DBError(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectExec("INSERT INTO file_links").
		WillReturnError(errDB)

	if err := repo.CreateFileLink(context.Background(), &models.FileLink{}); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetFileLinkByID / GetFileLinkByToken
// ---------------------------------------------------------------------------

func TestGetFileLinkByID_Found(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectQuery("SELECT id, owner_id.*FROM file_links WHERE id =").
		WithArgs("link-a").
		WillReturnRows(sampleFileLinkRows(1))

	link, err := repo.GetFileLinkByID(context.Background(), "link-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link == nil {
		t.Fatal("expected a link, got nil")
	}
	if link.FileName != "payroll_export_2026.csv" {
		t.Errorf("file name = %q", link.FileName)
	}
}

func TestGetFileLinkByID_NotFound(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectQuery("SELECT id, owner_id.*FROM file_links WHERE id =").
		WillReturnRows(sqlmock.NewRows(fileLinkCols))

	link, err := repo.GetFileLinkByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link != nil {
		t.Errorf("expected nil, got %+v", link)
	}
}

func TestGetFileLinkByToken_Found(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectQuery("SELECT id, owner_id.*FROM file_links WHERE token =").
		WithArgs("tok-a").
		WillReturnRows(sampleFileLinkRows(1))

	link, err := repo.GetFileLinkByToken(context.Background(), "tok-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link == nil {
		t.Fatal("expected a link, got nil")
	}
}

// ---------------------------------------------------------------------------
// RecentFileLinks / AllFileLinks
// ---------------------------------------------------------------------------

func TestRecentFileLinks_Bounded(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectQuery("SELECT id, owner_id.*ORDER BY created_at DESC.*LIMIT").
		WithArgs(10).
		WillReturnRows(sampleFileLinkRows(4))

	links, err := repo.RecentFileLinks(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 4 {
		t.Errorf("len(links) = %d, want 4", len(links))
	}
}

func TestAllFileLinks_ReturnsEverything(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectQuery("SELECT id, owner_id.*FROM file_links ORDER BY created_at").
		WillReturnRows(sampleFileLinkRows(6))

	links, err := repo.AllFileLinks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 6 {
		t.Errorf("len(links) = %d, want 6", len(links))
	}
}

func TestAllFileLinks_EmptyIsNotAnError(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectQuery("SELECT id, owner_id.*FROM file_links ORDER BY created_at").
		WillReturnRows(sqlmock.NewRows(fileLinkCols))

	links, err := repo.AllFileLinks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("len(links) = %d, want 0", len(links))
	}
}

// ---------------------------------------------------------------------------
// DeleteFileLink
// ---------------------------------------------------------------------------

func TestDeleteFileLink_Success(t *testing.T) {
	repo, mock := newFileLinkRepo(t)
	mock.ExpectExec("DELETE FROM file_links").
		WithArgs("link-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteFileLink(context.Background(), "link-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

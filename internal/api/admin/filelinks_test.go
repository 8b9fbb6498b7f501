package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func newFileLinkRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewFileLinkHandlers(db)
	r := gin.New()
	r.GET("/file-links", h.ListFileLinksHandler())
	r.GET("/file-links/:id", h.GetFileLinkHandler())
	r.POST("/file-links", h.CreateFileLinkHandler())
	r.PUT("/file-links/:id", h.UpdateFileLinkHandler())
	r.DELETE("/file-links/:id", h.DeleteFileLinkHandler())
	return r, mock
}

func fileLinkRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "file_name", "size_bytes", "checksum",
		"token", "expires_at", "created_at", "updated_at",
	})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, nil, "q3_budget_draft.xlsx", int64(8192), "deadbeef",
			"token-"+id, now.AddDate(0, 0, 30), now, now)
	}
	return rows
}

func TestListFileLinksHandler(t *testing.T) {
	r, mock := newFileLinkRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM file_links`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT id, owner_id, file_name, .* FROM file_links ORDER BY created_at DESC`).
		WithArgs(20, 0).
		WillReturnRows(fileLinkRows("l1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/file-links", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetFileLinkHandler_NotFound(t *testing.T) {
	r, mock := newFileLinkRouter(t)

	mock.ExpectQuery(`SELECT id, owner_id, file_name, .* FROM file_links WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(fileLinkRows())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/file-links/missing", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCreateFileLinkHandler(t *testing.T) {
	r, mock := newFileLinkRouter(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO file_links`)).
		WithArgs(sqlmock.AnyArg(), nil, "board_minutes_aug.docx", int64(65536),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body, _ := json.Marshal(CreateFileLinkRequest{
		FileName:  "board_minutes_aug.docx",
		SizeBytes: 65536,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/file-links", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}

	// The response carries the fabricated token and checksum
	var resp struct {
		FileLink struct {
			Token    string `json:"token"`
			Checksum string `json:"checksum"`
		} `json:"file_link"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.FileLink.Token == "" {
		t.Error("token not generated")
	}
	if len(resp.FileLink.Checksum) != 64 {
		t.Errorf("checksum = %q, want 64 hex chars", resp.FileLink.Checksum)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateFileLinkHandler_MissingFileName(t *testing.T) {
	r, _ := newFileLinkRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/file-links", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateFileLinkHandler_NotFound(t *testing.T) {
	r, mock := newFileLinkRouter(t)

	mock.ExpectQuery(`SELECT id, owner_id, file_name, .* FROM file_links WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(fileLinkRows())

	body, _ := json.Marshal(UpdateFileLinkRequest{FileName: "renamed.pdf"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/file-links/missing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteFileLinkHandler(t *testing.T) {
	r, mock := newFileLinkRouter(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM file_links WHERE id = $1`)).
		WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/file-links/l1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

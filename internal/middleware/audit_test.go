package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/decoydrop/decoydrop/internal/audit"
)

// captureShipper collects shipped records via a buffered channel.
type captureShipper struct {
	ch chan *audit.Record
}

func newCaptureShipper(buf int) *captureShipper {
	return &captureShipper{ch: make(chan *audit.Record, buf)}
}

func (s *captureShipper) Ship(_ context.Context, rec *audit.Record) error {
	s.ch <- rec
	return nil
}

func (s *captureShipper) Close() error { return nil }

// waitForRecord blocks until a record arrives or the timeout fires.
func (s *captureShipper) waitForRecord(t *testing.T, timeout time.Duration) *audit.Record {
	t.Helper()
	select {
	case rec := <-s.ch:
		return rec
	case <-time.After(timeout):
		t.Fatal("timed out waiting for audit record")
		return nil
	}
}

// ---------------------------------------------------------------------------
// OperatorAuditMiddleware — skip paths
// ---------------------------------------------------------------------------

func TestOperatorAudit_GetSkipped(t *testing.T) {
	cs := newCaptureShipper(1)
	r := gin.New()
	r.Use(OperatorAuditMiddleware(cs))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	select {
	case <-cs.ch:
		t.Error("shipper called for GET request, want no shipping")
	case <-time.After(100 * time.Millisecond):
		// good — nothing shipped
	}
}

func TestOperatorAudit_OptionsSkipped(t *testing.T) {
	cs := newCaptureShipper(1)
	r := gin.New()
	r.Use(OperatorAuditMiddleware(cs))
	r.OPTIONS("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/", nil)
	r.ServeHTTP(w, req)

	select {
	case <-cs.ch:
		t.Error("shipper called for OPTIONS request, want no shipping")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOperatorAudit_NilShipper_NoPanic(t *testing.T) {
	r := gin.New()
	r.Use(OperatorAuditMiddleware(nil))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// ---------------------------------------------------------------------------
// OperatorAuditMiddleware — shipping path
// ---------------------------------------------------------------------------

func TestOperatorAudit_PostShipped(t *testing.T) {
	cs := newCaptureShipper(1)
	r := gin.New()
	r.Use(OperatorAuditMiddleware(cs))
	r.POST("/api/v1/admin/simulate-attack", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/simulate-attack", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)

	rec := cs.waitForRecord(t, 500*time.Millisecond)
	if rec.Kind != audit.KindOperator {
		t.Errorf("Kind = %q, want %q", rec.Kind, audit.KindOperator)
	}
	if rec.Action != "POST /api/v1/admin/simulate-attack" {
		t.Errorf("Action = %q", rec.Action)
	}
	if rec.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", rec.StatusCode)
	}
}

func TestOperatorAudit_FailedWriteStillShipped(t *testing.T) {
	// Failed mutations are the interesting ones on a honeypot admin API.
	cs := newCaptureShipper(1)
	r := gin.New()
	r.Use(OperatorAuditMiddleware(cs))
	r.DELETE("/api/v1/users/1", func(c *gin.Context) { c.Status(http.StatusForbidden) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/users/1", nil)
	r.ServeHTTP(w, req)

	rec := cs.waitForRecord(t, 500*time.Millisecond)
	if rec.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", rec.StatusCode)
	}
}

// panicShipper panics on every Ship call.
type panicShipper struct{}

func (panicShipper) Ship(context.Context, *audit.Record) error { panic("shipper blew up") }
func (panicShipper) Close() error                              { return nil }

func TestOperatorAudit_ShipperPanicDoesNotCrash(t *testing.T) {
	// Shipping runs on a recovered background goroutine; a broken shipper
	// must never take the process (or the request) down with it.
	r := gin.New()
	r.Use(OperatorAuditMiddleware(panicShipper{}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	// Give the background goroutine time to panic and recover.
	time.Sleep(100 * time.Millisecond)
}

func TestOperatorAudit_OperatorExtractedFromContext(t *testing.T) {
	cs := newCaptureShipper(1)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("operator", "admin")
		c.Next()
	})
	r.Use(OperatorAuditMiddleware(cs))
	r.POST("/api/v1/file-links", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/file-links", nil)
	r.ServeHTTP(w, req)

	rec := cs.waitForRecord(t, 500*time.Millisecond)
	if rec.Operator != "admin" {
		t.Errorf("Operator = %q, want admin", rec.Operator)
	}
}

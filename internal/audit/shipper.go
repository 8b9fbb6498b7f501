// Package audit forwards audit records to external destinations. DecoyDrop
// produces two kinds of records: synthetic events fabricated by the simulator
// (the bait) and real actions taken by the operator on the admin API. Both can
// be routed to a SIEM or log aggregator via webhook, or appended to a local
// JSONL file, independently of the application's own logging pipeline. The
// synthetic stream is what makes the honeypot look alive from the outside;
// shipping it to the same place a real deployment would ship its audit trail
// is part of the disguise.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/decoydrop/decoydrop/internal/db/models"
)

// Record kinds.
const (
	KindSynthetic = "synthetic"
	KindOperator  = "operator"
)

// Record is a single shippable audit record.
type Record struct {
	Timestamp       time.Time              `json:"timestamp"`
	Kind            string                 `json:"kind"`
	EventType       string                 `json:"event_type,omitempty"`
	Action          string                 `json:"action,omitempty"`
	ActorID         string                 `json:"actor_id,omitempty"`
	TargetID        string                 `json:"target_id,omitempty"`
	OriginAddress   string                 `json:"origin_address,omitempty"`
	ClientSignature string                 `json:"client_signature,omitempty"`
	Detail          string                 `json:"detail,omitempty"`
	Operator        string                 `json:"operator,omitempty"`
	StatusCode      int                    `json:"status_code,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// RecordFromEvent converts a synthetic audit event into a shippable record.
func RecordFromEvent(event *models.AuditEvent) *Record {
	rec := &Record{
		Timestamp:       event.Timestamp,
		Kind:            KindSynthetic,
		EventType:       event.EventType,
		OriginAddress:   event.OriginAddress,
		ClientSignature: event.ClientSignature,
	}
	if event.ActorID != nil {
		rec.ActorID = *event.ActorID
	}
	if event.TargetID != nil {
		rec.TargetID = *event.TargetID
	}
	if event.Detail != nil {
		rec.Detail = *event.Detail
	}
	return rec
}

// Shipper defines the interface for audit record shipping
type Shipper interface {
	// Ship sends an audit record to the destination
	Ship(ctx context.Context, rec *Record) error
	// Close cleans up any resources
	Close() error
}

// ShipperConfig holds configuration for a single shipper
type ShipperConfig struct {
	// Enabled determines if this shipper is active
	Enabled bool
	// Type is the shipper type (webhook, file)
	Type string
	// URL is the webhook endpoint (webhook only)
	URL string
	// Headers are additional HTTP headers to send (webhook only)
	Headers map[string]string
	// Timeout is the HTTP request timeout (webhook only)
	Timeout time.Duration
	// BatchSize is how many records to batch before sending (0 = no batching)
	BatchSize int
	// FlushInterval is how often to flush batched records
	FlushInterval time.Duration
	// Path is the output file path (file only)
	Path string
	// MaxSizeMB is the maximum file size before rotation (file only)
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep (file only)
	MaxBackups int
}

// MultiShipper ships to multiple destinations
type MultiShipper struct {
	shippers []Shipper
	mu       sync.RWMutex
}

// NewMultiShipper creates a multi-shipper from configs, skipping disabled
// entries.
func NewMultiShipper(configs []ShipperConfig) (*MultiShipper, error) {
	ms := &MultiShipper{
		shippers: make([]Shipper, 0),
	}

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		var shipper Shipper
		var err error

		switch cfg.Type {
		case "webhook":
			shipper, err = NewWebhookShipper(cfg)
		case "file":
			shipper, err = NewFileShipper(cfg)
		default:
			return nil, fmt.Errorf("unknown shipper type: %s", cfg.Type)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create %s shipper: %w", cfg.Type, err)
		}

		ms.shippers = append(ms.shippers, shipper)
	}

	return ms, nil
}

// Ship sends a record to all configured shippers
func (ms *MultiShipper) Ship(ctx context.Context, rec *Record) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var lastErr error
	for _, shipper := range ms.shippers {
		if err := shipper.Ship(ctx, rec); err != nil {
			lastErr = err
			// Log error but continue to other shippers
			slog.Error("audit shipper error", "error", err)
		}
	}
	return lastErr
}

// Close closes all shippers
func (ms *MultiShipper) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var lastErr error
	for _, shipper := range ms.shippers {
		if err := shipper.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// WebhookShipper ships audit records to an HTTP endpoint
type WebhookShipper struct {
	cfg       ShipperConfig
	client    *http.Client
	batchCh   chan *Record
	batch     []*Record
	batchMu   sync.Mutex
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewWebhookShipper creates a new webhook shipper
func NewWebhookShipper(cfg ShipperConfig) (*WebhookShipper, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook shipper requires a url")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ws := &WebhookShipper{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		batchCh: make(chan *Record, 1000),
		batch:   make([]*Record, 0),
		closeCh: make(chan struct{}),
	}

	// Start batch processor if batching is enabled
	if cfg.BatchSize > 0 {
		go ws.processBatches()
	}

	return ws, nil
}

// processBatches handles batched sending
func (ws *WebhookShipper) processBatches() {
	flushInterval := ws.cfg.FlushInterval
	if flushInterval == 0 {
		flushInterval = 5 * time.Second
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case rec := <-ws.batchCh:
			ws.batchMu.Lock()
			ws.batch = append(ws.batch, rec)
			if len(ws.batch) >= ws.cfg.BatchSize {
				ws.flushBatch()
			}
			ws.batchMu.Unlock()
		case <-ticker.C:
			ws.batchMu.Lock()
			if len(ws.batch) > 0 {
				ws.flushBatch()
			}
			ws.batchMu.Unlock()
		case <-ws.closeCh:
			// Flush remaining
			ws.batchMu.Lock()
			if len(ws.batch) > 0 {
				ws.flushBatch()
			}
			ws.batchMu.Unlock()
			return
		}
	}
}

// flushBatch sends the current batch. Caller holds batchMu.
func (ws *WebhookShipper) flushBatch() {
	if len(ws.batch) == 0 {
		return
	}

	data, err := json.Marshal(ws.batch)
	if err != nil {
		slog.Error("failed to marshal audit batch", "error", err)
		ws.batch = ws.batch[:0]
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ws.cfg.Timeout)
	defer cancel()

	if err := ws.sendRequest(ctx, data); err != nil {
		slog.Error("failed to send audit batch", "error", err)
	}

	ws.batch = ws.batch[:0]
}

// Ship sends a record to the webhook
func (ws *WebhookShipper) Ship(ctx context.Context, rec *Record) error {
	// If batching is enabled, queue the record
	if ws.cfg.BatchSize > 0 {
		select {
		case ws.batchCh <- rec:
			return nil
		default:
			// Channel full, send directly
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	return ws.sendRequest(ctx, data)
}

// sendRequest sends the HTTP request
func (ws *WebhookShipper) sendRequest(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, "POST", ws.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range ws.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := ws.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Close closes the webhook shipper
func (ws *WebhookShipper) Close() error {
	ws.closeOnce.Do(func() {
		close(ws.closeCh)
	})
	return nil
}

// FileShipper appends audit records to a JSONL file
type FileShipper struct {
	cfg  ShipperConfig
	file *os.File
	mu   sync.Mutex
}

// NewFileShipper creates a new file shipper
func NewFileShipper(cfg ShipperConfig) (*FileShipper, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file shipper requires a path")
	}

	file, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &FileShipper{
		cfg:  cfg,
		file: file,
	}, nil
}

// Ship writes a record to the file
func (fs *FileShipper) Ship(ctx context.Context, rec *Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	// Check file size for rotation
	if fs.cfg.MaxSizeMB > 0 {
		info, err := fs.file.Stat()
		if err == nil && info.Size() > int64(fs.cfg.MaxSizeMB)*1024*1024 {
			if err := fs.rotate(); err != nil {
				slog.Error("failed to rotate audit log", "error", err)
			}
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}

	return nil
}

// rotate rotates the log file. Caller holds mu.
func (fs *FileShipper) rotate() error {
	if err := fs.file.Close(); err != nil {
		return err
	}

	// Shift existing backups up by one
	for i := fs.cfg.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", fs.cfg.Path, i)
		newPath := fmt.Sprintf("%s.%d", fs.cfg.Path, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	_ = os.Rename(fs.cfg.Path, fs.cfg.Path+".1")

	if fs.cfg.MaxBackups > 0 {
		_ = os.Remove(fmt.Sprintf("%s.%d", fs.cfg.Path, fs.cfg.MaxBackups+1))
	}

	file, err := os.OpenFile(fs.cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	fs.file = file
	return nil
}

// Close closes the file
func (fs *FileShipper) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.file.Close()
}

// settings_repository.go implements SettingsRepository, a small key/value store
// for per-deployment state that does not belong in config files: the instance
// identifier, seed markers, anything the server needs to survive restarts.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// Well-known settings keys.
const (
	SettingInstanceID = "instance_id"
)

// SettingsRepository handles database operations for system settings
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value for key, or "" if the key has never been set.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	query := `SELECT value FROM system_settings WHERE key = $1`
	err := r.db.GetContext(ctx, &value, query, key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Set upserts the value for key.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO system_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, query, key, value, time.Now())
	return err
}

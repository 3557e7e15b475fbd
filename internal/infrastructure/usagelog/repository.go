package usagelog

import (
	"context"

	"github.com/mailidpwd/similarlinks/internal/domain"
	"gorm.io/gorm"
)

// PostgresRepository persists generation-service usage events to Postgres.
// The orchestrator calls it fire-and-forget; an insert failure is the
// caller's to log and discard.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a usage repository over an open gorm handle.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the usage_events table if missing.
func (r *PostgresRepository) Migrate() error {
	return r.db.AutoMigrate(&domain.UsageEvent{})
}

// Record inserts one usage event.
func (r *PostgresRepository) Record(ctx context.Context, event *domain.UsageEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// NoopRepository discards usage events; used when usage logging is disabled.
type NoopRepository struct{}

// NewNoopRepository creates a repository that records nothing.
func NewNoopRepository() *NoopRepository {
	return &NoopRepository{}
}

// Record discards the event.
func (r *NoopRepository) Record(ctx context.Context, event *domain.UsageEvent) error {
	return nil
}

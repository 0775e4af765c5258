package audit

import (
	"context"
	"time"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemWebhookActor marks audit entries written by the external sales webhook
// rather than a signed-in user.
const SystemWebhookActor = "SYSTEM_WEBHOOK"

// Repository persists and reads the append-only audit trail.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an audit repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Insert appends one audit entry. Entries are never updated or deleted
// through the application.
func (r *Repository) Insert(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListFilter narrows audit queries. Zero values mean "no filter".
type ListFilter struct {
	Action    enums.AuditAction
	ProductID uuid.UUID
	Since     time.Time
	Limit     int
}

// ListByUser returns the tenant's audit entries, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.AuditLog, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.ProductID != uuid.Nil {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.AuditLog
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// DeleteByUser removes every audit entry for the tenant. Used only by the
// account data reset.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AuditLog{}).Error
}

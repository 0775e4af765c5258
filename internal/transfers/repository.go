package transfers

import (
	"context"
	"time"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists completed stock transfers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a transfer record.
func (r *Repository) Create(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return nil, err
	}
	return transfer, nil
}

// ListByUser returns the tenant's transfers, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transfer, error) {
	var rows []models.Transfer
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Since returns transfers created at or after the cutoff, used for movement
// aggregation.
func (r *Repository) Since(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Transfer, error) {
	var rows []models.Transfer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Find(&rows).Error
	return rows, err
}

// DeleteByUser removes every transfer for the tenant. Used only by the
// account data reset.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Transfer{}).Error
}

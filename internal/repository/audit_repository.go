package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/landfolio/cfd-api/internal/models"
)

// AuditRepository defines the interface for the append-only audit log.
// There is deliberately no Update or Delete.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	FindByEntity(ctx context.Context, entityType string, entityID uint) ([]models.AuditLogEntry, error)
	FindForContract(ctx context.Context, contractID uint, paymentIDs []uint) ([]models.AuditLogEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) FindByEntity(ctx context.Context, entityType string, entityID uint) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// FindForContract returns the contract's own entries merged with the entries
// of its payments, newest first.
func (r *auditRepository) FindForContract(ctx context.Context, contractID uint, paymentIDs []uint) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	db := r.db.WithContext(ctx)
	if len(paymentIDs) > 0 {
		db = db.Where(
			"(entity_type = ? AND entity_id = ?) OR (entity_type = ? AND entity_id IN ?)",
			models.AuditEntityContract, contractID, models.AuditEntityPayment, paymentIDs)
	} else {
		db = db.Where("entity_type = ? AND entity_id = ?", models.AuditEntityContract, contractID)
	}
	err := db.Order("created_at DESC").Find(&entries).Error
	return entries, err
}

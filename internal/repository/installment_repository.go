package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/landfolio/cfd-api/internal/models"
)

// InstallmentRepository defines the interface for schedule row data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Installment, error)
	FindByContract(ctx context.Context, contractID uint) ([]models.Installment, error)
	FindPendingDueBefore(ctx context.Context, cutoff time.Time) ([]models.Installment, error)
	FindDueInPeriod(ctx context.Context, start, end time.Time) ([]models.Installment, error)
	ReplaceForContract(ctx context.Context, contractID uint, installments []models.Installment) error
	Update(ctx context.Context, installment *models.Installment) error
	MarkOverdue(ctx context.Context, ids []uint) error
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByContract(ctx context.Context, contractID uint) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("due_date ASC, installment_number ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) FindPendingDueBefore(ctx context.Context, cutoff time.Time) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", models.InstallmentStatusPending, cutoff).
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) FindDueInPeriod(ctx context.Context, start, end time.Time) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("due_date >= ? AND due_date <= ?", start, end).
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

// ReplaceForContract swaps a contract's schedule atomically. Delete and insert
// run in one transaction so regeneration is idempotent: rerunning it can never
// leave duplicate or orphaned rows.
func (r *installmentRepository) ReplaceForContract(ctx context.Context, contractID uint, installments []models.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", contractID).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		if len(installments) == 0 {
			return nil
		}
		return tx.Create(&installments).Error
	})
}

func (r *installmentRepository) Update(ctx context.Context, installment *models.Installment) error {
	return r.db.WithContext(ctx).Save(installment).Error
}

func (r *installmentRepository) MarkOverdue(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("id IN ?", ids).
		Update("status", models.InstallmentStatusOverdue).Error
}

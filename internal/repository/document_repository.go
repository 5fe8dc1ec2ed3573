package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/landfolio/cfd-api/internal/models"
)

// DocumentRepository defines the interface for contract document references
type DocumentRepository interface {
	FindByContract(ctx context.Context, contractID uint) ([]models.ContractDocument, error)
	Create(ctx context.Context, doc *models.ContractDocument) error
	Delete(ctx context.Context, id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) FindByContract(ctx context.Context, contractID uint) ([]models.ContractDocument, error) {
	var docs []models.ContractDocument
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Create(ctx context.Context, doc *models.ContractDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ContractDocument{}, id).Error
}

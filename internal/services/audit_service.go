package services

import (
	"context"
	"fmt"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
)

// Tracked fields per entity. Only changes to these are recorded; everything
// else passes through silently.
var auditedContractFields = map[string]bool{
	"contract_price":     true,
	"cost_basis":         true,
	"down_payment":       true,
	"opening_receivable": true,
	"transfer_date":      true,
	"close_date":         true,
}

var auditedPaymentFields = map[string]bool{
	"payment_date":     true,
	"amount_total":     true,
	"principal_amount": true,
	"late_fee_amount":  true,
}

// AuditService records field-level changes to financially material data.
// Entries are append-only; a change without a reason is rejected outright.
type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// IsTracked reports whether the field on the entity type is audit-relevant.
func (s *AuditService) IsTracked(entityType, field string) bool {
	switch entityType {
	case models.AuditEntityContract:
		return auditedContractFields[field]
	case models.AuditEntityPayment:
		return auditedPaymentFields[field]
	}
	return false
}

// LogFieldChange writes one audit entry for a tracked field. Untracked fields
// and unchanged values are no-ops. An empty reason fails the whole change.
func (s *AuditService) LogFieldChange(ctx context.Context, entityType string, entityID uint, field, oldValue, newValue, actor, reason string) error {
	if !s.IsTracked(entityType, field) {
		return nil
	}
	if oldValue == newValue {
		return nil
	}
	if reason == "" {
		return fmt.Errorf("%w: %s.%s", ErrReasonRequired, entityType, field)
	}

	entry := &models.AuditLogEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		Actor:      actor,
		Reason:     reason,
	}
	return s.repo.Create(ctx, entry)
}

// GetAuditLogForContract returns the contract's entries merged with those of
// its payments, newest first.
func (s *AuditService) GetAuditLogForContract(ctx context.Context, contractID uint, paymentIDs []uint) ([]models.AuditLogEntry, error) {
	return s.repo.FindForContract(ctx, contractID, paymentIDs)
}

// GetAuditLogForEntity returns the history of a single entity.
func (s *AuditService) GetAuditLogForEntity(ctx context.Context, entityType string, entityID uint) ([]models.AuditLogEntry, error) {
	return s.repo.FindByEntity(ctx, entityType, entityID)
}

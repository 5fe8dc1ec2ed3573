package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
)

type PaymentService struct {
	repo         repository.PaymentRepository
	contractRepo repository.ContractRepository
	auditSvc     *AuditService
}

func NewPaymentService(
	repo repository.PaymentRepository,
	contractRepo repository.ContractRepository,
	auditSvc *AuditService,
) *PaymentService {
	return &PaymentService{
		repo:         repo,
		contractRepo: contractRepo,
		auditSvc:     auditSvc,
	}
}

// FindByID gets a payment by ID
func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return payment, err
}

// FindByContract lists a contract's payments ordered by date.
func (s *PaymentService) FindByContract(ctx context.Context, contractID uint) ([]models.Payment, error) {
	return s.repo.FindByContract(ctx, contractID)
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

// Create validates and records a received payment against its contract.
func (s *PaymentService) Create(ctx context.Context, payment *models.Payment) error {
	if _, err := s.contractRepo.FindByID(ctx, payment.ContractID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contract %d", ErrNotFound, payment.ContractID)
		}
		return err
	}
	if err := payment.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return s.repo.Create(ctx, payment)
}

// PaymentUpdate carries an audited edit of a payment.
type PaymentUpdate struct {
	Payment *models.Payment
	Actor   string
	Reason  string
}

// Update applies an audited edit. Each tracked field change becomes an audit
// entry; a missing reason rejects the update before anything is written. The
// payment stays on its original contract: ContractID is not editable here.
func (s *PaymentService) Update(ctx context.Context, upd PaymentUpdate) (*models.Payment, error) {
	updated := upd.Payment
	old, err := s.FindByID(ctx, updated.ID)
	if err != nil {
		return nil, err
	}

	updated.ID = old.ID
	updated.ContractID = old.ContractID
	updated.CreatedAt = old.CreatedAt

	changes := diffPayment(old, updated)
	if len(changes) > 0 && upd.Reason == "" {
		return nil, ErrReasonRequired
	}

	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	// Audit entries follow a successful save; the append-only log must never
	// record a change that was not persisted.
	for _, ch := range changes {
		if err := s.auditSvc.LogFieldChange(ctx, models.AuditEntityPayment, old.ID,
			ch.field, ch.oldValue, ch.newValue, upd.Actor, upd.Reason); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Delete removes a payment row.
func (s *PaymentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func diffPayment(old, updated *models.Payment) []fieldChange {
	var changes []fieldChange

	add := func(field, oldVal, newVal string) {
		if oldVal != newVal {
			changes = append(changes, fieldChange{field: field, oldValue: oldVal, newValue: newVal})
		}
	}

	add("payment_date", old.PaymentDate.Format("2006-01-02"), updated.PaymentDate.Format("2006-01-02"))
	add("amount_total", old.AmountTotal.String(), updated.AmountTotal.String())
	add("principal_amount", old.PrincipalAmount.String(), updated.PrincipalAmount.String())
	add("late_fee_amount", old.LateFeeAmount.String(), updated.LateFeeAmount.String())

	return changes
}

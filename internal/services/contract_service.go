package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
	"github.com/landfolio/cfd-api/internal/statemachine"
)

type ContractService struct {
	repo         repository.ContractRepository
	paymentRepo  repository.PaymentRepository
	documentRepo repository.DocumentRepository
	auditSvc     *AuditService
	scheduleSvc  *ScheduleService
}

func NewContractService(
	repo repository.ContractRepository,
	paymentRepo repository.PaymentRepository,
	documentRepo repository.DocumentRepository,
	auditSvc *AuditService,
	scheduleSvc *ScheduleService,
) *ContractService {
	return &ContractService{
		repo:         repo,
		paymentRepo:  paymentRepo,
		documentRepo: documentRepo,
		auditSvc:     auditSvc,
		scheduleSvc:  scheduleSvc,
	}
}

// FindByID gets a contract by ID
func (s *ContractService) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return contract, err
}

// FindByIDWithDetails gets a contract with payments, installments and documents
func (s *ContractService) FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return contract, err
}

func (s *ContractService) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	return s.repo.List(ctx, query)
}

// Create validates, normalizes and persists a new contract, then generates its
// installment schedule. Property IDs are unique across the book.
func (s *ContractService) Create(ctx context.Context, contract *models.Contract) error {
	contract.PropertyID = models.NormalizePropertyID(contract.PropertyID)
	if err := contract.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if existing, err := s.repo.FindByPropertyID(ctx, contract.PropertyID); err == nil && existing != nil {
		return fmt.Errorf("%w: property %s", ErrDuplicate, contract.PropertyID)
	}

	if contract.GUID == "" {
		contract.GUID = uuid.New().String()
	}
	if contract.Status == "" {
		contract.Status = models.ContractStatusActive
	}
	if contract.DeedStatus == "" {
		contract.DeedStatus = models.DeedStatusUnknown
	}

	if err := s.repo.Create(ctx, contract); err != nil {
		return err
	}

	return s.scheduleSvc.Regenerate(ctx, contract)
}

// ContractUpdate carries an audited edit: the new field values plus the
// mandatory reason and acting user.
type ContractUpdate struct {
	Contract *models.Contract
	Actor    string
	Reason   string
}

// scheduleDefiningChanged reports whether the edit touched a field the stored
// installment schedule is derived from.
func scheduleDefiningChanged(old, updated *models.Contract) bool {
	if !equalDecimalPtr(old.InstallmentAmount, updated.InstallmentAmount) {
		return true
	}
	if !equalIntPtr(old.InstallmentCount, updated.InstallmentCount) {
		return true
	}
	if !equalTimePtr(old.FirstInstallmentDate, updated.FirstInstallmentDate) {
		return true
	}
	if !equalDecimalPtr(old.BalloonAmount, updated.BalloonAmount) {
		return true
	}
	if !equalTimePtr(old.BalloonDate, updated.BalloonDate) {
		return true
	}
	return false
}

// Update applies an audited edit. Tracked financial fields are diffed against
// the stored row and each change becomes an audit entry; a missing reason
// fails the whole update before anything is written. Identity and lifecycle
// fields never come from the edit payload: GUID and timestamps stick to the
// stored row, and status moves only through UpdateStatus. Schedule-defining
// changes regenerate the installment schedule afterwards.
func (s *ContractService) Update(ctx context.Context, upd ContractUpdate) (*models.Contract, error) {
	updated := upd.Contract
	old, err := s.FindByID(ctx, updated.ID)
	if err != nil {
		return nil, err
	}

	updated.ID = old.ID
	updated.GUID = old.GUID
	updated.Status = old.Status
	updated.CreatedAt = old.CreatedAt

	changes := diffContract(old, updated)
	if len(changes) > 0 && upd.Reason == "" {
		return nil, ErrReasonRequired
	}

	updated.PropertyID = models.NormalizePropertyID(updated.PropertyID)
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	// Audit entries follow a successful save; the append-only log must never
	// record a change that was not persisted.
	for _, ch := range changes {
		if err := s.auditSvc.LogFieldChange(ctx, models.AuditEntityContract, old.ID,
			ch.field, ch.oldValue, ch.newValue, upd.Actor, upd.Reason); err != nil {
			return nil, err
		}
	}

	if scheduleDefiningChanged(old, updated) {
		if err := s.scheduleSvc.Regenerate(ctx, updated); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// UpdateStatus applies a servicing event through the state machine. The event
// name is one of pay_off, default, repossess, reinstate.
func (s *ContractService) UpdateStatus(ctx context.Context, id uint, event string) (*models.Contract, error) {
	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewContractFSM(contract)
	switch event {
	case "pay_off":
		err = fsm.PayOff(ctx)
	case "default":
		err = fsm.Default(ctx)
	case "repossess":
		err = fsm.Repossess(ctx)
	case "reinstate":
		err = fsm.Reinstate(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown event %q", ErrInvalidState, event)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// Delete removes a contract. Its payments and installments go with it.
func (s *ContractService) Delete(ctx context.Context, id uint) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddDocument registers a document reference for a contract.
func (s *ContractService) AddDocument(ctx context.Context, doc *models.ContractDocument) error {
	if _, err := s.FindByID(ctx, doc.ContractID); err != nil {
		return err
	}
	return s.documentRepo.Create(ctx, doc)
}

type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

func diffContract(old, updated *models.Contract) []fieldChange {
	var changes []fieldChange

	add := func(field, oldVal, newVal string) {
		if oldVal != newVal {
			changes = append(changes, fieldChange{field: field, oldValue: oldVal, newValue: newVal})
		}
	}

	add("contract_price", old.ContractPrice.String(), updated.ContractPrice.String())
	add("cost_basis", old.CostBasis.String(), updated.CostBasis.String())
	add("down_payment", old.DownPayment.String(), updated.DownPayment.String())
	add("opening_receivable", decimalPtrString(old.OpeningReceivable), decimalPtrString(updated.OpeningReceivable))
	add("transfer_date", timePtrString(old.TransferDate), timePtrString(updated.TransferDate))
	add("close_date", timePtrString(old.CloseDate), timePtrString(updated.CloseDate))

	return changes
}

func decimalPtrString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func equalDecimalPtr(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func timePtrString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

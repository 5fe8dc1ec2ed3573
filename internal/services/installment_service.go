package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
)

type InstallmentService struct {
	repo        repository.InstallmentRepository
	paymentRepo repository.PaymentRepository
	scheduleSvc *ScheduleService
}

func NewInstallmentService(
	repo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	scheduleSvc *ScheduleService,
) *InstallmentService {
	return &InstallmentService{
		repo:        repo,
		paymentRepo: paymentRepo,
		scheduleSvc: scheduleSvc,
	}
}

// FindByContract returns the contract's schedule, refreshing overdue statuses
// first so reads never show a stale pending row.
func (s *InstallmentService) FindByContract(ctx context.Context, contractID uint) ([]models.Installment, error) {
	if err := s.scheduleSvc.RefreshOverdue(ctx, time.Now()); err != nil {
		return nil, err
	}
	return s.repo.FindByContract(ctx, contractID)
}

// MarkPaidInput describes a received payment applied to a scheduled row.
type MarkPaidInput struct {
	PaidDate   time.Time
	PaidAmount decimal.Decimal
	ReceivedBy string
	Channel    string
	Memo       *string
}

// MarkAsPaid records an actual payment against an installment and links the
// two. Paying at least the scheduled amount settles the row; anything less
// leaves it partial.
func (s *InstallmentService) MarkAsPaid(ctx context.Context, installmentID uint, in MarkPaidInput) (*models.Installment, error) {
	installment, err := s.repo.FindByID(ctx, installmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !installment.IsOpen() {
		return nil, fmt.Errorf("%w: installment %d is already paid", ErrInvalidState, installmentID)
	}
	if !in.PaidAmount.IsPositive() {
		return nil, fmt.Errorf("%w: paid amount must be positive", ErrValidation)
	}

	payment := &models.Payment{
		ContractID:      installment.ContractID,
		PaymentDate:     in.PaidDate,
		AmountTotal:     in.PaidAmount,
		PrincipalAmount: in.PaidAmount,
		LateFeeAmount:   decimal.Zero,
		ReceivedBy:      in.ReceivedBy,
		Channel:         in.Channel,
		Memo:            in.Memo,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	installment.PaidDate = &in.PaidDate
	installment.PaidAmount = &in.PaidAmount
	installment.PaymentID = &payment.ID
	if in.PaidAmount.GreaterThanOrEqual(installment.Amount) {
		installment.Status = models.InstallmentStatusPaid
	} else {
		installment.Status = models.InstallmentStatusPartial
	}

	if err := s.repo.Update(ctx, installment); err != nil {
		return nil, err
	}
	return installment, nil
}

package services

import (
	"context"
	"time"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
)

// ScheduleService builds and persists expected installment schedules
type ScheduleService struct {
	installmentRepo repository.InstallmentRepository
}

// NewScheduleService creates a new schedule service
func NewScheduleService(installmentRepo repository.InstallmentRepository) *ScheduleService {
	return &ScheduleService{installmentRepo: installmentRepo}
}

// BuildSchedule derives the expected installment rows from contract terms
// without touching the database. Contracts missing schedule terms yield nil;
// cash sales never carry a schedule.
func (s *ScheduleService) BuildSchedule(contract *models.Contract) []models.Installment {
	if !contract.HasScheduleTerms() {
		return nil
	}

	count := *contract.InstallmentCount
	amount := *contract.InstallmentAmount
	first := *contract.FirstInstallmentDate

	installments := make([]models.Installment, 0, count+1)
	for i := 0; i < count; i++ {
		installments = append(installments, models.Installment{
			ContractID:        contract.ID,
			InstallmentNumber: i + 1,
			DueDate:           first.AddDate(0, i, 0),
			Amount:            amount,
			Type:              models.InstallmentTypeRegular,
			Status:            models.InstallmentStatusPending,
		})
	}

	if contract.BalloonAmount != nil && contract.BalloonAmount.IsPositive() && contract.BalloonDate != nil {
		installments = append(installments, models.Installment{
			ContractID:        contract.ID,
			InstallmentNumber: models.BalloonInstallmentNumber,
			DueDate:           *contract.BalloonDate,
			Amount:            *contract.BalloonAmount,
			Type:              models.InstallmentTypeBalloon,
			Status:            models.InstallmentStatusPending,
		})
	}

	return installments
}

// Regenerate replaces the contract's stored schedule with a freshly derived
// one. The swap is transactional, so calling it any number of times lands on
// the same rows. Contracts without schedule terms end with an empty schedule.
func (s *ScheduleService) Regenerate(ctx context.Context, contract *models.Contract) error {
	installments := s.BuildSchedule(contract)
	return s.installmentRepo.ReplaceForContract(ctx, contract.ID, installments)
}

// RefreshOverdue flips pending rows whose due date has passed to overdue.
// Partial rows keep their status. Runs synchronously before schedule reads so
// no background job is needed to keep statuses honest.
func (s *ScheduleService) RefreshOverdue(ctx context.Context, now time.Time) error {
	pending, err := s.installmentRepo.FindPendingDueBefore(ctx, now)
	if err != nil {
		return err
	}

	ids := make([]uint, 0, len(pending))
	for _, inst := range pending {
		ids = append(ids, inst.ID)
	}
	return s.installmentRepo.MarkOverdue(ctx, ids)
}

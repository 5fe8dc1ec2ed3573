package services

import (
	"github.com/landfolio/cfd-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Contract    *ContractService
	Payment     *PaymentService
	Installment *InstallmentService
	Schedule    *ScheduleService
	Audit       *AuditService
	Import      *ImportService
	Exception   *ExceptionService
	Report      *ReportService
	Export      *ExportService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories) *Services {
	auditSvc := NewAuditService(repos.Audit)
	scheduleSvc := NewScheduleService(repos.Installment)
	contractSvc := NewContractService(repos.Contract, repos.Payment, repos.Document, auditSvc, scheduleSvc)

	return &Services{
		Contract:    contractSvc,
		Payment:     NewPaymentService(repos.Payment, repos.Contract, auditSvc),
		Installment: NewInstallmentService(repos.Installment, repos.Payment, scheduleSvc),
		Schedule:    scheduleSvc,
		Audit:       auditSvc,
		Import:      NewImportService(contractSvc),
		Exception:   NewExceptionService(repos.Contract),
		Report:      NewReportService(repos.Contract, repos.Installment, scheduleSvc),
		Export:      NewExportService(),
	}
}

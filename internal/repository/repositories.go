package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Contract    ContractRepository
	Payment     PaymentRepository
	Installment InstallmentRepository
	Audit       AuditRepository
	Document    DocumentRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Contract:    NewContractRepository(db),
		Payment:     NewPaymentRepository(db),
		Installment: NewInstallmentRepository(db),
		Audit:       NewAuditRepository(db),
		Document:    NewDocumentRepository(db),
	}
}

// ListQuery captures pagination, search, sorting and filter parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

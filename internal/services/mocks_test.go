package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
)

// In-memory repository fakes used across the service tests.

type mockContractRepo struct {
	contracts map[uint]*models.Contract
	nextID    uint
}

func newMockContractRepo() *mockContractRepo {
	return &mockContractRepo{contracts: make(map[uint]*models.Contract), nextID: 1}
}

func (m *mockContractRepo) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockContractRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	return m.FindByID(ctx, id)
}

func (m *mockContractRepo) FindByPropertyID(ctx context.Context, propertyID string) (*models.Contract, error) {
	for _, c := range m.contracts {
		if c.PropertyID == propertyID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContractRepo) FindAllWithDetails(ctx context.Context) ([]models.Contract, error) {
	out := make([]models.Contract, 0, len(m.contracts))
	for _, c := range m.contracts {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	contract.ID = m.nextID
	m.nextID++
	cp := *contract
	m.contracts[contract.ID] = &cp
	return nil
}

func (m *mockContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	if _, ok := m.contracts[contract.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *contract
	m.contracts[contract.ID] = &cp
	return nil
}

func (m *mockContractRepo) Delete(ctx context.Context, id uint) error {
	delete(m.contracts, id)
	return nil
}

func (m *mockContractRepo) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	all, _ := m.FindAllWithDetails(ctx)
	return all, int64(len(all)), nil
}

type mockPaymentRepo struct {
	payments map[uint]*models.Payment
	nextID   uint
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[uint]*models.Payment), nextID: 1}
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) FindByContract(ctx context.Context, contractID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.ContractID == contractID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) FindInPeriod(ctx context.Context, start, end time.Time) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if !p.PaymentDate.Before(start) && !p.PaymentDate.After(end) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = m.nextID
	m.nextID++
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	if _, ok := m.payments[payment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) Delete(ctx context.Context, id uint) error {
	delete(m.payments, id)
	return nil
}

func (m *mockPaymentRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	var out []models.Payment
	for _, p := range m.payments {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

type mockInstallmentRepo struct {
	installments map[uint]*models.Installment
	nextID       uint
}

func newMockInstallmentRepo() *mockInstallmentRepo {
	return &mockInstallmentRepo{installments: make(map[uint]*models.Installment), nextID: 1}
}

func (m *mockInstallmentRepo) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	i, ok := m.installments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *i
	return &cp, nil
}

func (m *mockInstallmentRepo) FindByContract(ctx context.Context, contractID uint) ([]models.Installment, error) {
	var out []models.Installment
	for _, i := range m.installments {
		if i.ContractID == contractID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (m *mockInstallmentRepo) FindPendingDueBefore(ctx context.Context, cutoff time.Time) ([]models.Installment, error) {
	var out []models.Installment
	for _, i := range m.installments {
		if i.Status == models.InstallmentStatusPending && i.DueDate.Before(cutoff) {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (m *mockInstallmentRepo) FindDueInPeriod(ctx context.Context, start, end time.Time) ([]models.Installment, error) {
	var out []models.Installment
	for _, i := range m.installments {
		if !i.DueDate.Before(start) && !i.DueDate.After(end) {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (m *mockInstallmentRepo) ReplaceForContract(ctx context.Context, contractID uint, installments []models.Installment) error {
	for id, i := range m.installments {
		if i.ContractID == contractID {
			delete(m.installments, id)
		}
	}
	for idx := range installments {
		installments[idx].ID = m.nextID
		m.nextID++
		cp := installments[idx]
		m.installments[cp.ID] = &cp
	}
	return nil
}

func (m *mockInstallmentRepo) Update(ctx context.Context, installment *models.Installment) error {
	if _, ok := m.installments[installment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *installment
	m.installments[installment.ID] = &cp
	return nil
}

func (m *mockInstallmentRepo) MarkOverdue(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		if i, ok := m.installments[id]; ok {
			i.Status = models.InstallmentStatusOverdue
		}
	}
	return nil
}

type mockAuditRepo struct {
	entries []models.AuditLogEntry
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) FindByEntity(ctx context.Context, entityType string, entityID uint) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	for _, e := range m.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) FindForContract(ctx context.Context, contractID uint, paymentIDs []uint) ([]models.AuditLogEntry, error) {
	inPayments := make(map[uint]bool, len(paymentIDs))
	for _, id := range paymentIDs {
		inPayments[id] = true
	}
	var out []models.AuditLogEntry
	for _, e := range m.entries {
		if e.EntityType == models.AuditEntityContract && e.EntityID == contractID {
			out = append(out, e)
		}
		if e.EntityType == models.AuditEntityPayment && inPayments[e.EntityID] {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockDocumentRepo struct {
	docs   map[uint]*models.ContractDocument
	nextID uint
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: make(map[uint]*models.ContractDocument), nextID: 1}
}

func (m *mockDocumentRepo) FindByContract(ctx context.Context, contractID uint) ([]models.ContractDocument, error) {
	var out []models.ContractDocument
	for _, d := range m.docs {
		if d.ContractID == contractID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *models.ContractDocument) error {
	doc.ID = m.nextID
	m.nextID++
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id uint) error {
	delete(m.docs, id)
	return nil
}

// failingContractRepo rejects every save, for exercising persist-failure paths.
type failingContractRepo struct {
	*mockContractRepo
}

func (f *failingContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	return errSaveFailed
}

// failingPaymentRepo rejects every save, for exercising persist-failure paths.
type failingPaymentRepo struct {
	*mockPaymentRepo
}

func (f *failingPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	return errSaveFailed
}

var errSaveFailed = errors.New("save failed")

// newTestServices wires the full service graph over the in-memory fakes.
func newTestServices() (*Services, *mockContractRepo, *mockPaymentRepo, *mockInstallmentRepo, *mockAuditRepo) {
	contractRepo := newMockContractRepo()
	paymentRepo := newMockPaymentRepo()
	installmentRepo := newMockInstallmentRepo()
	auditRepo := newMockAuditRepo()
	documentRepo := newMockDocumentRepo()

	repos := &repository.Repositories{
		Contract:    contractRepo,
		Payment:     paymentRepo,
		Installment: installmentRepo,
		Audit:       auditRepo,
		Document:    documentRepo,
	}
	return NewServices(repos), contractRepo, paymentRepo, installmentRepo, auditRepo
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landfolio/cfd-api/internal/models"
)

func TestContractCreateNormalizesAndGeneratesSchedule(t *testing.T) {
	svcs, _, _, installmentRepo, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	c.PropertyID = "  #012 "
	require.NoError(t, svcs.Contract.Create(ctx, c))

	assert.Equal(t, "#12", c.PropertyID)
	assert.NotEmpty(t, c.GUID)

	rows, err := installmentRepo.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 12)
}

func TestContractCreateRejectsDuplicatePropertyID(t *testing.T) {
	svcs, _, _, _, _ := newTestServices()
	ctx := context.Background()

	require.NoError(t, svcs.Contract.Create(ctx, directCFDContract()))

	dup := directCFDContract()
	dup.PropertyID = "012" // normalizes to the same key
	err := svcs.Contract.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestContractCreateRejectsInvalidVariant(t *testing.T) {
	svcs, _, _, _, _ := newTestServices()

	c := directCFDContract()
	transfer := date(2024, time.March, 1)
	c.TransferDate = &transfer // direct contracts must not carry one
	err := svcs.Contract.Create(context.Background(), c)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestContractUpdateRequiresReasonForTrackedChange(t *testing.T) {
	svcs, _, _, _, auditRepo := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	edited := *c
	edited.DownPayment = dec("5000")
	_, err := svcs.Contract.Update(ctx, ContractUpdate{Contract: &edited, Actor: "maria"})
	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Empty(t, auditRepo.entries)
}

func TestContractUpdatePersistsDownPaymentAndAudits(t *testing.T) {
	svcs, contractRepo, _, _, auditRepo := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	edited := *c
	edited.DownPayment = dec("5000")
	updated, err := svcs.Contract.Update(ctx, ContractUpdate{
		Contract: &edited, Actor: "maria", Reason: "buyer increased the deposit",
	})
	require.NoError(t, err)
	assert.True(t, updated.DownPayment.Equal(dec("5000")))

	stored, err := contractRepo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.DownPayment.Equal(dec("5000")))

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, "down_payment", auditRepo.entries[0].Field)
	assert.Equal(t, "4000", auditRepo.entries[0].OldValue)
	assert.Equal(t, "5000", auditRepo.entries[0].NewValue)
}

func TestContractUpdateCannotChangeStatus(t *testing.T) {
	svcs, contractRepo, _, _, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	edited := *c
	edited.Status = models.ContractStatusRepossessed
	updated, err := svcs.Contract.Update(ctx, ContractUpdate{
		Contract: &edited, Actor: "maria", Reason: "attempted status override",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusActive, updated.Status)

	stored, err := contractRepo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusActive, stored.Status)
}

func TestContractUpdatePreservesIdentityWhenOmitted(t *testing.T) {
	svcs, contractRepo, _, _, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	// A sparse payload, the way a client that only sends edited fields would.
	edited := *c
	edited.Status = ""
	edited.GUID = ""
	_, err := svcs.Contract.Update(ctx, ContractUpdate{
		Contract: &edited, Actor: "maria", Reason: "touch up",
	})
	require.NoError(t, err)

	stored, err := contractRepo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusActive, stored.Status)
	assert.Equal(t, c.GUID, stored.GUID)

	// The lifecycle still works afterwards.
	updated, err := svcs.Contract.UpdateStatus(ctx, c.ID, "default")
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusDefault, updated.Status)
}

func TestContractUpdateSkipsAuditWhenSaveFails(t *testing.T) {
	contractRepo := newMockContractRepo()
	auditRepo := newMockAuditRepo()
	auditSvc := NewAuditService(auditRepo)
	scheduleSvc := NewScheduleService(newMockInstallmentRepo())
	svc := NewContractService(&failingContractRepo{contractRepo}, newMockPaymentRepo(),
		newMockDocumentRepo(), auditSvc, scheduleSvc)
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, contractRepo.Create(ctx, c))

	edited := *c
	edited.DownPayment = dec("5000")
	_, err := svc.Update(ctx, ContractUpdate{
		Contract: &edited, Actor: "maria", Reason: "buyer increased the deposit",
	})
	require.Error(t, err)
	assert.Empty(t, auditRepo.entries)
}

func TestContractUpdateRegeneratesScheduleOnTermChange(t *testing.T) {
	svcs, _, _, installmentRepo, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	edited := *c
	count := 6
	edited.InstallmentCount = &count
	_, err := svcs.Contract.Update(ctx, ContractUpdate{
		Contract: &edited, Actor: "maria", Reason: "refinanced term",
	})
	require.NoError(t, err)

	rows, err := installmentRepo.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestContractUpdateStatusThroughFSM(t *testing.T) {
	svcs, _, _, _, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	updated, err := svcs.Contract.UpdateStatus(ctx, c.ID, "default")
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusDefault, updated.Status)

	updated, err = svcs.Contract.UpdateStatus(ctx, c.ID, "repossess")
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusRepossessed, updated.Status)

	_, err = svcs.Contract.UpdateStatus(ctx, c.ID, "reinstate")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestContractUpdateStatusRejectsUnknownEvent(t *testing.T) {
	svcs, _, _, _, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	_, err := svcs.Contract.UpdateStatus(ctx, c.ID, "launch")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestContractFindByIDNotFound(t *testing.T) {
	svcs, _, _, _, _ := newTestServices()
	_, err := svcs.Contract.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

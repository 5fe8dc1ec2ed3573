package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landfolio/cfd-api/internal/models"
)

func TestAuditLogFieldChangeAppendsTrackedChange(t *testing.T) {
	repo := newMockAuditRepo()
	svc := NewAuditService(repo)
	ctx := context.Background()

	err := svc.LogFieldChange(ctx, models.AuditEntityContract, 1,
		"contract_price", "20000", "21000", "maria", "price corrected per signed amendment")
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, "contract_price", entry.Field)
	assert.Equal(t, "20000", entry.OldValue)
	assert.Equal(t, "21000", entry.NewValue)
	assert.Equal(t, "maria", entry.Actor)
}

func TestAuditLogFieldChangeIgnoresUntrackedField(t *testing.T) {
	repo := newMockAuditRepo()
	svc := NewAuditService(repo)

	err := svc.LogFieldChange(context.Background(), models.AuditEntityContract, 1,
		"notes", "old", "new", "maria", "reason")
	require.NoError(t, err)
	assert.Empty(t, repo.entries)
}

func TestAuditLogFieldChangeIgnoresUnchangedValue(t *testing.T) {
	repo := newMockAuditRepo()
	svc := NewAuditService(repo)

	err := svc.LogFieldChange(context.Background(), models.AuditEntityPayment, 4,
		"amount_total", "500", "500", "maria", "reason")
	require.NoError(t, err)
	assert.Empty(t, repo.entries)
}

func TestAuditLogFieldChangeFailsClosedWithoutReason(t *testing.T) {
	repo := newMockAuditRepo()
	svc := NewAuditService(repo)

	err := svc.LogFieldChange(context.Background(), models.AuditEntityPayment, 4,
		"amount_total", "500", "600", "maria", "")
	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Empty(t, repo.entries)
}

func TestAuditGetLogForContractMergesPaymentEntries(t *testing.T) {
	repo := newMockAuditRepo()
	svc := NewAuditService(repo)
	ctx := context.Background()

	require.NoError(t, svc.LogFieldChange(ctx, models.AuditEntityContract, 1,
		"cost_basis", "12000", "11500", "maria", "appraisal adjustment"))
	require.NoError(t, svc.LogFieldChange(ctx, models.AuditEntityPayment, 9,
		"principal_amount", "500", "475", "maria", "bank reconciliation"))
	require.NoError(t, svc.LogFieldChange(ctx, models.AuditEntityPayment, 99,
		"principal_amount", "100", "200", "maria", "other contract's payment"))

	entries, err := svc.GetAuditLogForContract(ctx, 1, []uint{9})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

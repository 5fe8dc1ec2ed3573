package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landfolio/cfd-api/internal/models"
)

func TestMarkAsPaidSettlesInstallment(t *testing.T) {
	svcs, _, paymentRepo, installmentRepo, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	rows, err := installmentRepo.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	target := rows[0]

	paid, err := svcs.Installment.MarkAsPaid(ctx, target.ID, MarkPaidInput{
		PaidDate:   date(2024, time.February, 3),
		PaidAmount: dec("500"),
		ReceivedBy: "office",
		Channel:    models.ChannelCheck,
	})
	require.NoError(t, err)

	assert.Equal(t, models.InstallmentStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentID)
	require.NotNil(t, paid.PaidAmount)
	assert.True(t, paid.PaidAmount.Equal(dec("500")))

	payment, err := paymentRepo.FindByID(ctx, *paid.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, payment.ContractID)
	assert.True(t, payment.PrincipalAmount.Equal(dec("500")))
	assert.True(t, payment.LateFeeAmount.IsZero())
}

func TestMarkAsPaidPartialAmount(t *testing.T) {
	svcs, _, _, installmentRepo, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	rows, err := installmentRepo.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	target := rows[0]

	paid, err := svcs.Installment.MarkAsPaid(ctx, target.ID, MarkPaidInput{
		PaidDate:   date(2024, time.February, 3),
		PaidAmount: dec("200"),
		ReceivedBy: "office",
		Channel:    models.ChannelCash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPartial, paid.Status)
}

func TestMarkAsPaidRejectsSettledInstallment(t *testing.T) {
	svcs, _, _, installmentRepo, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	rows, err := installmentRepo.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	target := rows[0]

	in := MarkPaidInput{
		PaidDate:   date(2024, time.February, 3),
		PaidAmount: dec("500"),
		ReceivedBy: "office",
		Channel:    models.ChannelCheck,
	}
	_, err = svcs.Installment.MarkAsPaid(ctx, target.ID, in)
	require.NoError(t, err)

	_, err = svcs.Installment.MarkAsPaid(ctx, target.ID, in)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMarkAsPaidRejectsNonPositiveAmount(t *testing.T) {
	svcs, _, _, installmentRepo, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, svcs.Contract.Create(ctx, c))

	rows, err := installmentRepo.FindByContract(ctx, c.ID)
	require.NoError(t, err)

	_, err = svcs.Installment.MarkAsPaid(ctx, rows[0].ID, MarkPaidInput{
		PaidDate:   date(2024, time.February, 3),
		PaidAmount: dec("0"),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFindByContractRefreshesOverdueFirst(t *testing.T) {
	svcs, _, _, installmentRepo, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	first := date(2020, time.January, 1)
	c.FirstInstallmentDate = &first
	require.NoError(t, svcs.Contract.Create(ctx, c))

	rows, err := svcs.Installment.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	// Every due date is in the past, so nothing may still read as pending.
	for _, r := range rows {
		assert.Equal(t, models.InstallmentStatusOverdue, r.Status)
	}

	stored, err := installmentRepo.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	for _, r := range stored {
		assert.Equal(t, models.InstallmentStatusOverdue, r.Status)
	}
}

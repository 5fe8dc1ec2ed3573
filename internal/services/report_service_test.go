package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landfolio/cfd-api/internal/finance"
	"github.com/landfolio/cfd-api/internal/models"
)

func TestTaxScheduleAssumedExcludesPreTransfer(t *testing.T) {
	svcs, contractRepo, _, _, _ := newTestServices()
	ctx := context.Background()

	c := assumedCFDContract()
	require.NoError(t, contractRepo.Create(ctx, c))
	stored := contractRepo.contracts[c.ID]
	stored.Payments = []models.Payment{
		receivedPayment(c.ID, date(2024, time.May, 15), "500", "0"), // prior owner's
		receivedPayment(c.ID, date(2024, time.July, 1), "1000", "0"),
		receivedPayment(c.ID, date(2024, time.August, 1), "1500", "25"),
	}

	report, err := svcs.Report.TaxSchedule(ctx, finance.YearPeriod(2024))
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.True(t, row.PrincipalReceived.Equal(dec("2500")), "got %s", row.PrincipalReceived)
	assert.True(t, row.GainRecognized.Equal(dec("1166.67")), "got %s", row.GainRecognized)
	assert.True(t, row.LateFees.Equal(dec("25")))
	assert.True(t, row.EndingReceivable.Equal(dec("7500")), "got %s", row.EndingReceivable)
	assert.True(t, row.EffectiveDownPayment.IsZero(), "assumed must not synthesize a down payment")

	assert.True(t, report.TotalPrincipal.Equal(dec("2500")))
	assert.True(t, report.TotalGain.Equal(dec("1166.67")))
	assert.True(t, report.TotalLateFees.Equal(dec("25")))
}

func TestTaxScheduleSynthesizesDirectDownPaymentOnce(t *testing.T) {
	svcs, contractRepo, _, _, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract() // contract date 2024-01-15, stated DP 4000
	require.NoError(t, contractRepo.Create(ctx, c))

	report, err := svcs.Report.TaxSchedule(ctx, finance.YearPeriod(2024))
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.True(t, row.EffectiveDownPayment.Equal(dec("4000")))
	assert.True(t, row.PrincipalReceived.Equal(dec("4000")))

	// 40% gross profit on 4000 of principal
	assert.True(t, row.GainRecognized.Equal(dec("1600.00")), "got %s", row.GainRecognized)
}

func TestTaxScheduleSkipsCashSales(t *testing.T) {
	svcs, contractRepo, _, _, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	c.SaleType = models.SaleTypeCash
	closeDate := date(2024, time.March, 1)
	c.CloseDate = &closeDate
	c.InstallmentAmount = nil
	c.InstallmentCount = nil
	c.FirstInstallmentDate = nil
	require.NoError(t, contractRepo.Create(ctx, c))

	report, err := svcs.Report.TaxSchedule(ctx, finance.YearPeriod(2024))
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
}

func TestSubledgerRunningBalance(t *testing.T) {
	svcs, contractRepo, _, _, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, contractRepo.Create(ctx, c))
	stored := contractRepo.contracts[c.ID]
	stored.Payments = []models.Payment{
		receivedPayment(c.ID, date(2024, time.February, 1), "500", "0"),
		receivedPayment(c.ID, date(2024, time.March, 1), "500", "25"),
	}

	report, err := svcs.Report.Subledger(ctx, finance.YearPeriod(2024))
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	// Starts from 20000 - 4000 = 16000 and steps down by principal.
	assert.True(t, report.Rows[0].RunningReceivable.Equal(dec("15500")), "got %s", report.Rows[0].RunningReceivable)
	assert.True(t, report.Rows[1].RunningReceivable.Equal(dec("15000")), "got %s", report.Rows[1].RunningReceivable)
}

func TestCashFlowProjectionGroupsByMonth(t *testing.T) {
	svcs, contractRepo, _, installmentRepo, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	count := 3
	now := time.Now().UTC()
	// Anchor mid-month so monthly stepping never rolls over a short month.
	first := time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	c.InstallmentCount = &count
	c.FirstInstallmentDate = &first
	require.NoError(t, contractRepo.Create(ctx, c))
	require.NoError(t, svcs.Schedule.Regenerate(ctx, c))

	report, err := svcs.Report.CashFlowProjection(ctx, 6)
	require.NoError(t, err)

	require.Len(t, report.Months, 3)
	assert.True(t, report.TotalExpected.Equal(dec("1500")), "got %s", report.TotalExpected)
	for _, m := range report.Months {
		assert.Equal(t, 1, m.DueCount)
		assert.True(t, m.AmountDue.Equal(dec("500")))
	}

	// Settled rows drop out of the projection.
	rows, err := installmentRepo.FindByContract(ctx, c.ID)
	require.NoError(t, err)
	rows[0].Status = models.InstallmentStatusPaid
	require.NoError(t, installmentRepo.Update(ctx, &rows[0]))

	report, err = svcs.Report.CashFlowProjection(ctx, 6)
	require.NoError(t, err)
	assert.True(t, report.TotalExpected.Equal(dec("1000")), "got %s", report.TotalExpected)
}

func TestPreDeedTieOutClassification(t *testing.T) {
	svcs, contractRepo, _, _, _ := newTestServices()
	ctx := context.Background()
	cutoff := date(2024, time.December, 31)

	unknown := directCFDContract()
	require.NoError(t, contractRepo.Create(ctx, unknown))

	notRecorded := directCFDContract()
	notRecorded.PropertyID = "#21"
	notRecorded.DeedStatus = models.DeedStatusNotRecorded
	require.NoError(t, contractRepo.Create(ctx, notRecorded))

	recordedBefore := directCFDContract()
	recordedBefore.PropertyID = "#22"
	recordedBefore.DeedStatus = models.DeedStatusRecorded
	d1 := date(2024, time.June, 1)
	recordedBefore.DeedRecordedDate = &d1
	require.NoError(t, contractRepo.Create(ctx, recordedBefore))

	recordedAfter := directCFDContract()
	recordedAfter.PropertyID = "#23"
	recordedAfter.DeedStatus = models.DeedStatusRecorded
	d2 := date(2025, time.February, 1)
	recordedAfter.DeedRecordedDate = &d2
	require.NoError(t, contractRepo.Create(ctx, recordedAfter))

	report, err := svcs.Report.PreDeedTieOut(ctx, cutoff)
	require.NoError(t, err)

	assert.Equal(t, 1, report.RecordedCount)
	assert.Equal(t, 2, report.PreDeedCount, "not recorded plus recorded after cutoff")
	assert.Equal(t, 1, report.MissingInfoCount)

	byProperty := map[string]string{}
	for _, row := range report.Rows {
		byProperty[row.PropertyID] = row.Classification
	}
	assert.Equal(t, TieOutMissingInfo, byProperty["#12"])
	assert.Equal(t, TieOutPreDeed, byProperty["#21"])
	assert.Equal(t, TieOutRecorded, byProperty["#22"])
	assert.Equal(t, TieOutPreDeed, byProperty["#23"])
}

func TestFinancialsDerivesFullPicture(t *testing.T) {
	svcs, contractRepo, _, _, _ := newTestServices()
	ctx := context.Background()

	c := directCFDContract()
	require.NoError(t, contractRepo.Create(ctx, c))
	stored := contractRepo.contracts[c.ID]
	stored.Payments = []models.Payment{
		receivedPayment(c.ID, date(2024, time.February, 1), "500", "0"),
	}

	fin, err := svcs.Report.Financials(ctx, c.ID)
	require.NoError(t, err)

	assert.True(t, fin.GrossProfitPercent.Equal(dec("40")))
	assert.True(t, fin.ReceivableBalance.Equal(dec("15500")))
	assert.True(t, fin.GainToDate.Equal(dec("200.00")), "got %s", fin.GainToDate)
	assert.True(t, fin.ROI.Equal(dec("66.67")))
}

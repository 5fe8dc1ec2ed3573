package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importHeader = "property_id,buyer_name,county,state,origin_type,sale_type,contract_date,transfer_date,close_date,contract_price,cost_basis,down_payment,installment_amount,installment_count,installments_paid_by_transfer,opening_receivable,first_installment_date,status,deed_status\n"

func TestImportContractsPartialSuccess(t *testing.T) {
	svcs, _, _, _, _ := newTestServices()

	csvData := importHeader +
		"#12,Jordan Ellis,Mohave,AZ,direct,cfd,2024-01-15,,,20000,12000,4000,500,12,,,2024-02-01,active,unknown\n" +
		"#13,Casey Monroe,Costilla,CO,assumed,cfd,2022-03-01,2024-06-01,,15000,8000,1000,500,24,10,10000,,active,not_recorded\n" +
		"#14,Riley Park,Mohave,AZ,assumed,cfd,2022-03-01,,,15000,8000,1000,500,24,10,10000,,active,unknown\n"

	result, err := svcs.Import.ImportContracts(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "transfer date")
}

func TestImportContractsRejectsDuplicateKey(t *testing.T) {
	svcs, _, _, _, _ := newTestServices()

	csvData := importHeader +
		"#12,Jordan Ellis,Mohave,AZ,direct,cfd,2024-01-15,,,20000,12000,4000,500,12,,,2024-02-01,active,unknown\n" +
		"012,Jordan Ellis,Mohave,AZ,direct,cfd,2024-01-15,,,20000,12000,4000,500,12,,,2024-02-01,active,unknown\n"

	result, err := svcs.Import.ImportContracts(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "duplicate")
}

func TestImportContractsBadAmount(t *testing.T) {
	svcs, _, _, _, _ := newTestServices()

	csvData := importHeader +
		"#12,Jordan Ellis,Mohave,AZ,direct,cfd,2024-01-15,,,not-a-number,12000,4000,500,12,,,2024-02-01,active,unknown\n"

	result, err := svcs.Import.ImportContracts(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Zero(t, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "contract_price")
}

func TestImportContractsGeneratesSchedules(t *testing.T) {
	svcs, _, _, installmentRepo, _ := newTestServices()

	csvData := importHeader +
		"#12,Jordan Ellis,Mohave,AZ,direct,cfd,2024-01-15,,,20000,12000,4000,500,12,,,2024-02-01,active,unknown\n"

	result, err := svcs.Import.ImportContracts(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	rows, err := installmentRepo.FindByContract(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, rows, 12)
}

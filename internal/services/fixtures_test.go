package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/landfolio/cfd-api/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func directCFDContract() *models.Contract {
	amount := dec("500")
	count := 12
	first := date(2024, time.February, 1)
	return &models.Contract{
		PropertyID:           "#12",
		BuyerName:            "Jordan Ellis",
		County:               "Mohave",
		State:                "AZ",
		OriginType:           models.OriginTypeDirect,
		SaleType:             models.SaleTypeCFD,
		Status:               models.ContractStatusActive,
		ContractPrice:        dec("20000"),
		CostBasis:            dec("12000"),
		DownPayment:          dec("4000"),
		InstallmentAmount:    &amount,
		InstallmentCount:     &count,
		ContractDate:         date(2024, time.January, 15),
		FirstInstallmentDate: &first,
		DeedStatus:           models.DeedStatusUnknown,
	}
}

func assumedCFDContract() *models.Contract {
	amount := dec("500")
	count := 24
	opening := dec("10000")
	transfer := date(2024, time.June, 1)
	paid := 10
	return &models.Contract{
		PropertyID:                 "#7",
		BuyerName:                  "Casey Monroe",
		County:                     "Costilla",
		State:                      "CO",
		OriginType:                 models.OriginTypeAssumed,
		SaleType:                   models.SaleTypeCFD,
		Status:                     models.ContractStatusActive,
		ContractPrice:              dec("15000"),
		CostBasis:                  dec("8000"),
		DownPayment:                dec("1000"),
		OpeningReceivable:          &opening,
		TransferDate:               &transfer,
		InstallmentsPaidByTransfer: &paid,
		InstallmentAmount:          &amount,
		InstallmentCount:           &count,
		ContractDate:               date(2022, time.March, 1),
		DeedStatus:                 models.DeedStatusNotRecorded,
	}
}

func receivedPayment(contractID uint, day time.Time, principal, lateFee string) models.Payment {
	p := dec(principal)
	f := dec(lateFee)
	return models.Payment{
		ContractID:      contractID,
		PaymentDate:     day,
		PrincipalAmount: p,
		LateFeeAmount:   f,
		AmountTotal:     p.Add(f),
		Channel:         models.ChannelCheck,
		ReceivedBy:      "office",
	}
}

package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CentTolerance is the maximum accepted gap between a payment's total and its
// principal + late fee split.
var CentTolerance = decimal.NewFromFloat(0.01)

// Payment represents one cash receipt tied to exactly one contract.
// Immutable once created except through the audited update path.
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ContractID      uint            `gorm:"not null;index" json:"contract_id"`
	PaymentDate     time.Time       `gorm:"type:date;not null;index" json:"payment_date"`
	AmountTotal     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_total"`
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"principal_amount"`
	LateFeeAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"late_fee_amount"`
	ReceivedBy      string          `json:"received_by"`
	Channel         string          `json:"channel"`
	Memo            *string         `gorm:"type:text" json:"memo"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Associations
	Contract Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment channel constants
const (
	ChannelCheck     = "check"
	ChannelACH       = "ach"
	ChannelCash      = "cash"
	ChannelMoneyGram = "moneygram"
	ChannelOther     = "other"
)

// Validate enforces the split invariant: principal + late fee must equal the
// total within one cent.
func (p *Payment) Validate() error {
	if p.PaymentDate.IsZero() {
		return errors.New("payment date is required")
	}
	if p.AmountTotal.IsNegative() || p.PrincipalAmount.IsNegative() || p.LateFeeAmount.IsNegative() {
		return errors.New("payment amounts must not be negative")
	}
	gap := p.PrincipalAmount.Add(p.LateFeeAmount).Sub(p.AmountTotal).Abs()
	if gap.GreaterThan(CentTolerance) {
		return errors.New("principal plus late fee must equal the total amount")
	}
	return nil
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID              uint            `json:"id"`
	ContractID      uint            `json:"contract_id"`
	PaymentDate     time.Time       `json:"payment_date"`
	AmountTotal     decimal.Decimal `json:"amount_total"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	LateFeeAmount   decimal.Decimal `json:"late_fee_amount"`
	ReceivedBy      string          `json:"received_by"`
	Channel         string          `json:"channel"`
	Memo            *string         `json:"memo"`
	PropertyID      string          `json:"property_id,omitempty"`
	BuyerName       string          `json:"buyer_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID,
		ContractID:      p.ContractID,
		PaymentDate:     p.PaymentDate,
		AmountTotal:     p.AmountTotal,
		PrincipalAmount: p.PrincipalAmount,
		LateFeeAmount:   p.LateFeeAmount,
		ReceivedBy:      p.ReceivedBy,
		Channel:         p.Channel,
		Memo:            p.Memo,
		CreatedAt:       p.CreatedAt,
	}

	if p.Contract.ID != 0 {
		resp.PropertyID = p.Contract.PropertyID
		resp.BuyerName = p.Contract.BuyerName
	}

	return resp
}

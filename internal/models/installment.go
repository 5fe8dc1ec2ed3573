package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one scheduled obligation derived from a CFD contract.
// The whole set is a projection owned by the contract: it is deleted and
// rebuilt whenever a schedule-defining field changes, never edited in place.
type Installment struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	ContractID        uint             `gorm:"not null;index" json:"contract_id"`
	InstallmentNumber int              `gorm:"not null" json:"installment_number"` // 0 reserved for balloon
	DueDate           time.Time        `gorm:"type:date;not null;index" json:"due_date"`
	Amount            decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type              string           `gorm:"not null" json:"type"`
	Status            string           `gorm:"default:pending;not null;index" json:"status"`
	PaidDate          *time.Time       `gorm:"type:date" json:"paid_date"`
	PaidAmount        *decimal.Decimal `gorm:"type:decimal(15,2)" json:"paid_amount"`
	PaymentID         *uint            `gorm:"index" json:"payment_id"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	// Associations
	Contract Contract `gorm:"foreignKey:ContractID" json:"-"`
	Payment  *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// BalloonInstallmentNumber is the reserved sequence number for the balloon
// row; regular installments count from 1.
const BalloonInstallmentNumber = 0

// Installment type constants
const (
	InstallmentTypeRegular     = "regular"
	InstallmentTypeBalloon     = "balloon"
	InstallmentTypeDownPayment = "down_payment"
)

// Installment status constants
const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
	InstallmentStatusOverdue = "overdue"
	InstallmentStatusPartial = "partial"
)

// IsOpen reports whether the installment can still receive a payment.
// Paid is terminal; partial installments may be completed later.
func (i *Installment) IsOpen() bool {
	return i.Status != InstallmentStatusPaid
}

// IsPastDue reports whether an unpaid installment's due date has passed.
func (i *Installment) IsPastDue(now time.Time) bool {
	return i.Status == InstallmentStatusPending && i.DueDate.Before(now)
}

// InstallmentResponse is the JSON response format for installments
type InstallmentResponse struct {
	ID                uint             `json:"id"`
	ContractID        uint             `json:"contract_id"`
	InstallmentNumber int              `json:"installment_number"`
	DueDate           time.Time        `json:"due_date"`
	Amount            decimal.Decimal  `json:"amount"`
	Type              string           `json:"type"`
	Status            string           `json:"status"`
	PaidDate          *time.Time       `json:"paid_date"`
	PaidAmount        *decimal.Decimal `json:"paid_amount"`
	PaymentID         *uint            `json:"payment_id"`
}

// ToResponse converts Installment to InstallmentResponse
func (i *Installment) ToResponse() InstallmentResponse {
	return InstallmentResponse{
		ID:                i.ID,
		ContractID:        i.ContractID,
		InstallmentNumber: i.InstallmentNumber,
		DueDate:           i.DueDate,
		Amount:            i.Amount,
		Type:              i.Type,
		Status:            i.Status,
		PaidDate:          i.PaidDate,
		PaidAmount:        i.PaidAmount,
		PaymentID:         i.PaymentID,
	}
}

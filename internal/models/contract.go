package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Contract represents a seller-financed land sale agreement ("Contract for Deed").
// Money amounts are fixed-point decimals; tax figures must not drift through
// binary floats.
type Contract struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	GUID       string `gorm:"size:36;uniqueIndex" json:"guid"`
	PropertyID string `gorm:"not null;uniqueIndex" json:"property_id"`
	BuyerName  string `gorm:"not null" json:"buyer_name"`
	County     string `json:"county"`
	State      string `json:"state"`

	OriginType string `gorm:"not null;index" json:"origin_type"`
	SaleType   string `gorm:"not null;index" json:"sale_type"`
	Status     string `gorm:"default:active;index" json:"status"`

	ContractPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"contract_price"`
	CostBasis     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cost_basis"`
	DownPayment   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"down_payment"`

	InstallmentAmount          *decimal.Decimal `gorm:"type:decimal(15,2)" json:"installment_amount"`
	InstallmentCount           *int             `json:"installment_count"`
	InstallmentsPaidByTransfer *int             `json:"installments_paid_by_transfer"`
	BalloonAmount              *decimal.Decimal `gorm:"type:decimal(15,2)" json:"balloon_amount"`
	BalloonDate                *time.Time       `gorm:"type:date" json:"balloon_date"`
	OpeningReceivable          *decimal.Decimal `gorm:"type:decimal(15,2)" json:"opening_receivable"`

	ContractDate         time.Time  `gorm:"type:date;not null;index" json:"contract_date"`
	TransferDate         *time.Time `gorm:"type:date" json:"transfer_date"`
	CloseDate            *time.Time `gorm:"type:date" json:"close_date"`
	FirstInstallmentDate *time.Time `gorm:"type:date" json:"first_installment_date"`

	DeedStatus       string     `gorm:"default:unknown;index" json:"deed_status"`
	DeedRecordedDate *time.Time `gorm:"type:date" json:"deed_recorded_date"`

	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Payments     []Payment          `gorm:"foreignKey:ContractID" json:"payments,omitempty"`
	Installments []Installment      `gorm:"foreignKey:ContractID" json:"installments,omitempty"`
	Documents    []ContractDocument `gorm:"foreignKey:ContractID" json:"documents,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Origin type constants
const (
	OriginTypeDirect  = "direct"
	OriginTypeAssumed = "assumed"
)

// Sale type constants
const (
	SaleTypeCFD  = "cfd"
	SaleTypeCash = "cash"
)

// Contract status constants. Status is externally driven (servicing events),
// never computed from the payment stream.
const (
	ContractStatusActive      = "active"
	ContractStatusPaidOff     = "paid_off"
	ContractStatusDefault     = "default"
	ContractStatusRepossessed = "repossessed"
)

// Deed status constants
const (
	DeedStatusRecorded    = "recorded"
	DeedStatusNotRecorded = "not_recorded"
	DeedStatusUnknown     = "unknown"
)

// NormalizePropertyID converts a raw property identifier to its canonical
// "#NN" form: surrounding whitespace and a leading '#' are stripped, leading
// zeros removed, letters upper-cased.
func NormalizePropertyID(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return ""
	}
	return "#" + strings.ToUpper(s)
}

// IsDirect reports whether the contract was originated by the operating entity.
func (c *Contract) IsDirect() bool { return c.OriginType == OriginTypeDirect }

// IsAssumed reports whether the contract was inherited from a prior entity.
func (c *Contract) IsAssumed() bool { return c.OriginType == OriginTypeAssumed }

// IsCFD reports whether the contract is seller-financed with installments.
func (c *Contract) IsCFD() bool { return c.SaleType == SaleTypeCFD }

// IsCash reports whether the contract closed for cash with no financed balance.
func (c *Contract) IsCash() bool { return c.SaleType == SaleTypeCash }

// MayPayOff checks if contract can transition to paid_off
func (c *Contract) MayPayOff() bool {
	return c.Status == ContractStatusActive
}

// MayDefault checks if contract can transition to default
func (c *Contract) MayDefault() bool {
	return c.Status == ContractStatusActive
}

// MayRepossess checks if contract can transition to repossessed
func (c *Contract) MayRepossess() bool {
	return c.Status == ContractStatusDefault
}

// MayReinstate checks if a defaulted contract can return to active
func (c *Contract) MayReinstate() bool {
	return c.Status == ContractStatusDefault
}

// HasScheduleTerms reports whether the contract carries everything the
// installment schedule generator needs.
func (c *Contract) HasScheduleTerms() bool {
	return c.IsCFD() &&
		c.FirstInstallmentDate != nil &&
		c.InstallmentAmount != nil && c.InstallmentAmount.IsPositive() &&
		c.InstallmentCount != nil && *c.InstallmentCount > 0
}

// Validate enforces the cross-field invariants of the contract variants.
// The same rules guard direct creation, audited updates and CSV import rows.
func (c *Contract) Validate() error {
	if NormalizePropertyID(c.PropertyID) == "" {
		return errors.New("property id is required")
	}
	if c.BuyerName == "" {
		return errors.New("buyer name is required")
	}
	if c.ContractDate.IsZero() {
		return errors.New("contract date is required")
	}

	switch c.OriginType {
	case OriginTypeDirect:
		if c.TransferDate != nil {
			return errors.New("direct contracts must not carry a transfer date")
		}
		if c.OpeningReceivable != nil {
			return errors.New("direct contracts must not carry an opening receivable")
		}
	case OriginTypeAssumed:
		if c.TransferDate == nil {
			return errors.New("assumed contracts require a transfer date")
		}
		if c.OpeningReceivable == nil || !c.OpeningReceivable.IsPositive() {
			return errors.New("assumed contracts require a positive opening receivable")
		}
		if c.InstallmentsPaidByTransfer == nil {
			return errors.New("assumed contracts require installments paid by transfer")
		}
	default:
		return fmt.Errorf("unknown origin type: %q", c.OriginType)
	}

	switch c.SaleType {
	case SaleTypeCFD:
		if c.InstallmentAmount == nil || c.InstallmentCount == nil {
			return errors.New("cfd contracts require installment amount and count")
		}
	case SaleTypeCash:
		if c.CloseDate == nil {
			return errors.New("cash contracts require a close date")
		}
	default:
		return fmt.Errorf("unknown sale type: %q", c.SaleType)
	}

	if c.BalloonAmount != nil && c.BalloonAmount.IsPositive() && c.BalloonDate == nil {
		return errors.New("balloon amount requires a balloon date")
	}

	switch c.DeedStatus {
	case DeedStatusRecorded:
		if c.DeedRecordedDate == nil {
			return errors.New("recorded deed requires a recorded date")
		}
	case DeedStatusNotRecorded:
		if c.DeedRecordedDate != nil {
			return errors.New("unrecorded deed must not carry a recorded date")
		}
	case DeedStatusUnknown, "":
	default:
		return fmt.Errorf("unknown deed status: %q", c.DeedStatus)
	}

	return nil
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID                         uint             `json:"id"`
	GUID                       string           `json:"guid"`
	PropertyID                 string           `json:"property_id"`
	BuyerName                  string           `json:"buyer_name"`
	County                     string           `json:"county"`
	State                      string           `json:"state"`
	OriginType                 string           `json:"origin_type"`
	SaleType                   string           `json:"sale_type"`
	Status                     string           `json:"status"`
	ContractPrice              decimal.Decimal  `json:"contract_price"`
	CostBasis                  decimal.Decimal  `json:"cost_basis"`
	DownPayment                decimal.Decimal  `json:"down_payment"`
	InstallmentAmount          *decimal.Decimal `json:"installment_amount"`
	InstallmentCount           *int             `json:"installment_count"`
	InstallmentsPaidByTransfer *int             `json:"installments_paid_by_transfer"`
	BalloonAmount              *decimal.Decimal `json:"balloon_amount"`
	BalloonDate                *time.Time       `json:"balloon_date"`
	OpeningReceivable          *decimal.Decimal `json:"opening_receivable"`
	ContractDate               time.Time        `json:"contract_date"`
	TransferDate               *time.Time       `json:"transfer_date"`
	CloseDate                  *time.Time       `json:"close_date"`
	FirstInstallmentDate       *time.Time       `json:"first_installment_date"`
	DeedStatus                 string           `json:"deed_status"`
	DeedRecordedDate           *time.Time       `json:"deed_recorded_date"`
	Notes                      *string          `json:"notes"`
	CreatedAt                  time.Time        `json:"created_at"`
	UpdatedAt                  time.Time        `json:"updated_at"`

	Payments     []PaymentResponse     `json:"payments,omitempty"`
	Installments []InstallmentResponse `json:"installments,omitempty"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	resp := ContractResponse{
		ID:                         c.ID,
		GUID:                       c.GUID,
		PropertyID:                 c.PropertyID,
		BuyerName:                  c.BuyerName,
		County:                     c.County,
		State:                      c.State,
		OriginType:                 c.OriginType,
		SaleType:                   c.SaleType,
		Status:                     c.Status,
		ContractPrice:              c.ContractPrice,
		CostBasis:                  c.CostBasis,
		DownPayment:                c.DownPayment,
		InstallmentAmount:          c.InstallmentAmount,
		InstallmentCount:           c.InstallmentCount,
		InstallmentsPaidByTransfer: c.InstallmentsPaidByTransfer,
		BalloonAmount:              c.BalloonAmount,
		BalloonDate:                c.BalloonDate,
		OpeningReceivable:          c.OpeningReceivable,
		ContractDate:               c.ContractDate,
		TransferDate:               c.TransferDate,
		CloseDate:                  c.CloseDate,
		FirstInstallmentDate:       c.FirstInstallmentDate,
		DeedStatus:                 c.DeedStatus,
		DeedRecordedDate:           c.DeedRecordedDate,
		Notes:                      c.Notes,
		CreatedAt:                  c.CreatedAt,
		UpdatedAt:                  c.UpdatedAt,
	}

	for _, p := range c.Payments {
		resp.Payments = append(resp.Payments, p.ToResponse())
	}
	for _, inst := range c.Installments {
		resp.Installments = append(resp.Installments, inst.ToResponse())
	}

	return resp
}

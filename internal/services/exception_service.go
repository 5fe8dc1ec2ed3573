package services

import (
	"context"
	"fmt"

	"github.com/landfolio/cfd-api/internal/finance"
	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
)

// Exception severities
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Exception codes
const (
	ExcMissingField        = "MISSING_FIELD"
	ExcMissingCFDTerms     = "MISSING_CFD_TERMS"
	ExcMissingTransferData = "MISSING_TRANSFER_DATA"
	ExcBalloonWithoutDate  = "BALLOON_WITHOUT_DATE"
	ExcPaymentBeforeStart  = "PAYMENT_BEFORE_CONTRACT_DATE"
	ExcPreTransferPayment  = "PAYMENT_BEFORE_TRANSFER_DATE"
	ExcNegativeReceivable  = "NEGATIVE_RECEIVABLE"
	ExcAmountMismatch      = "AMOUNT_MISMATCH"
	ExcMissingDocument     = "MISSING_DOCUMENT"
)

// Exception is one data-quality finding with a deep link for remediation.
type Exception struct {
	ContractID uint   `json:"contract_id"`
	PropertyID string `json:"property_id"`
	Code       string `json:"code"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Link       string `json:"link"`
}

// ExceptionService sweeps the whole book with independent pure checks. It
// never blocks anything; findings are for visibility only.
type ExceptionService struct {
	contractRepo repository.ContractRepository
}

func NewExceptionService(contractRepo repository.ContractRepository) *ExceptionService {
	return &ExceptionService{contractRepo: contractRepo}
}

type contractCheck func(*models.Contract) []Exception

// ValidateAllContracts runs every check over every contract. Checks are
// independent; one finding never suppresses another.
func (s *ExceptionService) ValidateAllContracts(ctx context.Context) ([]Exception, error) {
	contracts, err := s.contractRepo.FindAllWithDetails(ctx)
	if err != nil {
		return nil, err
	}

	checks := []contractCheck{
		checkRequiredFields,
		checkCFDTerms,
		checkTransferData,
		checkBalloonDate,
		checkPaymentsBeforeContract,
		checkPreTransferPayments,
		checkNegativeReceivable,
		checkAmountMismatch,
		checkDocuments,
	}

	exceptions := []Exception{}
	for i := range contracts {
		for _, check := range checks {
			exceptions = append(exceptions, check(&contracts[i])...)
		}
	}
	return exceptions, nil
}

func newException(c *models.Contract, code, severity, message string) Exception {
	return Exception{
		ContractID: c.ID,
		PropertyID: c.PropertyID,
		Code:       code,
		Severity:   severity,
		Message:    message,
		Link:       fmt.Sprintf("/contracts/%d", c.ID),
	}
}

func checkRequiredFields(c *models.Contract) []Exception {
	var out []Exception
	if c.BuyerName == "" {
		out = append(out, newException(c, ExcMissingField, SeverityError, "buyer name is missing"))
	}
	if c.ContractDate.IsZero() {
		out = append(out, newException(c, ExcMissingField, SeverityError, "contract date is missing"))
	}
	if c.IsCash() && c.CloseDate == nil {
		out = append(out, newException(c, ExcMissingField, SeverityError, "cash sale is missing a close date"))
	}
	return out
}

func checkCFDTerms(c *models.Contract) []Exception {
	if !c.IsCFD() {
		return nil
	}
	var out []Exception
	if c.InstallmentAmount == nil || !c.InstallmentAmount.IsPositive() {
		out = append(out, newException(c, ExcMissingCFDTerms, SeverityError, "cfd contract has no installment amount"))
	}
	if c.InstallmentCount == nil || *c.InstallmentCount <= 0 {
		out = append(out, newException(c, ExcMissingCFDTerms, SeverityError, "cfd contract has no installment count"))
	}
	return out
}

func checkTransferData(c *models.Contract) []Exception {
	if !c.IsAssumed() {
		return nil
	}
	var out []Exception
	if c.TransferDate == nil {
		out = append(out, newException(c, ExcMissingTransferData, SeverityError, "assumed contract has no transfer date"))
	}
	if c.OpeningReceivable == nil || !c.OpeningReceivable.IsPositive() {
		out = append(out, newException(c, ExcMissingTransferData, SeverityError, "assumed contract has no opening receivable"))
	}
	return out
}

func checkBalloonDate(c *models.Contract) []Exception {
	if c.BalloonAmount != nil && c.BalloonAmount.IsPositive() && c.BalloonDate == nil {
		return []Exception{newException(c, ExcBalloonWithoutDate, SeverityError, "balloon amount has no balloon date")}
	}
	return nil
}

func checkPaymentsBeforeContract(c *models.Contract) []Exception {
	var out []Exception
	for _, p := range c.Payments {
		if p.PaymentDate.Before(c.ContractDate) {
			out = append(out, newException(c, ExcPaymentBeforeStart, SeverityWarning,
				fmt.Sprintf("payment %d dated %s precedes the contract date", p.ID, p.PaymentDate.Format("2006-01-02"))))
		}
	}
	return out
}

func checkPreTransferPayments(c *models.Contract) []Exception {
	if !c.IsAssumed() || c.TransferDate == nil {
		return nil
	}
	var out []Exception
	for _, p := range c.Payments {
		if p.PaymentDate.Before(*c.TransferDate) {
			out = append(out, newException(c, ExcPreTransferPayment, SeverityWarning,
				fmt.Sprintf("payment %d predates the transfer and is excluded from all totals", p.ID)))
		}
	}
	return out
}

func checkNegativeReceivable(c *models.Contract) []Exception {
	balance := finance.ReceivableBalance(c, c.Payments)
	if balance.IsNegative() {
		return []Exception{newException(c, ExcNegativeReceivable, SeverityError,
			fmt.Sprintf("receivable balance is negative: %s", balance))}
	}
	return nil
}

func checkAmountMismatch(c *models.Contract) []Exception {
	var out []Exception
	for _, p := range c.Payments {
		if err := p.Validate(); err != nil {
			out = append(out, newException(c, ExcAmountMismatch, SeverityError,
				fmt.Sprintf("payment %d: %s", p.ID, err)))
		}
	}
	return out
}

func checkDocuments(c *models.Contract) []Exception {
	var out []Exception
	if !models.HasDocument(c.Documents, models.DocTypeContract) {
		out = append(out, newException(c, ExcMissingDocument, SeverityWarning, "contract document is missing"))
	}
	if c.IsAssumed() {
		if !models.HasDocument(c.Documents, models.DocTypeAssignment) {
			out = append(out, newException(c, ExcMissingDocument, SeverityWarning, "assignment document is missing"))
		}
		if !models.HasDocument(c.Documents, models.DocTypeNotice) {
			out = append(out, newException(c, ExcMissingDocument, SeverityWarning, "notice document is missing"))
		}
	}
	return out
}

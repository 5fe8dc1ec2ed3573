package models

import (
	"time"
)

// ContractDocument is a recorded attachment for a contract. File storage is
// external; only the reference and its classification live here, enough for
// the missing-document data quality checks.
type ContractDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ContractID uint      `gorm:"not null;index" json:"contract_id"`
	DocType    string    `gorm:"size:30;not null" json:"doc_type"`
	FilePath   string    `gorm:"not null" json:"file_path"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for ContractDocument
func (ContractDocument) TableName() string {
	return "contract_documents"
}

// Document type constants. Contract is required for every deal; assignment and
// notice are additionally required for assumed contracts.
const (
	DocTypeContract   = "contract"
	DocTypeAssignment = "assignment"
	DocTypeNotice     = "notice"
	DocTypeOther      = "other"
)

// HasDocument reports whether docs contains at least one document of the type.
func HasDocument(docs []ContractDocument, docType string) bool {
	for _, d := range docs {
		if d.DocType == docType {
			return true
		}
	}
	return false
}

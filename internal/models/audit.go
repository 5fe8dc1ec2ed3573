package models

import (
	"time"
)

// AuditLogEntry records a single change to a tax-critical field.
// Entries are write-once: never updated, never deleted.
type AuditLogEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EntityType string    `gorm:"size:20;not null;index" json:"entity_type"` // contract, payment
	EntityID   uint      `gorm:"not null;index" json:"entity_id"`
	Field      string    `gorm:"size:50;not null" json:"field"`
	OldValue   string    `gorm:"type:text" json:"old_value"`
	NewValue   string    `gorm:"type:text" json:"new_value"`
	Actor      string    `gorm:"size:100;not null" json:"actor"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLogEntry
func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}

// Audit entity type constants
const (
	AuditEntityContract = "contract"
	AuditEntityPayment  = "payment"
)

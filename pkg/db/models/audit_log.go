package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/licensegate/pkg/enums"
)

// AuditLog is an append-only record of a license validation attempt.
type AuditLog struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	LicenseID    string                 `gorm:"column:license_id;not null;index"`
	RequestType  enums.AuditRequestType `gorm:"column:request_type;not null"`
	Status       enums.AuditStatus      `gorm:"column:status;not null"`
	ErrorMessage *string                `gorm:"column:error_message"`
	IPAddress    string                 `gorm:"column:ip_address"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime;index"`
}

// TableName pins the table name used by migrations.
func (AuditLog) TableName() string { return "audit_logs" }

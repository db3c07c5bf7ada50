package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/licensegate/pkg/db/models"
	"github.com/angelmondragon/licensegate/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry describes one validation attempt to append to the audit log.
type Entry struct {
	LicenseID    string
	RequestType  enums.AuditRequestType
	Status       enums.AuditStatus
	ErrorMessage *string
	IPAddress    string
}

// Repository is the gorm-backed audit sink.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository constructs an audit repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Append writes entry and returns the id of the new row.
func (r *Repository) Append(ctx context.Context, entry Entry) (uuid.UUID, error) {
	if !entry.Status.IsValid() {
		return uuid.Nil, fmt.Errorf("invalid audit status %q", entry.Status)
	}
	if !entry.RequestType.IsValid() {
		return uuid.Nil, fmt.Errorf("invalid audit request type %q", entry.RequestType)
	}
	row := &models.AuditLog{
		ID:           uuid.New(),
		LicenseID:    entry.LicenseID,
		RequestType:  entry.RequestType,
		Status:       entry.Status,
		ErrorMessage: entry.ErrorMessage,
		IPAddress:    entry.IPAddress,
		CreatedAt:    r.now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// DeleteOlderThan removes audit rows created before cutoff.
func (r *Repository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	res := conn.WithContext(ctx).
		Where("created_at < ?", cutoff.UTC()).
		Delete(&models.AuditLog{})
	return res.RowsAffected, res.Error
}

package licenses

import (
	"context"
	"time"

	"github.com/angelmondragon/licensegate/pkg/db/models"
	"github.com/angelmondragon/licensegate/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes license persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a license repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a license by its normalized key. Missing rows return gorm.ErrRecordNotFound.
func (r *Repository) Get(ctx context.Context, licenseKey string) (*models.License, error) {
	var license models.License
	if err := r.db.WithContext(ctx).Where("license_key = ?", licenseKey).First(&license).Error; err != nil {
		return nil, err
	}
	return &license, nil
}

// UpdateSiteToken stores the latest issued token. Only site_token and updated_at change.
func (r *Repository) UpdateSiteToken(ctx context.Context, licenseKey, token string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.License{}).
		Where("license_key = ?", licenseKey).
		UpdateColumns(map[string]any{
			"site_token": token,
			"updated_at": at.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Create inserts a license row. Provisioning happens elsewhere; this serves seeds and tests.
func (r *Repository) Create(ctx context.Context, license *models.License) error {
	return r.db.WithContext(ctx).Create(license).Error
}

// ExpireLapsed flips active licenses whose expires_at has passed to expired.
func (r *Repository) ExpireLapsed(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	res := conn.WithContext(ctx).
		Model(&models.License{}).
		Where("status = ? AND expires_at <= ?", enums.LicenseStatusActive, now.UTC()).
		UpdateColumns(map[string]any{
			"status":     enums.LicenseStatusExpired,
			"updated_at": now.UTC(),
		})
	return res.RowsAffected, res.Error
}

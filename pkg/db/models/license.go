package models

import (
	"time"

	"github.com/angelmondragon/licensegate/pkg/enums"
)

// License is the persisted entitlement for one customer site. Rows are provisioned
// outside this service; the gateway only reads them and refreshes SiteToken.
type License struct {
	LicenseKey  string              `gorm:"column:license_key;primaryKey"`
	SiteURL     string              `gorm:"column:site_url;not null"`
	SiteToken   *string             `gorm:"column:site_token"`
	UserID      string              `gorm:"column:user_id;not null;index"`
	Plan        enums.Plan          `gorm:"column:plan;not null"`
	TokensLimit int64               `gorm:"column:tokens_limit;not null"`
	TokensUsed  int64               `gorm:"column:tokens_used;not null;default:0"`
	Status      enums.LicenseStatus `gorm:"column:status;not null;default:'active'"`
	ResetDate   time.Time           `gorm:"column:reset_date;not null"`
	ExpiresAt   time.Time           `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name used by migrations.
func (License) TableName() string { return "licenses" }

// TokensRemaining is the unused quota for the current period. It goes negative once
// collaborators record usage past the limit.
func (l License) TokensRemaining() int64 {
	return l.TokensLimit - l.TokensUsed
}

// CachedToken returns the last issued site token, or "" when none was stored.
func (l License) CachedToken() string {
	if l.SiteToken == nil {
		return ""
	}
	return *l.SiteToken
}

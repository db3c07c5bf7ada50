package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/licensegate/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type licenseExpirer interface {
	ExpireLapsed(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type LicenseExpiryJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository licenseExpirer
}

// NewLicenseExpiryJob marks active licenses past expires_at as expired so the
// stored status agrees with what validation already enforces.
func NewLicenseExpiryJob(params LicenseExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("license repository required")
	}
	return &licenseExpiryJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type licenseExpiryJob struct {
	logg *logger.Logger
	db   txRunner
	repo licenseExpirer
	now  func() time.Time
}

func (j *licenseExpiryJob) Name() string { return "license-expiry" }

func (j *licenseExpiryJob) Run(ctx context.Context) (int64, error) {
	now := j.now().UTC()
	var expired int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.ExpireLapsed(ctx, tx, now)
		if err != nil {
			return err
		}
		expired = rows
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expire lapsed licenses: %w", err)
	}
	if expired > 0 {
		j.logg.Info(j.logg.WithField(ctx, "licenses_expired", expired), "cron.licenses_expired")
	}
	return expired, nil
}

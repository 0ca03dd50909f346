package cron

import (
	"context"
	"errors"
	"time"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
)

const abandonedCartJobName = "abandoned-carts"

type idleCartStore interface {
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AbandonedCartJob drops carts nobody has touched for the configured number of days.
type AbandonedCartJob struct {
	carts   idleCartStore
	maxIdle time.Duration
	logg    *logger.Logger
	now     func() time.Time
}

// NewAbandonedCartJob builds the job. maxIdleDays must be positive.
func NewAbandonedCartJob(carts idleCartStore, maxIdleDays int, logg *logger.Logger) (*AbandonedCartJob, error) {
	if carts == nil {
		return nil, errors.New("cart store required")
	}
	if maxIdleDays <= 0 {
		return nil, errors.New("abandoned cart days must be positive")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &AbandonedCartJob{
		carts:   carts,
		maxIdle: time.Duration(maxIdleDays) * 24 * time.Hour,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (j *AbandonedCartJob) Name() string { return abandonedCartJobName }

func (j *AbandonedCartJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.maxIdle)
	removed, err := j.carts.DeleteIdleBefore(ctx, cutoff)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"removed": removed,
			"cutoff":  cutoff,
		}), "abandoned carts removed")
	}
	return removed, nil
}

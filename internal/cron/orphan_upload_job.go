package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Wijeboy/CYD-shop-sub000/internal/media"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
)

const orphanUploadJobName = "orphan-uploads"

type uploadStore interface {
	List(ctx context.Context) ([]media.StoredFile, error)
	Delete(ctx context.Context, publicPath string) error
}

type imageReferences interface {
	ReferencedImages(ctx context.Context) (map[string]struct{}, error)
}

// OrphanUploadJob deletes uploaded files that no product points at. Files
// younger than the grace period are left alone so an admin has time to
// attach a fresh upload to a product.
type OrphanUploadJob struct {
	store uploadStore
	refs  imageReferences
	grace time.Duration
	logg  *logger.Logger
	now   func() time.Time
}

func NewOrphanUploadJob(store uploadStore, refs imageReferences, grace time.Duration, logg *logger.Logger) (*OrphanUploadJob, error) {
	if store == nil {
		return nil, errors.New("upload store required")
	}
	if refs == nil {
		return nil, errors.New("image references required")
	}
	if grace < 0 {
		grace = 0
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &OrphanUploadJob{store: store, refs: refs, grace: grace, logg: logg, now: time.Now}, nil
}

func (j *OrphanUploadJob) Name() string { return orphanUploadJobName }

func (j *OrphanUploadJob) Run(ctx context.Context) (int64, error) {
	files, err := j.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list uploads: %w", err)
	}
	if len(files) == 0 {
		return 0, nil
	}
	referenced, err := j.refs.ReferencedImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("load referenced images: %w", err)
	}

	cutoff := j.now().Add(-j.grace)
	var (
		removed int64
		errs    error
	)
	for _, file := range files {
		if file.ModTime.After(cutoff) {
			continue
		}
		if _, ok := referenced[file.Path]; ok {
			continue
		}
		if err := j.store.Delete(ctx, file.Path); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", file.Path, err))
			continue
		}
		removed++
		j.logg.Info(j.logg.WithField(ctx, "path", file.Path), "orphan upload removed")
	}
	return removed, errs
}

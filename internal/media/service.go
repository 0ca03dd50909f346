package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
)

type fileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicPath string) error
	Manages(publicPath string) bool
}

// Service stores product images and releases them when they stop being referenced.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Delete(ctx context.Context, publicPath string) error
	DeleteAll(ctx context.Context, paths []string) error
}

// UploadInput is a single image received from the admin console.
type UploadInput struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// UploadResult is the stable public path of a stored image.
type UploadResult struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type service struct {
	store    fileStore
	maxBytes int64
	logg     *logger.Logger
}

// NewService constructs a media service writing through the provided store.
func NewService(store fileStore, maxBytes int64, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("file store required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, maxBytes: maxBytes, logg: logg}, nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	if input.Size > s.maxBytes {
		return nil, tooLarge(s.maxBytes)
	}

	buffered := bufio.NewReaderSize(input.Body, sniffLen)
	head, err := buffered.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	contentType, ext, err := detectImage(head)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()).
			WithDetails(map[string]any{"file_name": input.FileName, "allowed": AllowedImageTypes()})
	}

	counter := &countingReader{r: io.LimitReader(buffered, s.maxBytes+1)}
	name := uuid.NewString() + ext
	publicPath, err := s.store.Save(ctx, name, counter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}
	if counter.n > s.maxBytes {
		if delErr := s.store.Delete(ctx, publicPath); delErr != nil {
			s.logg.Error(ctx, "media.upload.cleanup_failed", delErr)
		}
		return nil, tooLarge(s.maxBytes)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"path": publicPath, "content_type": contentType, "size": counter.n})
	s.logg.Info(logCtx, "media.upload.stored")

	return &UploadResult{Path: publicPath, ContentType: contentType, Size: counter.n}, nil
}

// Delete releases a stored image. Paths outside the upload directory are left alone.
func (s *service) Delete(ctx context.Context, publicPath string) error {
	publicPath = strings.TrimSpace(publicPath)
	if publicPath == "" || !s.store.Manages(publicPath) {
		return nil
	}
	if err := s.store.Delete(ctx, publicPath); err != nil {
		return fmt.Errorf("delete %s: %w", publicPath, err)
	}
	return nil
}

// DeleteAll deletes each distinct path once and aggregates every failure.
func (s *service) DeleteAll(ctx context.Context, paths []string) error {
	var errs error
	for _, p := range Unique(paths) {
		errs = multierr.Append(errs, s.Delete(ctx, p))
	}
	return errs
}

// Unique drops empty and repeated paths while keeping order.
func Unique(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Released returns the paths present in before but absent from after.
func Released(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, p := range after {
		keep[strings.TrimSpace(p)] = struct{}{}
	}
	var out []string
	for _, p := range Unique(before) {
		if _, ok := keep[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func tooLarge(max int64) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d MB limit", max/(1024*1024))).
		WithDetails(map[string]any{"max_bytes": max})
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrForeignPath marks a path that does not belong to the upload directory.
var ErrForeignPath = errors.New("path is not managed by this storage")

// StoredFile describes a file on disk under the upload directory.
type StoredFile struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// LocalStorage keeps uploads on the local filesystem and exposes them under a
// public URL prefix such as /uploads.
type LocalStorage struct {
	dir    string
	prefix string
}

// NewLocalStorage ensures the upload directory exists.
func NewLocalStorage(dir, publicPrefix string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir required")
	}
	prefix := "/" + strings.Trim(strings.TrimSpace(publicPrefix), "/")
	if prefix == "/" {
		return nil, fmt.Errorf("public prefix required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &LocalStorage{dir: dir, prefix: prefix}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStorage) Dir() string { return s.dir }

// Prefix returns the public URL prefix.
func (s *LocalStorage) Prefix() string { return s.prefix }

// Save writes r to a new file named name and returns its public path.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close %q: %w", name, err)
	}
	return path.Join(s.prefix, name), nil
}

// Delete removes the file behind a public path. Missing files are ignored.
func (s *LocalStorage) Delete(ctx context.Context, publicPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := s.fileName(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", publicPath, err)
	}
	return nil
}

// Manages reports whether the public path points into this storage.
func (s *LocalStorage) Manages(publicPath string) bool {
	_, err := s.fileName(publicPath)
	return err == nil
}

// List returns every regular file in the upload directory.
func (s *LocalStorage) List(ctx context.Context) ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{
			Path:    path.Join(s.prefix, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

func (s *LocalStorage) fileName(publicPath string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(publicPath))
	if !strings.HasPrefix(clean, s.prefix+"/") {
		return "", ErrForeignPath
	}
	name := strings.TrimPrefix(clean, s.prefix+"/")
	if name == "" || strings.Contains(name, "/") {
		return "", ErrForeignPath
	}
	return name, nil
}

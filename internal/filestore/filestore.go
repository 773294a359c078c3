// Package filestore keeps uploaded expense documents on the public disk.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	DefaultMaxBytes = 5 << 20
	documentsDir    = "documents"
)

var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrInvalidPath     = errors.New("invalid stored path")
)

var allowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
	"application/pdf",
}

// Store persists uploads and returns a relative path such as
// "documents/<uuid>.pdf".
type Store interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, rel string) error
	URL(rel string) string
}

type Disk struct {
	Root      string
	URLPrefix string
	MaxBytes  int64
}

func NewDisk(root, urlPrefix string, maxBytes int64) (*Disk, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(filepath.Join(root, documentsDir), 0o755); err != nil {
		return nil, fmt.Errorf("NewDisk: %w", err)
	}
	return &Disk{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/"), MaxBytes: maxBytes}, nil
}

func (d *Disk) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > d.MaxBytes {
		return "", ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("Save: open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("Save: detect type: %w", err)
	}
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return "", ErrUnsupportedType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("Save: rewind upload: %w", err)
	}

	rel := path.Join(documentsDir, uuid.NewString()+mt.Extension())
	dst, err := os.CreateTemp(filepath.Join(d.Root, documentsDir), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("Save: %w", err)
	}
	tmp := dst.Name()
	cleanup := func() {
		_ = dst.Close()
		_ = os.Remove(tmp)
	}

	// one byte past the limit tells us the header lied about the size
	n, err := io.Copy(dst, io.LimitReader(src, d.MaxBytes+1))
	if err != nil {
		cleanup()
		return "", fmt.Errorf("Save: write: %w", err)
	}
	if n > d.MaxBytes {
		cleanup()
		return "", ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("Save: close: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(d.Root, filepath.FromSlash(rel))); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("Save: %w", err)
	}
	return rel, nil
}

// Delete removes a stored file. Missing files are not an error.
func (d *Disk) Delete(_ context.Context, rel string) error {
	full, err := d.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (d *Disk) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return d.URLPrefix + "/" + strings.TrimLeft(rel, "/")
}

// resolve rejects anything outside the documents directory.
func (d *Disk) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)[1:]
	if !strings.HasPrefix(clean, documentsDir+"/") || clean != rel {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return filepath.Join(d.Root, filepath.FromSlash(clean)), nil
}

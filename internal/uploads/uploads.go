package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	sl "freelance_service/internal/lib/logger"
	"freelance_service/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNoFiles       = errors.New("no files uploaded")
	ErrTooManyFiles  = errors.New("too many files")
	ErrFileTooLarge  = errors.New("file too large")
	ErrInvalidObject = errors.New("invalid object name")
)

// Store writes named objects and can remove them again.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, name string) error
}

type Uploader struct {
	log      *slog.Logger
	store    Store
	maxFiles int
	maxSize  int64
	now      func() time.Time
}

func NewUploader(log *slog.Logger, store Store, maxFiles int, maxSize int64) *Uploader {
	return &Uploader{
		log:      log,
		store:    store,
		maxFiles: maxFiles,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

// Upload stores every file or none of them: when one write fails the
// objects already written for this call are removed before returning.
func (u *Uploader) Upload(ctx context.Context, files []*multipart.FileHeader) ([]models.UploadedImage, error) {
	const op = "uploads.Upload"

	log := u.log.With(slog.String("op", op))

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	if u.maxFiles > 0 && len(files) > u.maxFiles {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFiles, len(files), u.maxFiles)
	}

	for _, fh := range files {
		if u.maxSize > 0 && fh.Size > u.maxSize {
			return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, fh.Filename)
		}
	}

	images := make([]models.UploadedImage, 0, len(files))
	written := make([]string, 0, len(files))

	for _, fh := range files {
		name := ObjectName(fh.Filename)

		url, err := u.put(ctx, name, fh)
		if err != nil {
			log.Error("failed to store file", slog.String("name", name), sl.Err(err))

			u.cleanup(log, written)

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		written = append(written, name)
		images = append(images, models.UploadedImage{
			Name:       fh.Filename,
			URL:        url,
			UploadedAt: u.now().UTC(),
		})
	}

	log.Info("files uploaded", slog.Int("count", len(images)))

	return images, nil
}

func (u *Uploader) put(ctx context.Context, name string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return u.store.Put(ctx, name, f, fh.Size, fh.Header.Get("Content-Type"))
}

func (u *Uploader) cleanup(log *slog.Logger, names []string) {
	// the request context may already be gone
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, name := range names {
		if err := u.store.Remove(ctx, name); err != nil {
			log.Warn("failed to remove uploaded file", slog.String("name", name), sl.Err(err))
		}
	}
}

// ObjectName prefixes the base of original with a random UUID.
func ObjectName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		base = "file"
	}

	return uuid.NewString() + "-" + base
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidObject, name)
	}

	return nil
}

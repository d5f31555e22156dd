package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects as files in one directory. They are served back
// by the HTTP server under /uploads/.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	const op = "uploads.NewLocalStore"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(publicURL, "/") + "/uploads/",
	}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	const op = "uploads.LocalStore.Put"

	if err := validName(name); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	_, err = io.Copy(f, readerWithContext(ctx, r))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.baseURL + url.PathEscape(name), nil
}

func (s *LocalStore) Remove(_ context.Context, name string) error {
	const op = "uploads.LocalStore.Remove"

	if err := validName(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}

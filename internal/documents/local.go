package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalUploader хранит файлы на локальном диске. Для разработки и тестов.
type LocalUploader struct {
	baseURL string
	dir     string
	now     func() time.Time
}

// NewLocalUploader создаёт каталог загрузок, если его нет.
func NewLocalUploader(baseURL, dir string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalUploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		dir:     dir,
		now:     time.Now,
	}, nil
}

// Dir возвращает корневой каталог загрузок.
func (u *LocalUploader) Dir() string {
	return u.dir
}

func (u *LocalUploader) Upload(ctx context.Context, folder, fileName, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	name := objectName(folder, fileName, u.now())
	fullPath := filepath.Join(u.dir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: create directories: %v", ErrUploadFailed, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write file: %v", ErrUploadFailed, err)
	}

	return u.baseURL + "/" + name, nil
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"polyp-dashboard/internal/domain/port"
)

// FSUploadStore сохраняет загрузки в каталог, раздаваемый по префиксу URL
type FSUploadStore struct {
	dir       string
	urlPrefix string
}

// NewFSUploadStore создаёт хранилище загрузок
func NewFSUploadStore(dir, urlPrefix string) *FSUploadStore {
	return &FSUploadStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Dir возвращает каталог загрузок
func (s *FSUploadStore) Dir() string { return s.dir }

// Save пишет файл как <id>-<name> и возвращает его URL
func (s *FSUploadStore) Save(ctx context.Context, id, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	fileName := id + "-" + sanitizeName(name)
	if err := os.WriteFile(filepath.Join(s.dir, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(s.urlPrefix, fileName), nil
}

// sanitizeName оставляет только базовое имя файла без опасных символов
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

var _ port.UploadStore = (*FSUploadStore)(nil)

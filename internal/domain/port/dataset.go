package port

import (
	"context"
	"errors"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/segmentation"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("not found")

// DatasetRepository интерфейс хранилища записей датасета
type DatasetRepository interface {
	// ReplaceAll атомарно заменяет содержимое хранилища
	ReplaceAll(ctx context.Context, records []entity.ImageRecord) error

	// All возвращает все записи, отсортированные по ID
	All(ctx context.Context) ([]entity.ImageRecord, error)

	// Get возвращает запись по ID или ErrNotFound
	Get(ctx context.Context, id string) (entity.ImageRecord, error)
}

// DatasetSource интерфейс источника файлов датасета
type DatasetSource interface {
	// Scan находит пары снимок/маска и, если есть, эталонные маски
	Scan(ctx context.Context) ([]entity.SamplePaths, error)

	// ReadFile читает файл образца
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// UploadStore интерфейс хранилища загруженных файлов
type UploadStore interface {
	// Save сохраняет файл и возвращает URL для дашборда
	Save(ctx context.Context, id, name string, data []byte) (string, error)
}

// DiagnosisGenerator генерирует синтетическое диагностическое описание
type DiagnosisGenerator interface {
	Generate(label segmentation.Label) entity.Diagnosis
}

// MetricsGenerator генерирует метрики для образцов без эталонной маски
type MetricsGenerator interface {
	Metrics() segmentation.MetricResult
}

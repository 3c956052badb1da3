package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
)

// MemoryDatasetRepository in-memory хранилище записей датасета.
// Срез records заменяется целиком и после публикации не меняется,
// поэтому читатели получают его без копирования.
type MemoryDatasetRepository struct {
	mu      sync.RWMutex
	records []entity.ImageRecord
	byID    map[string]int
}

// NewMemoryDatasetRepository создаёт пустое хранилище
func NewMemoryDatasetRepository() *MemoryDatasetRepository {
	return &MemoryDatasetRepository{byID: make(map[string]int)}
}

// ReplaceAll заменяет содержимое хранилища
func (r *MemoryDatasetRepository) ReplaceAll(ctx context.Context, records []entity.ImageRecord) error {
	sorted := make([]entity.ImageRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	index := make(map[string]int, len(sorted))
	for i, rec := range sorted {
		if _, dup := index[rec.ID]; dup {
			return fmt.Errorf("duplicate record id %q", rec.ID)
		}
		index[rec.ID] = i
	}

	r.mu.Lock()
	r.records = sorted
	r.byID = index
	r.mu.Unlock()

	return nil
}

// All возвращает все записи
func (r *MemoryDatasetRepository) All(ctx context.Context) ([]entity.ImageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records, nil
}

// Get возвращает запись по ID
func (r *MemoryDatasetRepository) Get(ctx context.Context, id string) (entity.ImageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return entity.ImageRecord{}, fmt.Errorf("image %q: %w", id, port.ErrNotFound)
	}
	return r.records[i], nil
}

var _ port.DatasetRepository = (*MemoryDatasetRepository)(nil)

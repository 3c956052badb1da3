package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
)

const (
	ImagesDir      = "images"
	MasksDir       = "masks"
	GroundTruthDir = "ground_truth"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".webp": true,
}

// FSDatasetSource читает датасет из каталога вида
// <root>/images, <root>/masks и необязательного <root>/ground_truth.
type FSDatasetSource struct {
	root string
}

// NewFSDatasetSource создаёт источник над каталогом root
func NewFSDatasetSource(root string) *FSDatasetSource {
	return &FSDatasetSource{root: filepath.Clean(root)}
}

// Scan возвращает образцы, у которых есть и снимок, и маска
func (s *FSDatasetSource) Scan(ctx context.Context) ([]entity.SamplePaths, error) {
	images, err := s.listByStem(ImagesDir)
	if err != nil {
		return nil, err
	}
	masks, err := s.listByStem(MasksDir)
	if err != nil {
		return nil, err
	}
	truths, err := s.listByStem(GroundTruthDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	samples := make([]entity.SamplePaths, 0, len(images))
	for id, imagePath := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		maskPath, ok := masks[id]
		if !ok {
			continue
		}
		samples = append(samples, entity.SamplePaths{
			ID:              id,
			ImagePath:       imagePath,
			MaskPath:        maskPath,
			GroundTruthPath: truths[id],
		})
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].ID < samples[j].ID })
	return samples, nil
}

// ReadFile читает файл, не выходя за пределы корня датасета
func (s *FSDatasetSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q is outside dataset root", path)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", rel, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	return data, nil
}

// listByStem возвращает файлы изображений каталога, ключ это имя без расширения
func (s *FSDatasetSource) listByStem(dir string) (map[string]string, error) {
	full := filepath.Join(s.root, dir)
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !imageExtensions[ext] {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		// при дублях (a.png и a.jpg) побеждает первый по алфавиту
		if _, dup := files[stem]; dup {
			continue
		}
		files[stem] = filepath.Join(full, e.Name())
	}
	return files, nil
}

var _ port.DatasetSource = (*FSDatasetSource)(nil)

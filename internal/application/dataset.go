package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
	"polyp-dashboard/internal/domain/segmentation"
)

const (
	// DefaultPageSize столько карточек помещается в сетку 3x3
	DefaultPageSize = 9
	MaxPageSize     = 100
	overlayAlpha    = 0.5
)

// ErrUnsupportedView неизвестный режим просмотра.
var ErrUnsupportedView = errors.New("unsupported view mode")

// DatasetConfig параметры сервиса датасета.
type DatasetConfig struct {
	Threshold int
	PageSize  int
	Workers   int // параллельных вычислений метрик при перезагрузке, 0 = NumCPU
}

// DatasetService отдаёт дашборду записи датасета.
type DatasetService struct {
	cfg       DatasetConfig
	repo      port.DatasetRepository
	source    port.DatasetSource
	decoder   port.MaskDecoder
	overlay   port.OverlayRenderer
	diagnoses port.DiagnosisGenerator
	metrics   port.MetricsGenerator
	log       zerolog.Logger

	reloadMu sync.Mutex
}

// NewDatasetService создаёт сервис датасета.
func NewDatasetService(
	cfg DatasetConfig,
	repo port.DatasetRepository,
	source port.DatasetSource,
	decoder port.MaskDecoder,
	overlay port.OverlayRenderer,
	diagnoses port.DiagnosisGenerator,
	metrics port.MetricsGenerator,
	log zerolog.Logger,
) *DatasetService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &DatasetService{
		cfg:       cfg,
		repo:      repo,
		source:    source,
		decoder:   decoder,
		overlay:   overlay,
		diagnoses: diagnoses,
		metrics:   metrics,
		log:       log,
	}
}

// Reload пересканирует источник и заменяет содержимое хранилища.
// Для образцов с эталонной маской метрики считаются по пикселям,
// для остальных генерируются. Возвращает число записей.
func (s *DatasetService) Reload(ctx context.Context) (int, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	samples, err := s.source.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan dataset: %w", err)
	}

	records := make([]entity.ImageRecord, len(samples))
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

	for i, sample := range samples {
		records[i] = entity.ImageRecord{
			ID:              sample.ID,
			ImagePath:       sample.ImagePath,
			MaskPath:        sample.MaskPath,
			GroundTruthPath: sample.GroundTruthPath,
			Split:           entity.AssignSplit(sample.ID),
			MetricsSource:   entity.MetricsSynthetic,
		}
		if sample.GroundTruthPath == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(rec *entity.ImageRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			m, err := s.computeMetrics(ctx, rec)
			if err != nil {
				s.log.Warn().Err(err).Str("id", rec.ID).Msg("metrics fall back to synthetic values")
				return
			}
			rec.Metrics = m
			rec.MetricsSource = entity.MetricsComputed
		}(&records[i])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// синтетика заполняется последовательно, чтобы один сид давал один и тот же датасет
	computed := 0
	for i := range records {
		rec := &records[i]
		if rec.MetricsSource == entity.MetricsSynthetic {
			rec.Metrics = s.metrics.Metrics()
		} else {
			computed++
		}
		rec.Classification = segmentation.Classify(rec.Metrics.IoU)
		rec.Diagnosis = s.diagnoses.Generate(rec.Classification)
	}

	if err := s.repo.ReplaceAll(ctx, records); err != nil {
		return 0, err
	}

	s.log.Info().Int("records", len(records)).Int("computed", computed).Msg("dataset reloaded")
	return len(records), nil
}

func (s *DatasetService) computeMetrics(ctx context.Context, rec *entity.ImageRecord) (segmentation.MetricResult, error) {
	mask, err := s.readRaster(ctx, rec.MaskPath)
	if err != nil {
		return segmentation.MetricResult{}, fmt.Errorf("mask: %w", err)
	}
	truth, err := s.readRaster(ctx, rec.GroundTruthPath)
	if err != nil {
		return segmentation.MetricResult{}, fmt.Errorf("ground truth: %w", err)
	}
	if !mask.SameSize(truth) {
		return segmentation.MetricResult{}, fmt.Errorf("mask is %dx%d, ground truth is %dx%d: %w",
			mask.Width, mask.Height, truth.Width, truth.Height, segmentation.ErrShapeMismatch)
	}
	return segmentation.Compute(mask.Pixels, truth.Pixels, s.cfg.Threshold)
}

func (s *DatasetService) readRaster(ctx context.Context, path string) (*entity.Raster, error) {
	data, err := s.source.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.decoder.Decode(ctx, data)
}

// List фильтрует записи по части датасета, классу и подстроке ID (без учёта регистра), затем режет на страницы.
func (s *DatasetService) List(ctx context.Context, q entity.Query) (entity.Page, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return entity.Page{}, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]entity.ImageRecord, 0, len(all))
	for _, rec := range all {
		if q.Split != "" && rec.Split != q.Split {
			continue
		}
		if q.Label != "" && rec.Classification != q.Label {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.ID), search) {
			continue
		}
		filtered = append(filtered, rec)
	}

	size := q.PageSize
	if size <= 0 {
		size = s.cfg.PageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	totalPages := (len(filtered) + size - 1) / size
	page := q.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return entity.Page{
		Items:      filtered[start:end],
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalCount: len(filtered),
	}, nil
}

// Get возвращает запись по ID.
func (s *DatasetService) Get(ctx context.Context, id string) (entity.ImageRecord, error) {
	return s.repo.Get(ctx, id)
}

// Stats считает размер, долю и среднее/СКО метрик по каждой части датасета.
func (s *DatasetService) Stats(ctx context.Context) (entity.DatasetStats, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return entity.DatasetStats{}, err
	}

	dice := make(map[entity.Split][]float64, len(entity.Splits))
	iou := make(map[entity.Split][]float64, len(entity.Splits))
	labels := map[segmentation.Label]int{
		segmentation.LabelCancer: 0,
		segmentation.LabelPolyp:  0,
		segmentation.LabelNormal: 0,
	}
	for _, rec := range all {
		dice[rec.Split] = append(dice[rec.Split], rec.Metrics.Dice)
		iou[rec.Split] = append(iou[rec.Split], rec.Metrics.IoU)
		labels[rec.Classification]++
	}

	out := entity.DatasetStats{Total: len(all), Labels: labels}
	for _, split := range entity.Splits {
		count := len(dice[split])
		st := entity.SplitStats{
			Split: split,
			Count: count,
			Dice:  summarize(dice[split]),
			IoU:   summarize(iou[split]),
		}
		if len(all) > 0 {
			st.Percentage = math.Round(float64(count)/float64(len(all))*1e4) / 100
		}
		out.Splits = append(out.Splits, st)
	}
	return out, nil
}

func summarize(xs []float64) entity.MetricSummary {
	switch len(xs) {
	case 0:
		return entity.MetricSummary{}
	case 1:
		return entity.MetricSummary{Mean: xs[0]}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return entity.MetricSummary{Mean: mean, StdDev: std}
}

// Asset возвращает байты изображения для режима просмотра.
func (s *DatasetService) Asset(ctx context.Context, id string, mode entity.ViewMode) ([]byte, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch mode {
	case entity.ViewOriginal:
		return s.source.ReadFile(ctx, rec.ImagePath)
	case entity.ViewMask:
		return s.source.ReadFile(ctx, rec.MaskPath)
	case entity.ViewOverlay:
		img, err := s.source.ReadFile(ctx, rec.ImagePath)
		if err != nil {
			return nil, err
		}
		mask, err := s.source.ReadFile(ctx, rec.MaskPath)
		if err != nil {
			return nil, err
		}
		return s.overlay.Overlay(ctx, img, mask, overlayAlpha)
	default:
		return nil, fmt.Errorf("%q: %w", mode, ErrUnsupportedView)
	}
}

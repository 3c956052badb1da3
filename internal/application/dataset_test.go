package app

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
	"polyp-dashboard/internal/domain/segmentation"
	"polyp-dashboard/internal/infrastructure/storage"
	"polyp-dashboard/internal/infrastructure/synthetic"
	"polyp-dashboard/internal/infrastructure/vision"
	"polyp-dashboard/internal/logger"
)

func newDatasetService(t *testing.T, src port.DatasetSource) (*DatasetService, *storage.MemoryDatasetRepository) {
	t.Helper()
	repo := storage.NewMemoryDatasetRepository()
	dec := vision.NewDecoder(127)
	gen := synthetic.NewGenerator(11)
	svc := NewDatasetService(DatasetConfig{Threshold: 127, Workers: 2}, repo, src, dec, dec, gen, gen, logger.Nop())
	return svc, repo
}

func TestDatasetService_Reload(t *testing.T) {
	t.Parallel()

	src := &memorySource{
		samples: []entity.SamplePaths{
			{ID: "a", ImagePath: "img/a", MaskPath: "mask/a", GroundTruthPath: "gt/a"},
			{ID: "b", ImagePath: "img/b", MaskPath: "mask/b"},
			{ID: "c", ImagePath: "img/c", MaskPath: "mask/c", GroundTruthPath: "gt/c"},
			{ID: "d", ImagePath: "img/d", MaskPath: "mask/d", GroundTruthPath: "gt/d"},
		},
		files: map[string][]byte{
			"mask/a": grayPNG(t, 2, 2, 255, 255, 0, 0),
			"gt/a":   grayPNG(t, 2, 2, 255, 255, 0, 0),
			"mask/c": grayPNG(t, 2, 2),
			"gt/c":   grayPNG(t, 3, 3),
			"mask/d": grayPNG(t, 2, 2, 200, 200, 0, 0),
			"gt/d":   grayPNG(t, 2, 2, 200, 0, 200, 0),
		},
	}
	svc, repo := newDatasetService(t, src)
	ctx := context.Background()

	n, err := svc.Reload(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	a, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, entity.MetricsComputed, a.MetricsSource)
	require.Equal(t, 1.0, a.Metrics.IoU)
	require.Equal(t, segmentation.LabelCancer, a.Classification)
	require.Equal(t, segmentation.LabelCancer, a.Diagnosis.Type)
	require.Equal(t, entity.AssignSplit("a"), a.Split)

	d, err := repo.Get(ctx, "d")
	require.NoError(t, err)
	require.Equal(t, entity.MetricsComputed, d.MetricsSource)
	require.Equal(t, segmentation.LabelPolyp, d.Classification)

	for _, id := range []string{"b", "c"} {
		rec, err := repo.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, entity.MetricsSynthetic, rec.MetricsSource, id)
		require.GreaterOrEqual(t, rec.Metrics.Dice, 0.7)
		require.Equal(t, segmentation.Classify(rec.Metrics.IoU), rec.Classification)
	}
}

func seedRecords(t *testing.T, repo *storage.MemoryDatasetRepository, records ...entity.ImageRecord) {
	t.Helper()
	require.NoError(t, repo.ReplaceAll(context.Background(), records))
}

func TestDatasetService_ListPagination(t *testing.T) {
	t.Parallel()

	svc, repo := newDatasetService(t, &memorySource{})
	var records []entity.ImageRecord
	for i := 0; i < 20; i++ {
		records = append(records, entity.ImageRecord{ID: fmt.Sprintf("img%02d", i), Split: entity.SplitTraining})
	}
	seedRecords(t, repo, records...)
	ctx := context.Background()

	page, err := svc.List(ctx, entity.Query{Page: 1})
	require.NoError(t, err)
	require.Equal(t, 9, page.PageSize)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 20, page.TotalCount)
	require.Len(t, page.Items, 9)
	require.Equal(t, "img00", page.Items[0].ID)

	page, err = svc.List(ctx, entity.Query{Page: 99})
	require.NoError(t, err)
	require.Equal(t, 3, page.Page)
	require.Len(t, page.Items, 2)
	require.Equal(t, "img18", page.Items[0].ID)

	page, err = svc.List(ctx, entity.Query{Page: -4, PageSize: 5})
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 4, page.TotalPages)
	require.Len(t, page.Items, 5)

	page, err = svc.List(ctx, entity.Query{PageSize: 1000})
	require.NoError(t, err)
	require.Equal(t, MaxPageSize, page.PageSize)
	require.Len(t, page.Items, 20)
}

func TestDatasetService_ListFilters(t *testing.T) {
	t.Parallel()

	svc, repo := newDatasetService(t, &memorySource{})
	seedRecords(t, repo,
		entity.ImageRecord{ID: "Polyp-001", Split: entity.SplitTraining},
		entity.ImageRecord{ID: "polyp-002", Split: entity.SplitTest},
		entity.ImageRecord{ID: "normal-003", Split: entity.SplitTest},
	)
	ctx := context.Background()

	page, err := svc.List(ctx, entity.Query{Search: "POLYP"})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalCount)

	page, err = svc.List(ctx, entity.Query{Search: "polyp", Split: entity.SplitTest})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	require.Equal(t, "polyp-002", page.Items[0].ID)

	page, err = svc.List(ctx, entity.Query{Search: "missing"})
	require.NoError(t, err)
	require.Equal(t, 0, page.TotalCount)
	require.Equal(t, 0, page.TotalPages)
	require.Equal(t, 1, page.Page)
	require.Empty(t, page.Items)
}

func TestDatasetService_ListByLabel(t *testing.T) {
	t.Parallel()

	svc, repo := newDatasetService(t, &memorySource{})
	seedRecords(t, repo,
		entity.ImageRecord{ID: "a", Split: entity.SplitTraining, Classification: segmentation.LabelCancer},
		entity.ImageRecord{ID: "b", Split: entity.SplitTest, Classification: segmentation.LabelPolyp},
		entity.ImageRecord{ID: "c", Split: entity.SplitTest, Classification: segmentation.LabelCancer},
	)
	ctx := context.Background()

	page, err := svc.List(ctx, entity.Query{Label: segmentation.LabelCancer})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalCount)

	page, err = svc.List(ctx, entity.Query{Label: segmentation.LabelCancer, Split: entity.SplitTest})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	require.Equal(t, "c", page.Items[0].ID)

	page, err = svc.List(ctx, entity.Query{Label: segmentation.LabelNormal})
	require.NoError(t, err)
	require.Zero(t, page.TotalCount)
}

func TestDatasetService_Stats(t *testing.T) {
	t.Parallel()

	svc, repo := newDatasetService(t, &memorySource{})
	seedRecords(t, repo,
		entity.ImageRecord{ID: "a", Split: entity.SplitTraining, Classification: segmentation.LabelPolyp,
			Metrics: segmentation.MetricResult{Dice: 0.8, IoU: 0.6}},
		entity.ImageRecord{ID: "b", Split: entity.SplitTraining, Classification: segmentation.LabelCancer,
			Metrics: segmentation.MetricResult{Dice: 0.6, IoU: 0.8}},
		entity.ImageRecord{ID: "c", Split: entity.SplitValidation, Classification: segmentation.LabelNormal,
			Metrics: segmentation.MetricResult{Dice: 0.5, IoU: 0.2}},
		entity.ImageRecord{ID: "d", Split: entity.SplitTraining, Classification: segmentation.LabelPolyp,
			Metrics: segmentation.MetricResult{Dice: 0.7, IoU: 0.4}},
	)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, stats.Total)
	require.Len(t, stats.Splits, 3)

	training := stats.Splits[0]
	require.Equal(t, entity.SplitTraining, training.Split)
	require.Equal(t, 3, training.Count)
	require.Equal(t, 75.0, training.Percentage)
	require.InDelta(t, 0.7, training.Dice.Mean, 1e-9)
	require.InDelta(t, 0.1, training.Dice.StdDev, 1e-9)

	validation := stats.Splits[1]
	require.Equal(t, 1, validation.Count)
	require.Equal(t, 0.5, validation.Dice.Mean)
	require.Zero(t, validation.Dice.StdDev)

	test := stats.Splits[2]
	require.Zero(t, test.Count)
	require.Zero(t, test.Percentage)

	require.Equal(t, 2, stats.Labels[segmentation.LabelPolyp])
	require.Equal(t, 1, stats.Labels[segmentation.LabelCancer])
	require.Equal(t, 1, stats.Labels[segmentation.LabelNormal])
}

func TestDatasetService_Asset(t *testing.T) {
	t.Parallel()

	src := &memorySource{
		samples: []entity.SamplePaths{{ID: "a", ImagePath: "img/a", MaskPath: "mask/a"}},
		files: map[string][]byte{
			"img/a":  grayPNG(t, 2, 2, 10, 20, 30, 40),
			"mask/a": grayPNG(t, 2, 2, 255, 0, 0, 0),
		},
	}
	svc, _ := newDatasetService(t, src)
	ctx := context.Background()
	_, err := svc.Reload(ctx)
	require.NoError(t, err)

	data, err := svc.Asset(ctx, "a", entity.ViewOriginal)
	require.NoError(t, err)
	require.Equal(t, src.files["img/a"], data)

	data, err = svc.Asset(ctx, "a", entity.ViewMask)
	require.NoError(t, err)
	require.Equal(t, src.files["mask/a"], data)

	data, err = svc.Asset(ctx, "a", entity.ViewOverlay)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())

	_, err = svc.Asset(ctx, "a", entity.ViewMode("heatmap"))
	require.ErrorIs(t, err, ErrUnsupportedView)

	_, err = svc.Asset(ctx, "zzz", entity.ViewOriginal)
	require.ErrorIs(t, err, port.ErrNotFound)
}

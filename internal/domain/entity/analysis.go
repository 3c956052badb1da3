package entity

import (
	"strings"

	"polyp-dashboard/internal/domain/segmentation"
)

// Raster декодированное изображение в оттенках серого
type Raster struct {
	Width  int
	Height int
	Pixels segmentation.PixelBuffer // len == Width*Height
}

// SameSize совпадают ли размеры растров
func (r *Raster) SameSize(other *Raster) bool {
	return r.Width == other.Width && r.Height == other.Height
}

// ViewMode режим просмотра изображения в модальном окне
type ViewMode string

const (
	ViewOriginal ViewMode = "original"
	ViewMask     ViewMode = "mask"
	ViewOverlay  ViewMode = "overlay"
)

// ParseViewMode разбирает режим просмотра
func ParseViewMode(s string) (ViewMode, bool) {
	switch v := ViewMode(strings.ToLower(s)); v {
	case ViewOriginal, ViewMask, ViewOverlay:
		return v, true
	}
	return "", false
}

// AnalysisResult итог анализа загруженной пары масок.
type AnalysisResult struct {
	ID             string                       `json:"id"`
	ImageURL       string                       `json:"image,omitempty"`
	PredictionURL  string                       `json:"prediction_mask"`
	GroundTruthURL string                       `json:"ground_truth_mask"`
	Width          int                          `json:"width"`
	Height         int                          `json:"height"`
	Threshold      int                          `json:"threshold"`
	Counts         segmentation.ConfusionCounts `json:"confusion"`
	Metrics        segmentation.MetricResult    `json:"metrics"`
	Classification segmentation.Label           `json:"classification"`
	Diagnosis      Diagnosis                    `json:"diagnosis"`
}

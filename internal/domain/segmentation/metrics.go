package segmentation

import (
	"errors"
	"fmt"
)

// DefaultThreshold порог бинаризации по умолчанию: пиксель считается
// передним планом, если его яркость строго больше порога.
const DefaultThreshold = 127

var (
	// ErrShapeMismatch длины буферов предсказания и эталона не совпадают.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidThreshold порог вне диапазона [0, 255].
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// PixelBuffer одноканальный буфер яркостей, построчно развёрнутый.
type PixelBuffer []uint8

// ConfusionCounts матрица ошибок по пикселям.
type ConfusionCounts struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TN int `json:"tn"`
}

// Total возвращает общее число учтённых пикселей.
func (c ConfusionCounts) Total() int {
	return c.TP + c.FP + c.FN + c.TN
}

// MetricResult метрики качества сегментации, каждая в [0, 1].
type MetricResult struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Dice      float64 `json:"dice"`
	IoU       float64 `json:"iou"`
}

// Compute считает precision, recall, Dice и IoU между маской предсказания и эталоном.
func Compute(prediction, groundTruth PixelBuffer, threshold int) (MetricResult, error) {
	counts, err := Confusion(prediction, groundTruth, threshold)
	if err != nil {
		return MetricResult{}, err
	}
	return counts.Metrics(), nil
}

// Confusion бинаризует оба буфера и считает матрицу ошибок за один проход.
func Confusion(prediction, groundTruth PixelBuffer, threshold int) (ConfusionCounts, error) {
	if len(prediction) != len(groundTruth) {
		return ConfusionCounts{}, fmt.Errorf("prediction has %d pixels, ground truth has %d: %w",
			len(prediction), len(groundTruth), ErrShapeMismatch)
	}
	if threshold < 0 || threshold > 255 {
		return ConfusionCounts{}, fmt.Errorf("threshold %d: %w", threshold, ErrInvalidThreshold)
	}

	t := uint8(threshold)
	var c ConfusionCounts
	for i := range prediction {
		predBit := prediction[i] > t
		truthBit := groundTruth[i] > t

		switch {
		case predBit && truthBit:
			c.TP++
		case predBit:
			c.FP++
		case truthBit:
			c.FN++
		default:
			c.TN++
		}
	}

	return c, nil
}

// Metrics выводит метрики из матрицы ошибок. При нулевом знаменателе метрика равна 0.
func (c ConfusionCounts) Metrics() MetricResult {
	return MetricResult{
		Precision: ratio(c.TP, c.TP+c.FP),
		Recall:    ratio(c.TP, c.TP+c.FN),
		Dice:      ratio(2*c.TP, 2*c.TP+c.FP+c.FN),
		IoU:       ratio(c.TP, c.TP+c.FP+c.FN),
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

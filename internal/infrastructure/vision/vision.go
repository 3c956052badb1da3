package vision

import (
	"errors"
	"image/color"
)

// ErrDecode изображение не удалось декодировать
var ErrDecode = errors.New("failed to decode image")

// Decoder декодирует маски и рисует наложение маски на снимок.
// Реализация выбирается тегом сборки: gocv (OpenCV) или чистый Go.
type Decoder struct {
	MaskThreshold uint8      // пиксель маски выше порога закрашивается
	OverlayColor  color.RGBA // цвет наложения
	MaxSide       int        // наложение уменьшается до этой стороны, 0 без ограничения
}

// NewDecoder создаёт декодер с порогом маски threshold.
func NewDecoder(threshold uint8) *Decoder {
	return &Decoder{
		MaskThreshold: threshold,
		OverlayColor:  color.RGBA{R: 255, G: 40, B: 40, A: 255},
		MaxSide:       1024,
	}
}

func clampAlpha(alpha float64) float64 {
	switch {
	case alpha < 0:
		return 0
	case alpha > 1:
		return 1
	}
	return alpha
}

func blend(base, over uint8, alpha float64) uint8 {
	return uint8(float64(base)*(1-alpha) + float64(over)*alpha + 0.5)
}

// fitSide уменьшает размеры так, чтобы большая сторона не превышала maxSide.
// Каждая сторона остаётся не меньше 1 пикселя.
func fitSide(width, height, maxSide int) (int, int) {
	longest := maxInt(width, height)
	if maxSide <= 0 || longest <= maxSide {
		return width, height
	}
	return maxInt(1, width*maxSide/longest), maxInt(1, height*maxSide/longest)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

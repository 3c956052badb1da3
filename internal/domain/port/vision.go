package port

import (
	"context"

	"polyp-dashboard/internal/domain/entity"
)

// MaskDecoder интерфейс декодера изображений в одноканальный растр
type MaskDecoder interface {
	// Decode декодирует PNG/JPEG/BMP/WebP и приводит к оттенкам серого
	Decode(ctx context.Context, data []byte) (*entity.Raster, error)
}

// OverlayRenderer интерфейс отрисовки маски поверх снимка
type OverlayRenderer interface {
	// Overlay накладывает маску на снимок с прозрачностью alpha и возвращает PNG
	Overlay(ctx context.Context, image, mask []byte, alpha float64) ([]byte, error)
}

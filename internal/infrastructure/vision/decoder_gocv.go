//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
)

// Decode декодирует изображение сразу в оттенки серого средствами OpenCV.
func (d *Decoder) Decode(ctx context.Context, data []byte) (*entity.Raster, error) {
	_ = ctx
	mat, err := decodeToMat(data, gocv.IMReadGrayScale)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	return &entity.Raster{
		Width:  mat.Cols(),
		Height: mat.Rows(),
		Pixels: mat.ToBytes(),
	}, nil
}

// Overlay накладывает маску на снимок. Маска другого размера растягивается
// до размера снимка ближайшим соседом, чтобы не размывать границы.
func (d *Decoder) Overlay(ctx context.Context, imageData, maskData []byte, alpha float64) ([]byte, error) {
	_ = ctx
	alpha = clampAlpha(alpha)

	img, err := decodeToMat(imageData, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	defer img.Close()

	mask, err := decodeToMat(maskData, gocv.IMReadGrayScale)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	defer mask.Close()

	// Приводим к стандартному размеру, чтобы не гонять большие PNG.
	if w, h := fitSide(img.Cols(), img.Rows(), d.MaxSide); w != img.Cols() || h != img.Rows() {
		resized := gocv.NewMat()
		gocv.Resize(img, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
		img.Close()
		img = resized
	}

	width, height := img.Cols(), img.Rows()
	if mask.Cols() != width || mask.Rows() != height {
		resized := gocv.NewMat()
		gocv.Resize(mask, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationNearestNeighbor)
		mask.Close()
		mask = resized
	}

	// Попиксельный доступ через CGO медленный, поэтому работаем с байтами напрямую.
	imgData := img.ToBytes()
	maskBytes := mask.ToBytes()
	c := d.OverlayColor
	for idx, m := range maskBytes {
		if m <= d.MaskThreshold {
			continue
		}
		pos := idx * 3
		imgData[pos+0] = blend(imgData[pos+0], c.B, alpha)
		imgData[pos+1] = blend(imgData[pos+1], c.G, alpha)
		imgData[pos+2] = blend(imgData[pos+2], c.R, alpha)
	}

	out, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)
	if err != nil {
		return nil, fmt.Errorf("build overlay: %w", err)
	}
	defer out.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, out)
	if err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	defer buf.Close()

	encoded := make([]byte, buf.Len())
	copy(encoded, buf.GetBytes())
	return encoded, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(data []byte, flags gocv.IMReadFlag) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(data, flags)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), ErrDecode
}

var (
	_ port.MaskDecoder     = (*Decoder)(nil)
	_ port.OverlayRenderer = (*Decoder)(nil)
)

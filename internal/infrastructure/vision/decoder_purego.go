//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
)

// Decode декодирует изображение и переводит его в оттенки серого (без OpenCV).
func (d *Decoder) Decode(ctx context.Context, data []byte) (*entity.Raster, error) {
	_ = ctx
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	gray := toGray(img)
	b := gray.Bounds()
	return &entity.Raster{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: gray.Pix,
	}, nil
}

// Overlay накладывает маску на снимок и возвращает PNG.
func (d *Decoder) Overlay(ctx context.Context, imageData, maskData []byte, alpha float64) ([]byte, error) {
	_ = ctx
	alpha = clampAlpha(alpha)

	src, err := decodeImage(imageData)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	maskImg, err := decodeImage(maskData)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}

	sb := src.Bounds()
	width, height := sb.Dx(), sb.Dy()
	width, height = fitSide(width, height, d.MaxSide)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == sb.Dx() && height == sb.Dy() {
		xdraw.Draw(canvas, canvas.Bounds(), src, sb.Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), src, sb, xdraw.Src, nil)
	}

	mask := toGray(maskImg)
	if mask.Bounds().Dx() != width || mask.Bounds().Dy() != height {
		scaled := image.NewGray(image.Rect(0, 0, width, height))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)
		mask = scaled
	}

	c := d.OverlayColor
	for idx, m := range mask.Pix {
		if m <= d.MaskThreshold {
			continue
		}
		pos := idx * 4
		canvas.Pix[pos+0] = blend(canvas.Pix[pos+0], c.R, alpha)
		canvas.Pix[pos+1] = blend(canvas.Pix[pos+1], c.G, alpha)
		canvas.Pix[pos+2] = blend(canvas.Pix[pos+2], c.B, alpha)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return img, nil
}

// toGray возвращает плотный *image.Gray с началом в (0, 0), Stride == ширина.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) && g.Stride == b.Dx() {
		return g
	}
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	return gray
}

var (
	_ port.MaskDecoder     = (*Decoder)(nil)
	_ port.OverlayRenderer = (*Decoder)(nil)
)

package app

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
)

func grayPNG(t *testing.T, w, h int, values ...uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, values)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type memorySource struct {
	samples []entity.SamplePaths
	files   map[string][]byte
}

func (s *memorySource) Scan(ctx context.Context) ([]entity.SamplePaths, error) {
	return s.samples, nil
}

func (s *memorySource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, port.ErrNotFound
	}
	return data, nil
}

type memoryUploads struct {
	saved map[string][]byte
}

func (u *memoryUploads) Save(ctx context.Context, id, name string, data []byte) (string, error) {
	if u.saved == nil {
		u.saved = make(map[string][]byte)
	}
	key := "/uploads/" + id + "-" + name
	u.saved[key] = data
	return key, nil
}

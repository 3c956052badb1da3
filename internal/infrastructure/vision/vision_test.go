package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFitSide(t *testing.T) {
	tests := []struct {
		name          string
		w, h, maxSide int
		wantW, wantH  int
	}{
		{"no limit", 4000, 3000, 0, 4000, 3000},
		{"fits", 800, 600, 1024, 800, 600},
		{"landscape", 2048, 1024, 1024, 1024, 512},
		{"portrait", 1000, 2000, 500, 250, 500},
		{"thin column", 1, 3000, 1024, 1, 1024},
		{"thin row", 5000, 2, 1024, 1024, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitSide(tt.w, tt.h, tt.maxSide)
			require.Equal(t, tt.wantW, w)
			require.Equal(t, tt.wantH, h)
		})
	}
}

package synthetic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"polyp-dashboard/internal/domain/segmentation"
)

func TestGenerator_Metrics(t *testing.T) {
	g := NewGenerator(42)
	for i := 0; i < 200; i++ {
		m := g.Metrics()
		for _, v := range []float64{m.Dice, m.IoU, m.Precision, m.Recall} {
			require.GreaterOrEqual(t, v, 0.70)
			require.LessOrEqual(t, v, 0.95)
		}
	}
}

func TestGenerator_SameSeedSameSequence(t *testing.T) {
	a, b := NewGenerator(7), NewGenerator(7)
	require.Equal(t, a.Generate(segmentation.LabelPolyp), b.Generate(segmentation.LabelPolyp))
	require.Equal(t, a.Metrics(), b.Metrics())
}

func TestGenerator_Diagnosis(t *testing.T) {
	g := NewGenerator(1)
	for i := 0; i < 200; i++ {
		d := g.Generate(segmentation.LabelCancer)
		require.Equal(t, segmentation.LabelCancer, d.Type)
		require.GreaterOrEqual(t, d.Confidence, 0.4)
		require.Less(t, d.Confidence, 1.0)
		require.NotNil(t, d.Location)
		require.NotEmpty(t, d.Location.Landmarks)
		require.LessOrEqual(t, len(d.Location.Landmarks), 2)
		require.GreaterOrEqual(t, d.SizeMM, 5)
		require.Less(t, d.SizeMM, 30)
		require.NotEmpty(t, d.Characteristics)

		if d.Confidence < 0.7 {
			require.NotEmpty(t, d.LowConfidenceReasons)
		} else {
			require.Empty(t, d.LowConfidenceReasons)
		}
	}
}

func TestGenerator_NormalHasNoSize(t *testing.T) {
	g := NewGenerator(3)
	for i := 0; i < 50; i++ {
		d := g.Generate(segmentation.LabelNormal)
		require.Zero(t, d.SizeMM)
		require.Empty(t, d.Characteristics)
	}
}

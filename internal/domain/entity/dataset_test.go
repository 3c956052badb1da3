package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignSplit(t *testing.T) {
	// "A" = 65, "d" = 100 -> 0, "U" = 85
	require.Equal(t, SplitTraining, AssignSplit("A"))
	require.Equal(t, SplitTraining, AssignSplit("d"))
	require.Equal(t, SplitValidation, AssignSplit("F"))
	require.Equal(t, SplitTest, AssignSplit("U"))
	require.Equal(t, SplitTraining, AssignSplit(""))
}

func TestAssignSplit_Deterministic(t *testing.T) {
	require.Equal(t, AssignSplit("cju0qkwl35piu0993l0dewei2"), AssignSplit("cju0qkwl35piu0993l0dewei2"))
}

func TestParseSplit(t *testing.T) {
	s, ok := ParseSplit("all")
	require.True(t, ok)
	require.Empty(t, s)

	s, ok = ParseSplit(" Validation ")
	require.True(t, ok)
	require.Equal(t, SplitValidation, s)

	_, ok = ParseSplit("holdout")
	require.False(t, ok)
}

func TestParseViewMode(t *testing.T) {
	v, ok := ParseViewMode("Overlay")
	require.True(t, ok)
	require.Equal(t, ViewOverlay, v)

	_, ok = ParseViewMode("heatmap")
	require.False(t, ok)
}

func TestPage_Navigation(t *testing.T) {
	p := Page{Page: 1, TotalPages: 3}
	require.True(t, p.HasNext())
	require.False(t, p.HasPrev())

	p.Page = 3
	require.False(t, p.HasNext())
	require.True(t, p.HasPrev())
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	require.Equal(t, zerolog.Disabled, ParseLevel("off"))
}

func TestComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New("info", &buf), "rest")

	l.Debug().Msg("hidden")
	l.Info().Int("status", 200).Msg("request")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "rest", entry["component"])
	require.Equal(t, "request", entry["message"])
	require.Equal(t, float64(200), entry["status"])
}

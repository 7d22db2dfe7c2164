package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("fields and level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, "WARN")

		logger.Info().Msg("hidden")
		logger.Warn().Str("food", "Apples").Msg("shown")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "shown", entry["message"])
		assert.Equal(t, "nutrichat", entry["service"])
		assert.Equal(t, "Apples", entry["food"])
		assert.Contains(t, entry, "time")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, "loud")

		logger.Debug().Msg("hidden")
		assert.Zero(t, buf.Len())
		logger.Info().Msg("shown")
		assert.NotZero(t, buf.Len())
	})
}

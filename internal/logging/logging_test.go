package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger, err := Setup("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	componentLogger := Component(logger, "store")
	componentLogger.Warn().Str("exe_id", "e1").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "e1", entry["exe_id"])
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup("loud", "json", nil)
	assert.Error(t, err)
}

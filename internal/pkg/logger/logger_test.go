package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestComponentLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Format: FormatJSON, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info", Format: FormatPretty}) })

	l := Component("claims")
	l.Info().Str("claimID", "c-1").Msg("Claim approved")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "claims", line["component"])
	assert.Equal(t, "campusfound", line["service"])
	assert.Equal(t, "c-1", line["claimID"])
	assert.Equal(t, "Claim approved", line["message"])
}

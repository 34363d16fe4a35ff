package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
bus = "1"
pattern = "spiral"
rate = 60
stop_timeout = "2s"
`))
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Bus)
	assert.Equal(t, "spiral", cfg.Pattern)
	assert.Equal(t, 60, cfg.Rate)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.StopTimeout))

	// Unset fields keep their defaults.
	assert.Equal(t, DefaultConfig.Name, cfg.Name)
}

func TestParseConfigRejectsBadValues(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`pattern = "disco"`))
	assert.Error(t, err)

	_, err = ParseConfig(strings.NewReader(`rate = 0`))
	assert.Error(t, err)
}

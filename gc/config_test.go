// ABOUTME: Tests for YAML config loading and validation
// ABOUTME: Covers defaults, durations, unknown fields, and invalid values

package gc

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	doc := `
threshold_bytes: 4096
growth_factor: 1.5
max_heap_bytes: 1048576
timeout: 250ms
timeout_check_every: 10
`
	cfg, err := LoadConfig(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.ThresholdBytes)
	assert.Equal(t, 1.5, cfg.GrowthFactor)
	assert.Equal(t, 1<<20, cfg.MaxHeapBytes)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 10, cfg.TimeoutCheckEvery)
	assert.Equal(t, DefaultConfig().InitialSlots, cfg.InitialSlots, "unset fields keep defaults")
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		invalid bool
	}{
		{name: "unknown field", doc: "threshold: 10\n"},
		{name: "bad type", doc: "threshold_bytes: lots\n"},
		{name: "bad duration", doc: "timeout: soon\n"},
		{name: "zero threshold", doc: "threshold_bytes: 0\n", invalid: true},
		{name: "shrinking growth", doc: "growth_factor: 0.5\n", invalid: true},
		{name: "negative limit", doc: "max_heap_bytes: -1\n", invalid: true},
		{name: "zero check interval", doc: "timeout_check_every: 0\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

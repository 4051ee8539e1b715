// ABOUTME: Collector configuration with YAML loading and validation
// ABOUTME: Controls the allocation threshold, heap limit, and timeout checks

package gc

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Config tunes a Collector. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// InitialSlots preallocates the slot table.
	InitialSlots int `json:"initial_slots" yaml:"initial_slots"`

	// ThresholdBytes is the minimum number of bytes allocated between two
	// collections started by Allocate.
	ThresholdBytes int `json:"threshold_bytes" yaml:"threshold_bytes"`

	// GrowthFactor scales live bytes after a cycle to get the next threshold.
	GrowthFactor float64 `json:"growth_factor" yaml:"growth_factor"`

	// MaxHeapBytes caps live bytes. Zero means unlimited.
	MaxHeapBytes int `json:"max_heap_bytes" yaml:"max_heap_bytes"`

	// Timeout forces a cycle when this much wall time has passed since the
	// previous one. Zero disables it.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// TimeoutCheckEvery is how many allocations pass between clock reads.
	TimeoutCheckEvery int `json:"timeout_check_every" yaml:"timeout_check_every"`
}

// DefaultConfig returns the configuration used by New when none is given.
func DefaultConfig() Config {
	return Config{
		InitialSlots:      1024,
		ThresholdBytes:    1 << 20,
		GrowthFactor:      2,
		TimeoutCheckEvery: 100,
	}
}

// Validate checks the configuration for values the collector cannot run with.
func (c Config) Validate() error {
	switch {
	case c.InitialSlots < 0:
		return fmt.Errorf("%w: initial_slots must be >= 0, got %d", ErrInvalidConfig, c.InitialSlots)
	case c.ThresholdBytes <= 0:
		return fmt.Errorf("%w: threshold_bytes must be > 0, got %d", ErrInvalidConfig, c.ThresholdBytes)
	case c.GrowthFactor < 1:
		return fmt.Errorf("%w: growth_factor must be >= 1, got %g", ErrInvalidConfig, c.GrowthFactor)
	case c.MaxHeapBytes < 0:
		return fmt.Errorf("%w: max_heap_bytes must be >= 0, got %d", ErrInvalidConfig, c.MaxHeapBytes)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout must be >= 0, got %v", ErrInvalidConfig, c.Timeout)
	case c.TimeoutCheckEvery <= 0:
		return fmt.Errorf("%w: timeout_check_every must be > 0, got %d", ErrInvalidConfig, c.TimeoutCheckEvery)
	}
	return nil
}

// LoadConfig reads a YAML document on top of DefaultConfig.
// An empty document yields the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

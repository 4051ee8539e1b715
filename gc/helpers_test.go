// ABOUTME: Shared fixtures for collector tests
// ABOUTME: Provides a quiet collector, a slice-backed root, and panic assertions

package gc

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// Tree-node kinds used by the tests.
const (
	kindAdd NodeID = KindUser + iota
	kindNeg
)

func newTestCollector(t *testing.T, opts ...Option) *Collector {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(append([]Option{WithLogger(quiet)}, opts...)...)
}

// sliceRoot is a model owning a flat list of top-level nodes.
type sliceRoot struct {
	refs []Ref
}

func (s *sliceRoot) Mark(m *Marker) {
	for _, r := range s.refs {
		m.Mark(r)
	}
}

// requirePanicsWith asserts that fn panics with an error wrapping target.
func requirePanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		v := recover()
		require.NotNil(t, v, "expected panic wrapping %v", target)
		err, ok := v.(error)
		require.True(t, ok, "panic value %v is not an error", v)
		require.True(t, errors.Is(err, target), "panic %v does not wrap %v", err, target)
	}()
	fn()
}

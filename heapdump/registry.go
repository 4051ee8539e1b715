// ABOUTME: Registry for heap snapshot parsers
// ABOUTME: Manages parser plugins and selects appropriate parser for dumps

package heapdump

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prateek/astgc/graph"
)

// PreviewSize is the number of leading bytes offered to CanParse.
const PreviewSize = 4096

var (
	// ErrNoParser is returned when no parser can handle the dump format
	ErrNoParser = errors.New("no parser found for dump format")
)

// parserRegistry holds registered parsers
type parserRegistry struct {
	mu      sync.RWMutex
	parsers []Parser
}

// Global registry instance
var registry = &parserRegistry{}

// Register adds a parser to the registry. Earlier registrations win when
// several parsers accept the same preview.
func Register(p Parser) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.parsers = append(registry.parsers, p)
}

// Open reads a heap snapshot with the first registered parser that
// accepts its leading bytes.
func Open(r io.Reader) (graph.Graph, error) {
	br := bufio.NewReaderSize(r, PreviewSize)
	preview, err := br.Peek(PreviewSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read dump header: %w", err)
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, p := range registry.parsers {
		if p.CanParse(bytes.NewReader(preview)) {
			return p.Parse(br)
		}
	}
	return nil, ErrNoParser
}

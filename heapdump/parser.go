// ABOUTME: Parser interface for heap snapshot formats
// ABOUTME: Defines the contract for pluggable snapshot readers

package heapdump

import (
	"io"

	"github.com/prateek/astgc/graph"
)

// Parser is the interface for heap snapshot parsers
type Parser interface {
	// CanParse reports whether the preview looks like this parser's format.
	// The reader holds at most PreviewSize bytes from the start of the dump.
	CanParse(preview io.Reader) bool

	// Parse reads the whole dump and builds a graph
	Parse(r io.Reader) (graph.Graph, error)
}

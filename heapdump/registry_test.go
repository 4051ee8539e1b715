// ABOUTME: Tests for the parser registry system
// ABOUTME: Validates parser registration and selection by preview

package heapdump

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prateek/astgc/graph"
)

// mockParser accepts dumps whose preview mentions its name
type mockParser struct {
	name   string
	parsed bool
}

func (p *mockParser) CanParse(r io.Reader) bool {
	buf := make([]byte, 100)
	n, _ := r.Read(buf)
	return strings.Contains(string(buf[:n]), p.name)
}

func (p *mockParser) Parse(r io.Reader) (graph.Graph, error) {
	p.parsed = true
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return graph.NewMemGraph(), nil
}

// withRegistry swaps in an empty registry for the duration of the test
func withRegistry(t *testing.T) {
	t.Helper()
	saved := registry
	registry = &parserRegistry{}
	t.Cleanup(func() { registry = saved })
}

func TestRegister(t *testing.T) {
	withRegistry(t)

	Register(&mockParser{name: "parser1"})
	Register(&mockParser{name: "parser2"})

	if len(registry.parsers) != 2 {
		t.Errorf("Expected 2 parsers registered, got %d", len(registry.parsers))
	}
}

func TestOpen(t *testing.T) {
	withRegistry(t)

	alpha := &mockParser{name: "alpha"}
	beta := &mockParser{name: "beta"}
	Register(alpha)
	Register(beta)

	tests := []struct {
		name    string
		content string
		want    *mockParser
		wantErr error
	}{
		{name: "first parser", content: "alpha dump data", want: alpha},
		{name: "second parser", content: "beta dump data", want: beta},
		{name: "unknown format", content: "gamma dump data", wantErr: ErrNoParser},
		{name: "empty input", content: "", wantErr: ErrNoParser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alpha.parsed, beta.parsed = false, false

			_, err := Open(strings.NewReader(tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Open() error = %v, want %v", err, tt.wantErr)
			}
			if tt.want != nil && !tt.want.parsed {
				t.Errorf("Expected parser %q to be used", tt.want.name)
			}
		})
	}
}

func TestOpenFirstMatchWins(t *testing.T) {
	withRegistry(t)

	first := &mockParser{name: "dump"}
	second := &mockParser{name: "dump"}
	Register(first)
	Register(second)

	if _, err := Open(strings.NewReader("dump")); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !first.parsed || second.parsed {
		t.Errorf("Expected only the first registered parser to run")
	}
}

func TestOpenLargeInput(t *testing.T) {
	withRegistry(t)

	p := &mockParser{name: "big"}
	Register(p)

	content := "big" + strings.Repeat("x", 3*PreviewSize)
	if _, err := Open(strings.NewReader(content)); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !p.parsed {
		t.Errorf("Expected parser to handle input larger than the preview")
	}
}

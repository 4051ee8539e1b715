// ABOUTME: JSON snapshot format written by the collector and read back for analysis
// ABOUTME: Each snapshot carries a format tag, a UUID, and the capture time

package heapdump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prateek/astgc/graph"
)

// FormatTag identifies the JSON snapshot format.
const FormatTag = "astgc-snapshot"

// FormatVersion is the current JSON snapshot version.
const FormatVersion = 1

// Meta describes a snapshot.
type Meta struct {
	ID      string    `json:"id"`
	TakenAt time.Time `json:"taken_at"`
}

// jsonDump represents the JSON dump format
type jsonDump struct {
	Format  string       `json:"format"`
	Version int          `json:"version"`
	Meta
	Objects []jsonObject `json:"objects"`
	Roots   []jsonRoot   `json:"roots"`
}

// jsonObject represents an object in the JSON format
type jsonObject struct {
	ID   graph.ObjID   `json:"id"`
	Type string        `json:"type"`
	Size uint64        `json:"size"`
	Ptrs []graph.ObjID `json:"ptrs"`
}

type jsonRoot struct {
	ID    graph.ObjID `json:"id"`
	Label string      `json:"label,omitempty"`
}

// JSONParser reads the JSON snapshot format
type JSONParser struct{}

// CanParse checks for the format tag in the preview
func (p *JSONParser) CanParse(r io.Reader) bool {
	buf, err := io.ReadAll(io.LimitReader(r, PreviewSize))
	if err != nil || len(buf) == 0 {
		return false
	}
	buf = bytes.TrimLeft(buf, " \t\r\n")
	return len(buf) > 0 && buf[0] == '{' && bytes.Contains(buf, []byte(`"`+FormatTag+`"`))
}

// Parse reads the JSON dump and builds a graph
func (p *JSONParser) Parse(r io.Reader) (graph.Graph, error) {
	_, g, err := ReadJSON(r)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ReadJSON decodes a snapshot and its metadata.
func ReadJSON(r io.Reader) (Meta, *graph.MemGraph, error) {
	var dump jsonDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return Meta{}, nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if dump.Format != FormatTag {
		return Meta{}, nil, fmt.Errorf("unexpected format %q", dump.Format)
	}
	if dump.Version > FormatVersion {
		return Meta{}, nil, fmt.Errorf("unsupported snapshot version %d", dump.Version)
	}

	g := graph.NewMemGraph()
	for i, obj := range dump.Objects {
		if obj.ID == 0 {
			return Meta{}, nil, fmt.Errorf("object at index %d missing ID", i)
		}
		g.AddObject(&graph.Object{
			ID:   obj.ID,
			Type: obj.Type,
			Size: obj.Size,
			Ptrs: obj.Ptrs,
		})
	}

	roots := graph.Roots{IDs: make([]graph.ObjID, 0, len(dump.Roots))}
	for _, root := range dump.Roots {
		roots.IDs = append(roots.IDs, root.ID)
		if root.Label != "" {
			if roots.Labels == nil {
				roots.Labels = make(map[graph.ObjID]string)
			}
			roots.Labels[root.ID] = root.Label
		}
	}
	g.SetRoots(roots)
	return dump.Meta, g, nil
}

// WriteJSON writes g in the JSON snapshot format under a fresh snapshot ID.
func WriteJSON(w io.Writer, g graph.Graph) (Meta, error) {
	meta := Meta{ID: uuid.NewString(), TakenAt: time.Now().UTC()}
	dump := jsonDump{
		Format:  FormatTag,
		Version: FormatVersion,
		Meta:    meta,
		Objects: make([]jsonObject, 0, g.NumObjects()),
	}
	g.ForEachObject(func(obj *graph.Object) {
		ptrs := obj.Ptrs
		if ptrs == nil {
			ptrs = []graph.ObjID{}
		}
		dump.Objects = append(dump.Objects, jsonObject{
			ID:   obj.ID,
			Type: obj.Type,
			Size: obj.Size,
			Ptrs: ptrs,
		})
	})
	roots := g.GetRoots()
	dump.Roots = make([]jsonRoot, 0, len(roots.IDs))
	for _, id := range roots.IDs {
		dump.Roots = append(dump.Roots, jsonRoot{ID: id, Label: roots.Labels[id]})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return Meta{}, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return meta, nil
}

// init registers the JSON parser
func init() {
	Register(&JSONParser{})
}

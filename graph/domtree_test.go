// ABOUTME: Tests for dominator chain queries
// ABOUTME: Uses a diamond under a single root plus an object shared by two roots
package graph

import (
	"reflect"
	"testing"
)

func domFixture() map[ObjID]ObjID {
	g := NewMemGraph()
	for _, obj := range []*Object{
		{ID: 1, Ptrs: []ObjID{2, 3}},
		{ID: 2, Ptrs: []ObjID{4}},
		{ID: 3, Ptrs: []ObjID{4}},
		{ID: 4, Ptrs: []ObjID{5}},
		{ID: 5},
		{ID: 6, Ptrs: []ObjID{5}},
		{ID: 7},
		{ID: 8, Ptrs: []ObjID{9}},
		{ID: 9},
	} {
		g.AddObject(obj)
	}
	g.SetRoots(Roots{IDs: []ObjID{1, 8}})
	return Dominators(g)
}

func TestDominatorPath(t *testing.T) {
	idom := domFixture()
	tests := []struct {
		name string
		node ObjID
		want []ObjID
	}{
		{name: "root", node: 1, want: []ObjID{1}},
		{name: "through diamond", node: 5, want: []ObjID{5, 4, 1}},
		{name: "second root", node: 9, want: []ObjID{9, 8}},
		{name: "unreachable", node: 6, want: nil},
		{name: "unknown", node: 42, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DominatorPath(idom, tt.node); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DominatorPath(%d) = %v, want %v", tt.node, got, tt.want)
			}
		})
	}
}

func TestIsDominated(t *testing.T) {
	idom := domFixture()
	tests := []struct {
		node, dominator ObjID
		want            bool
	}{
		{5, 5, true},
		{5, 4, true},
		{5, 1, true},
		{5, 0, true},
		{5, 2, false},
		{4, 3, false},
		{9, 1, false},
		{7, 0, false},
	}
	for _, tt := range tests {
		if got := IsDominated(idom, tt.node, tt.dominator); got != tt.want {
			t.Errorf("IsDominated(%d, %d) = %v, want %v", tt.node, tt.dominator, got, tt.want)
		}
	}
}

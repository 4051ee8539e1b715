// ABOUTME: Analyze command: loads a heap snapshot and explains what retains memory
// ABOUTME: Prints the largest retainers and the reference chains keeping an object alive

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prateek/astgc/graph"
	"github.com/prateek/astgc/heapdump"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type analyzeOptions struct {
	top      int
	paths    string
	maxPaths int
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <dump.json>",
		Short: "Report retained sizes and paths to roots for a heap snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.top, "top", 10, "number of largest retainers to list")
	f.StringVar(&opts.paths, "paths", "", "object id to explain")
	f.IntVar(&opts.maxPaths, "max-paths", 5, "maximum paths to print for --paths")
	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, path string, opts analyzeOptions) error {
	_, span := tracer.Start(ctx, "astgc.analyze", trace.WithAttributes(attribute.String("dump", path)))
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()

	g, err := heapdump.Open(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	span.SetAttributes(attribute.Int("objects", g.NumObjects()))

	var total uint64
	g.ForEachObject(func(o *graph.Object) { total += o.Size })
	roots := g.GetRoots()
	fmt.Fprintf(out, "%d objects, %d bytes, %d roots\n\n", g.NumObjects(), total, len(roots.IDs))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSELF\tRETAINED\tROOT")
	for _, r := range graph.TopRetained(g, opts.top) {
		var self uint64
		if obj := g.GetObject(r.ID); obj != nil {
			self = obj.Size
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", r.ID, r.Type, self, r.Size, roots.Labels[r.ID])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.paths == "" {
		return nil
	}
	id, err := strconv.ParseUint(opts.paths, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid object id %q: %w", opts.paths, err)
	}
	if g.GetObject(graph.ObjID(id)) == nil {
		return fmt.Errorf("object %d not in snapshot", id)
	}

	target := graph.ObjID(id)
	idom := graph.Dominators(g)
	paths := graph.PathsToRoots(g, target, opts.maxPaths)
	fmt.Fprintf(out, "\n%d path(s) to roots for %d (* dominates the target)\n", len(paths), id)
	for _, p := range paths {
		fmt.Fprintf(out, "  %s\n", formatPath(g, idom, target, p.IDs))
	}
	if chain := graph.DominatorPath(idom, target); len(chain) > 0 {
		fmt.Fprintf(out, "dominator chain: %s\n", formatPath(g, idom, target, chain))
	}
	return nil
}

// formatPath renders ids target-first, starring the objects that dominate
// target: dropping any one of them frees it.
func formatPath(g graph.Graph, idom map[graph.ObjID]graph.ObjID, target graph.ObjID, ids []graph.ObjID) string {
	labels := g.GetRoots().Labels
	parts := make([]string, len(ids))
	for i, id := range ids {
		typ := "?"
		if obj := g.GetObject(id); obj != nil {
			typ = obj.Type
		}
		parts[i] = fmt.Sprintf("%s#%d", typ, id)
		if id != target && graph.IsDominated(idom, target, id) {
			parts[i] += "*"
		}
		if i == len(ids)-1 && labels[id] != "" {
			parts[i] += " (" + labels[id] + ")"
		}
	}
	return strings.Join(parts, " <- ")
}

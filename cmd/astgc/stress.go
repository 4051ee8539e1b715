// ABOUTME: Stress workload: one collector per worker building and backtracking over trees
// ABOUTME: Verifies that untrail restores every speculative write across collections

package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"text/tabwriter"

	"github.com/prateek/astgc/gc"
	"github.com/prateek/astgc/heapdump"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("astgc.stress")

// Expression node kinds.
const (
	opAdd gc.NodeID = gc.KindUser + iota
	opMul
	opNeg
)

var kindNames = map[gc.NodeID]string{opAdd: "add", opMul: "mul", opNeg: "neg"}

var varNames = []string{"x", "y", "z", "w", "n", "m"}

type stressOptions struct {
	configPath string
	workers    int
	rounds     int
	keep       int
	depth      int
	seed       uint64
	dumpPath   string
}

func newStressCmd() *cobra.Command {
	opts := stressOptions{}
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run independent collectors under a build/search/backtrack workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "collector config YAML (defaults when empty)")
	f.IntVar(&opts.workers, "workers", 4, "number of workers, each with its own collector")
	f.IntVar(&opts.rounds, "rounds", 1000, "rounds per worker")
	f.IntVar(&opts.keep, "keep", 32, "expressions each model keeps alive")
	f.IntVar(&opts.depth, "depth", 6, "maximum expression depth")
	f.Uint64Var(&opts.seed, "seed", 1, "random seed")
	f.StringVar(&opts.dumpPath, "dump", "", "write a heap snapshot of worker 0 to this file")
	return cmd
}

func loadConfig(path string) (gc.Config, error) {
	if path == "" {
		return gc.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return gc.Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return gc.LoadConfig(f)
}

func runStress(ctx context.Context, out io.Writer, opts stressOptions) error {
	if opts.workers <= 0 || opts.rounds < 0 || opts.keep <= 0 || opts.depth <= 0 {
		return errors.New("workers, keep, and depth must be positive and rounds must not be negative")
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	var dump io.Writer
	if opts.dumpPath != "" {
		f, err := os.Create(opts.dumpPath)
		if err != nil {
			return fmt.Errorf("failed to create dump: %w", err)
		}
		defer f.Close()
		dump = f
	}

	metrics := gc.NewMetrics(prometheus.NewRegistry())
	results := make([]workerResult, opts.workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range opts.workers {
		g.Go(func() error {
			c := gc.New(
				gc.WithConfig(cfg),
				gc.WithMetrics(metrics),
				gc.WithKindNames(kindNames),
				gc.WithLogger(slog.Default().With(slog.Int("worker", w))),
			)
			wk := &worker{
				id:   w,
				opts: opts,
				rng:  rand.New(rand.NewPCG(opts.seed, uint64(w))),
				c:    c,
			}
			if w == 0 {
				wk.dump = dump
			}
			res, err := wk.run(ctx)
			results[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKER\tCYCLES\tFORCED\tALLOCS\tFREED\tLIVE\tMAX\tBACKTRACKS\tDROPPED")
	for _, r := range results {
		s := r.stats
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.worker, s.Cycles, s.ForcedCycles, s.Allocations, s.FreedObjects,
			s.LiveBytes, s.MaxBytes, r.backtracks, r.dropped)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if results[0].snapshotID != "" {
		fmt.Fprintf(out, "snapshot %s written to %s\n", results[0].snapshotID, opts.dumpPath)
	}
	return nil
}

type workerResult struct {
	worker     int
	stats      gc.Stats
	backtracks int
	dropped    int // dropped expressions observed as reclaimed
	snapshotID string
}

// model is the root participant of one worker: the expressions it keeps.
type model struct {
	exprs []gc.Ref
}

func (m *model) Mark(mk *gc.Marker) {
	for _, r := range m.exprs {
		mk.Mark(r)
	}
}

type worker struct {
	id   int
	opts stressOptions
	rng  *rand.Rand
	c    *gc.Collector
	dump io.Writer
}

func (wk *worker) run(ctx context.Context) (res workerResult, err error) {
	ctx, span := tracer.Start(ctx, "astgc.stress.worker",
		trace.WithAttributes(
			attribute.Int("worker", wk.id),
			attribute.Int("rounds", wk.opts.rounds),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	c := wk.c
	m := &model{}
	id := c.AddRoot(m)
	defer c.RemoveRoot(id)

	var dropped []*gc.WeakHandle
	defer func() {
		for _, h := range dropped {
			h.Release()
		}
	}()

	res.worker = wk.id
	for round := range wk.opts.rounds {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		m.exprs = append(m.exprs, wk.build(wk.opts.depth))
		if len(m.exprs) > wk.opts.keep {
			dropped = append(dropped, c.Weak(m.exprs[0]))
			m.exprs = m.exprs[1:]
		}

		if err := wk.search(m); err != nil {
			return res, fmt.Errorf("worker %d round %d: %w", wk.id, round, err)
		}
		res.backtracks++

		if round%64 == 63 {
			c.Trigger()
		}
	}
	c.Trigger()

	for _, h := range dropped {
		if !h.Alive() {
			res.dropped++
		}
	}
	for _, r := range m.exprs {
		if !c.Live(r) {
			return res, fmt.Errorf("worker %d: rooted expression %v was reclaimed", wk.id, r)
		}
	}

	if wk.dump != nil {
		meta, err := heapdump.WriteJSON(wk.dump, c.Snapshot())
		if err != nil {
			return res, err
		}
		res.snapshotID = meta.ID
		slog.Info("wrote heap snapshot", slog.String("id", meta.ID), slog.Int("worker", wk.id))
	}

	res.stats = c.Stats()
	span.SetAttributes(
		attribute.Int("cycles", res.stats.Cycles),
		attribute.Int("freed_objects", res.stats.FreedObjects),
		attribute.Int("max_bytes", res.stats.MaxBytes),
	)
	return res, nil
}

// build allocates a random expression. The lock keeps the partially built
// tree alive until the caller roots it.
func (wk *worker) build(depth int) gc.Ref {
	defer wk.c.Lock().Release()
	return wk.expr(depth)
}

func (wk *worker) expr(depth int) gc.Ref {
	c := wk.c
	if depth <= 1 || wk.rng.IntN(4) == 0 {
		return wk.leaf()
	}
	switch wk.rng.IntN(3) {
	case 0:
		return c.NewNode(opNeg, wk.expr(depth-1))
	case 1:
		return c.NewNode(opAdd, wk.expr(depth-1), wk.expr(depth-1))
	default:
		return c.NewNode(opMul, wk.expr(depth-1), wk.expr(depth-1))
	}
}

func (wk *worker) leaf() gc.Ref {
	if wk.rng.IntN(2) == 0 {
		return wk.c.Intern(varNames[wk.rng.IntN(len(varNames))])
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], wk.rng.Uint64())
	return wk.c.NewChunk(buf[:])
}

const maxSearchLocs = 64

// search rewrites child fields of one expression speculatively, in two
// nested checkpoints, and checks that backtracking restores every field.
// Fresh leaves allocated during the search may start cycles, so the
// replaced subtrees survive only through the trail.
func (wk *worker) search(m *model) error {
	c := wk.c
	target := m.exprs[wk.rng.IntN(len(m.exprs))]

	var locs []gc.Loc
	stack := []gc.Ref{target}
	for len(stack) > 0 && len(locs) < maxSearchLocs {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := range c.NumChildren(n) {
			locs = append(locs, gc.Loc{Node: n, Index: i})
			stack = append(stack, c.Child(n, i))
		}
	}
	if len(locs) == 0 {
		return nil
	}
	before := make([]gc.Ref, len(locs))
	for i, loc := range locs {
		before[i] = c.Child(loc.Node, loc.Index)
	}

	c.Mark()
	for range min(len(locs), 8) {
		wk.rewrite(m, locs[wk.rng.IntN(len(locs))])
	}
	c.Mark()
	wk.rewrite(m, locs[wk.rng.IntN(len(locs))])
	c.Untrail()
	c.Untrail()

	for i, loc := range locs {
		if got := c.Child(loc.Node, loc.Index); got != before[i] {
			return fmt.Errorf("%v holds %v after untrail, want %v", loc, got, before[i])
		}
	}
	return nil
}

func (wk *worker) rewrite(m *model, loc gc.Loc) {
	var v gc.Ref
	if wk.rng.IntN(2) == 0 {
		v = m.exprs[wk.rng.IntN(len(m.exprs))]
	} else {
		v = wk.leaf()
	}
	wk.c.Assign(loc, v)
}

// Package pagecore is the per-page orchestrator: it ties C1 (cdpreader) →
// C2 (compiler, which stamps C3 EIDs) → {C4 query, C5 factpack, C6 observe,
// C7 diff} → C8 render together behind a single page-level mutex, exactly
// the serialization §5 requires ("per-page operations are serialized by a
// page-level mutex").
//
// Grounded on domwatch.Watcher's ownership shape (one struct per watched
// page, owning its buffers under a single sync.Mutex) generalized from a
// mutation-record pipeline to this capture/compile/diff/render pipeline.
package pagecore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"

	"github.com/lespaceman/athena-browser-mcp-sub002/idgen"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/compiler"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/diff"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/factpack"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/observe"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/query"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/render"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// Config configures a PageCore.
type Config struct {
	Reader    cdpreader.Config
	Compiler  compiler.Config
	FactPack  factpack.Config
	Observe   observe.Config
	Budget    render.Budget
	Logger    *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// PageCore owns the full perception pipeline for a single page. Perceive,
// Find and the Act* methods take the page mutex, so concurrent tool calls
// against the same page serialize exactly as §5 requires; calls against
// different pages (different PageCore instances) interleave freely. Start
// and Close do not take the mutex.
type PageCore struct {
	pageID string
	page   *rod.Page
	cfg    Config

	mu     sync.Mutex
	reader *cdpreader.Reader
	acc    *observe.Accumulator
	obs    *observe.PageObserver
	prev   *snapshot.BaseSnapshot
}

// New creates a PageCore for page, wired with fresh per-page pipeline
// components. It does not start the in-page observer; call Start for that.
func New(pageID string, page *rod.Page, cfg Config) *PageCore {
	cfg.defaults()
	return &PageCore{
		pageID: pageID,
		page:   page,
		cfg:    cfg,
		reader: cdpreader.New(cfg.Reader),
		acc:    observe.NewAccumulator(cfg.Observe),
	}
}

// Start injects the in-page mutation observer. Best-effort: a broken
// observer never fails the page (§7 propagation policy iii).
func (pc *PageCore) Start() {
	pc.obs = observe.NewPageObserver(pc.page, pc.acc, pc.cfg.Logger)
	if err := pc.obs.Start(); err != nil {
		pc.cfg.Logger.Warn("pagecore: observer start failed", "page_id", pc.pageID, "error", err)
	}
}

// Close tears down the in-page observer and forgets this page's
// domain-enable tracking in the reader.
func (pc *PageCore) Close() {
	if pc.obs != nil {
		pc.obs.Stop()
	}
	pc.reader.Forget(pc.page)
}

// Perceive captures the current page, diffs it against the last emitted
// snapshot, joins accumulated observations, and renders the XML payload
// (§6: perceive-current-state). opts is the per-call dynamic configuration
// from the tool layer (§9); its zero value reproduces the PageCore's
// configured defaults.
func (pc *PageCore) Perceive(ctx context.Context, opts PerceiveOptions) (render.Output, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.captureAndRender(ctx, opts)
}

// captureAndRender is the core pipeline body, assumed to run under pc.mu.
// The previous snapshot is read at the start of the diff and only replaced
// at the very end, after the response has been fully constructed — the
// atomicity §5 requires ("the previous snapshot is read at the start of
// the diff and replaced at the end of rendering, all without awaiting in
// between").
func (pc *PageCore) captureAndRender(ctx context.Context, opts PerceiveOptions) (render.Output, error) {
	cap, err := pc.reader.Capture(ctx, pc.page, "")
	if err != nil {
		return render.Output{}, &Error{Kind: KindTransport, Reason: fmt.Sprintf("capture failed: %v", err), Err: err}
	}

	compiled := compiler.Compile(cap, pc.cfg.Compiler)
	snap := buildSnapshot(pc.pageID, cap, compiled)

	diffResult := diff.Compute(pc.prev, snap)
	facts := factpack.Extract(snap, opts.overlayFactPack(pc.cfg.FactPack))

	now := time.Now()
	duringAction, sincePrevious := pc.acc.Surfaced(now)

	out := render.Render(render.Input{
		Snapshot:              snap,
		Diff:                  diffResult,
		Facts:                 &facts,
		DuringAction:          duringAction,
		SincePrevious:         sincePrevious,
		Budget:                opts.overlayBudget(pc.cfg.Budget),
		IncludeDisabledFields: opts.IncludeDisabledFields,
		IncludeState:          opts.IncludeState,
	})

	pc.acc.DrainSincePrevious(now)
	pc.prev = snap

	return out, nil
}

// Find delegates to the Query Engine over the latest snapshot (§6:
// find-elements).
func (pc *PageCore) Find(req query.Request) (query.Result, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.prev == nil {
		return query.Result{}, &Error{Kind: KindResolution, Reason: "no snapshot captured yet for this page"}
	}
	return query.New(pc.prev).Find(req), nil
}

func buildSnapshot(pageID string, cap *cdpreader.Capture, compiled compiler.Result) *snapshot.BaseSnapshot {
	interactive := 0
	for i := range compiled.Nodes {
		if compiled.Nodes[i].IsInteractive() {
			interactive++
		}
	}

	return &snapshot.BaseSnapshot{
		SnapshotID: idgen.New(),
		URL:        cap.URL,
		Title:      cap.Title,
		CapturedAt: time.Now().UnixMilli(),
		DocumentID: cap.DocumentID,
		Viewport:   snapshot.Viewport{W: cap.Viewport.W, H: cap.Viewport.H, DPR: cap.Viewport.DPR},
		Nodes:      compiled.Nodes,
		Meta: snapshot.Meta{
			NodeCount:        len(compiled.Nodes),
			InteractiveCount: interactive,
		},
		Health: snapshot.CaptureHealth{
			AXDegraded:          cap.Health.AXDegraded,
			LayoutDegraded:      cap.Health.LayoutDegraded,
			CompileSkippedCount: compiled.SkippedCount,
		},
	}
}

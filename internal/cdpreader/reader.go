package cdpreader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultTimeout is the per-CDP-request timeout when Config.Timeout is
// unset (§5: "each CDP call has a timeout (default 2s per request,
// configurable)").
const DefaultTimeout = 2 * time.Second

// Config configures a Reader.
type Config struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Reader issues the minimal CDP request set per capture and tracks which
// domains have already been enabled on each page, so repeated captures
// never re-issue an enable call (§4.1).
type Reader struct {
	cfg Config

	mu      sync.Mutex
	enabled map[*rod.Page]*enabledDomains
}

type enabledDomains struct {
	dom, ax, css, runtime, page bool
}

// New creates a Reader.
func New(cfg Config) *Reader {
	cfg.defaults()
	return &Reader{cfg: cfg, enabled: make(map[*rod.Page]*enabledDomains)}
}

// Forget drops the enable-tracking state for a page, e.g. after it is
// closed, so the map doesn't grow unbounded across page lifetimes.
func (r *Reader) Forget(page *rod.Page) {
	r.mu.Lock()
	delete(r.enabled, page)
	r.mu.Unlock()
}

func (r *Reader) domainState(page *rod.Page) *enabledDomains {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.enabled[page]
	if !ok {
		d = &enabledDomains{}
		r.enabled[page] = d
	}
	return d
}

// ensureEnabled enables the domains this reader needs, at most once per
// page. Browser-domain enable is deliberately never attempted (§6: it
// doesn't support enable).
func (r *Reader) ensureEnabled(page *rod.Page) {
	d := r.domainState(page)
	if !d.dom {
		proto.DOMEnable{}.Call(page)
		d.dom = true
	}
	if !d.ax {
		proto.AccessibilityEnable{}.Call(page)
		d.ax = true
	}
	if !d.css {
		proto.CSSEnable{}.Call(page)
		d.css = true
	}
	if !d.runtime {
		proto.RuntimeEnable{}.Call(page)
		d.runtime = true
	}
	if !d.page {
		proto.PageEnable{}.Call(page)
		d.page = true
	}
}

// Capture reads the DOM tree, the full accessibility tree, and selective
// layout info for page, returning a fused Capture (§4.1 contract).
//
// The primary DOM tree failing is fatal to the call; AX and layout
// failures degrade gracefully into empty maps (§4.1, §7 propagation
// policy ii).
func (r *Reader) Capture(ctx context.Context, page *rod.Page, frameID string) (*Capture, error) {
	r.ensureEnabled(page)

	domCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	doc, err := proto.DOMGetDocument{Depth: intPtr(-1), Pierce: true}.Call(page.Context(domCtx))
	if err != nil {
		return nil, fmt.Errorf("cdpreader: DOM.getDocument: %w", err)
	}

	cap := &Capture{
		DomTree: make(map[int64]RawDomNode),
		AxTree:  make(map[int64]RawAxNode),
		Layouts: make(map[int64]NodeLayoutInfo),
	}

	walkDomTree(doc.Root, frameID, 0, cap)

	if info, err := page.Info(); err == nil {
		cap.URL = info.URL
		cap.Title = info.Title
	}

	axCtx, axCancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer axCancel()
	ax, err := proto.AccessibilityGetFullAXTree{}.Call(page.Context(axCtx))
	if err != nil {
		r.cfg.Logger.Warn("cdpreader: accessibility tree degraded", "error", err)
		cap.Health.AXDegraded = true
	} else {
		for _, n := range ax.Nodes {
			if n.BackendDOMNodeID == 0 {
				continue
			}
			cap.AxTree[int64(n.BackendDOMNodeID)] = axNodeFrom(n)
		}
	}
	for _, fid := range cap.FrameIDs {
		frameAX, err := proto.AccessibilityGetFullAXTree{FrameID: proto.PageFrameID(fid)}.Call(page.Context(axCtx))
		if err != nil {
			r.cfg.Logger.Warn("cdpreader: frame accessibility tree degraded", "frame", fid, "error", err)
			cap.Health.AXDegraded = true
			continue
		}
		for _, n := range frameAX.Nodes {
			if n.BackendDOMNodeID != 0 {
				cap.AxTree[int64(n.BackendDOMNodeID)] = axNodeFrom(n)
			}
		}
	}

	layoutCtx, layoutCancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer layoutCancel()
	if err := r.captureLayout(layoutCtx, page, cap); err != nil {
		r.cfg.Logger.Warn("cdpreader: layout degraded", "error", err)
		cap.Health.LayoutDegraded = true
	}

	if metrics, err := (proto.PageGetLayoutMetrics{}).Call(page.Context(ctx)); err == nil && metrics.CSSVisualViewport != nil {
		cap.Viewport = ViewportInfo{
			W:   int(metrics.CSSVisualViewport.ClientWidth),
			H:   int(metrics.CSSVisualViewport.ClientHeight),
			DPR: 1,
		}
	}

	cap.DocumentID = fmt.Sprintf("%d", doc.Root.NodeID)
	return cap, nil
}

// captureLayout computes a box model for every node in cap.DomTree; it does
// not narrow the set to interactive or readable candidates. Nodes whose box
// model cannot be resolved are skipped and the first such error is returned.
func (r *Reader) captureLayout(ctx context.Context, page *rod.Page, cap *Capture) error {
	var firstErr error
	for backendID := range cap.DomTree {
		model, err := proto.DOMGetBoxModel{BackendNodeID: proto.DOMBackendNodeID(backendID)}.Call(page.Context(ctx))
		if err != nil || model.Model == nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		bbox := quadToBBox(model.Model.Content)
		cap.Layouts[backendID] = NodeLayoutInfo{
			X: bbox.X, Y: bbox.Y, W: bbox.W, H: bbox.H,
			InViewport: true,
		}
	}
	return firstErr
}

type rawBBox struct{ X, Y, W, H int }

// quadToBBox converts a CDP content quad ([x0,y0, x1,y1, x2,y2, x3,y3]) to
// an axis-aligned bounding box.
func quadToBBox(quad []float64) rawBBox {
	if len(quad) < 8 {
		return rawBBox{}
	}
	minX, maxX := quad[0], quad[0]
	minY, maxY := quad[1], quad[1]
	for i := 0; i < 8; i += 2 {
		if quad[i] < minX {
			minX = quad[i]
		}
		if quad[i] > maxX {
			maxX = quad[i]
		}
		if quad[i+1] < minY {
			minY = quad[i+1]
		}
		if quad[i+1] > maxY {
			maxY = quad[i+1]
		}
	}
	return rawBBox{X: int(minX), Y: int(minY), W: int(maxX - minX), H: int(maxY - minY)}
}

func walkDomTree(node *proto.DOMNode, frameID string, parentID int64, cap *Capture) {
	if node == nil {
		return
	}

	fid := frameID
	if node.FrameID != "" {
		fid = string(node.FrameID)
	}

	raw := RawDomNode{
		BackendNodeID: int64(node.BackendNodeID),
		NodeID:        int64(node.NodeID),
		ParentID:      parentID,
		NodeType:      node.NodeType,
		NodeName:      node.NodeName,
		Attributes:    attrPairsToMap(node.Attributes),
		FrameID:       fid,
	}
	if node.NodeType == 3 { // text
		raw.TextContent = node.NodeValue
	}

	for _, child := range node.Children {
		raw.Children = append(raw.Children, int64(child.BackendNodeID))
	}
	cap.DomTree[raw.BackendNodeID] = raw

	if node.ContentDocument != nil {
		raw.ChildFrameID = string(node.ContentDocument.FrameID)
		cap.DomTree[raw.BackendNodeID] = raw
		cap.FrameIDs = append(cap.FrameIDs, raw.ChildFrameID)
		walkDomTree(node.ContentDocument, raw.ChildFrameID, raw.BackendNodeID, cap)
	}

	for _, child := range node.Children {
		walkDomTree(child, fid, raw.BackendNodeID, cap)
	}

	for _, sr := range node.ShadowRoots {
		cap.ShadowRoots = append(cap.ShadowRoots, int64(sr.BackendNodeID))
		walkDomTree(sr, fid, raw.BackendNodeID, cap)
		if shadowRaw, ok := cap.DomTree[int64(sr.BackendNodeID)]; ok {
			shadowRaw.ShadowHostID = raw.BackendNodeID
			cap.DomTree[shadowRaw.BackendNodeID] = shadowRaw
		}
	}
}

func attrPairsToMap(pairs []string) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return m
}

func axNodeFrom(n *proto.AccessibilityAXNode) RawAxNode {
	out := RawAxNode{
		BackendNodeID: int64(n.BackendDOMNodeID),
		Ignored:       n.Ignored,
		Properties:    make(map[string]string),
	}
	if n.Role != nil {
		out.Role = n.Role.Value.Str()
	}
	if n.Name != nil {
		out.Name = n.Name.Value.Str()
	}
	for _, p := range n.Properties {
		out.Properties[string(p.Name)] = p.Value.Value.Str()
	}
	return out
}

func intPtr(i int) *int { return &i }

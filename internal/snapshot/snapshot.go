package snapshot

// Viewport carries the captured viewport's dimensions and device pixel
// ratio, used both for screen-zone classification (§4.2) and for the
// diff engine's viewport-change atoms (§4.7).
type Viewport struct {
	W, H int
	DPR  float64
}

// Meta carries summary counters attached to a BaseSnapshot.
type Meta struct {
	NodeCount        int
	InteractiveCount int
}

// BaseSnapshot is the immutable, normalized capture of a single page at a
// single point in time (§3). Once built it is never mutated — the Snapshot
// Store replaces it wholesale, never patches it in place (invariant I4).
type BaseSnapshot struct {
	SnapshotID string
	URL        string
	Title      string
	CapturedAt int64 // epoch milliseconds
	DocumentID string // opaque CDP frame/document identity, used to detect navigation (§4.7)
	Viewport   Viewport
	Nodes      []ReadableNode
	Meta       Meta

	// Health degrades gracefully when an auxiliary tree failed to resolve
	// (§7 Capture-partial); it is surfaced via the renderer's `limitations`
	// attribute.
	Health CaptureHealth
}

// CaptureHealth records which auxiliary trees degraded during capture and
// how many individual nodes failed to compile (§7 propagation policy ii).
type CaptureHealth struct {
	AXDegraded           bool
	LayoutDegraded       bool
	CompileSkippedCount  int
}

// Degraded reports whether any part of the capture fell back to a reduced
// fidelity path.
func (h CaptureHealth) Degraded() bool {
	return h.AXDegraded || h.LayoutDegraded || h.CompileSkippedCount > 0
}

// NodeByEID returns the node with the given EID, or nil if absent. Linear
// scan is intentional: snapshots are built once per tool call and this is
// called a bounded number of times (action-target resolution, diff lookups)
// — a persistent index isn't worth the complexity for typical page sizes.
func (s *BaseSnapshot) NodeByEID(eid string) *ReadableNode {
	for i := range s.Nodes {
		if s.Nodes[i].NodeID == eid {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Actionables returns the subset of nodes that qualify as actionable
// (visible, enabled, interactive kind), in document order. When
// includeDisabled is true, disabled interactive nodes are included as well
// (§9: include_disabled_fields).
func (s *BaseSnapshot) Actionables(includeDisabled bool) []*ReadableNode {
	out := make([]*ReadableNode, 0, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		ok := n.IsActionable()
		if includeDisabled {
			ok = n.IsActionableAllowingDisabled()
		}
		if ok {
			out = append(out, n)
		}
	}
	return out
}

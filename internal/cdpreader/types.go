// Package cdpreader issues the minimal set of CDP requests needed per
// capture and fuses them into raw, backend-id-keyed maps for the compiler.
//
// Grounded on the teacher's browser/observer CDP usage
// (domwatch/internal/browser/tab.go, domwatch/internal/observer/cdpdom.go):
// go-rod's rod.Page + rod/lib/proto, domain auto-enable tracked per page,
// and a depth-unlimited DOM.getDocument pierce=true call exactly as
// observer.initDOMTracking does.
package cdpreader

// RawDomNode is the subset of a CDP DOM.Node this reader cares about,
// fused from DOM.getDocument (with shadow roots and iframe content
// documents already discovered and flattened into ChildFrameID/ShadowHost).
type RawDomNode struct {
	BackendNodeID int64
	NodeID        int64
	ParentID      int64
	NodeType      int
	NodeName      string
	Attributes    map[string]string
	TextContent   string // only set for text nodes
	FrameID       string
	ChildFrameID  string // set when this node is an <iframe> with a discovered content document
	ShadowHostID  int64  // set when this node is a shadow root; value is its host's backend id
	Children      []int64
}

// RawAxNode is the subset of a CDP Accessibility.AXNode this reader cares
// about, keyed the same way as RawDomNode.
type RawAxNode struct {
	BackendNodeID int64
	Role          string
	Name          string
	Ignored       bool
	Properties    map[string]string // AX property name -> stringified value, e.g. "checked" -> "true"/"false"/"mixed"
}

// NodeLayoutInfo is the subset of a node's box model + computed style this
// reader cares about.
type NodeLayoutInfo struct {
	X, Y, W, H int
	Display    string
	Visibility string
	ZIndex     int
	HasZIndex  bool
	// InViewport is set to true by Capture for every node whose box model
	// resolved; no intersection test against the viewport is made.
	InViewport bool
}

// Capture is the fused result of a single page read (§4.1 contract).
type Capture struct {
	DomTree     map[int64]RawDomNode
	AxTree      map[int64]RawAxNode
	Layouts     map[int64]NodeLayoutInfo
	FrameIDs    []string
	ShadowRoots []int64 // backend ids of discovered shadow root nodes

	// DocumentID identifies the captured document for navigation detection
	// (§4.7: diff emits mode=baseline when the document id changed).
	DocumentID string
	URL        string
	Title      string
	Viewport   ViewportInfo

	// Health records which auxiliary trees degraded (§4.1: "failures in
	// auxiliary trees degrade gracefully ... never fatal").
	Health Health
}

// ViewportInfo is the captured viewport geometry.
type ViewportInfo struct {
	W, H int
	DPR  float64
}

// Health flags which auxiliary trees failed to resolve during this capture.
type Health struct {
	AXDegraded     bool
	LayoutDegraded bool
}

// Package compiler fuses the raw DOM/AX/layout trees from cdpreader into
// the flat, normalized []snapshot.ReadableNode list every downstream
// stage consumes (§4.2).
//
// Grounded on the teacher's profiler package (domwatch/internal/profiler):
// profiler.Profile orchestrates a sequence of small, named analysis steps
// (findLandmarks, computeTextDensity, computeFingerprint, observeZones)
// over a single DOM read and assembles one result struct — Compile follows
// the same shape, composing classify/region/group/heading/state/attrs.
package compiler

import (
	"sort"
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/eid"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// Config configures the compiler.
type Config struct {
	Sanitizer *Sanitizer
}

func (c *Config) defaults() {
	if c.Sanitizer == nil {
		c.Sanitizer = NewSanitizer()
	}
}

// Result is the compiler's output: the flat node list plus a count of
// nodes that failed to compile (§7 Compile-partial: "counted, not
// surfaced individually").
type Result struct {
	Nodes        []snapshot.ReadableNode
	SkippedCount int
}

// Compile fuses cap into a flat, filtered, EID-stamped node list.
// Compilation of an individual node never aborts the compile — malformed
// subtrees are skipped with a counter (§4.2 failure semantics).
func Compile(cap *cdpreader.Capture, cfg Config) Result {
	cfg.defaults()

	order := documentOrder(cap.DomTree)

	axRoleOf := func(backendID int64) string {
		return strings.ToLower(cap.AxTree[backendID].Role)
	}
	gw := &groupingWalker{dom: cap.DomTree, axRoleOf: axRoleOf}

	vp := snapshot.Viewport{W: cap.Viewport.W, H: cap.Viewport.H, DPR: cap.Viewport.DPR}

	ht := &headingTracker{}
	var result Result
	assigner := eid.NewOrdinalAssigner()

	for _, item := range order {
		func() {
			defer func() {
				if r := recover(); r != nil {
					result.SkippedCount++
				}
			}()

			node, ok := cap.DomTree[item.backendID]
			if !ok {
				result.SkippedCount++
				return
			}
			if node.NodeType != 1 { // element nodes only; text handled via visibleText lookups
				return
			}

			ax := cap.AxTree[item.backendID]
			tag := strings.ToLower(node.NodeName)
			domRole := strings.ToLower(node.Attributes["role"])
			axRole := strings.ToLower(ax.Role)
			kind := classify(axRole, tag, domRole, strings.ToLower(node.Attributes["type"]))

			isHeading := kind == snapshot.KindHeading
			headingCtx := ht.enter(item.depth, isHeading, visibleTextOf(cap.DomTree, item.backendID))
			defer ht.exit(item.depth)

			if ax.Ignored && kind != kindStructural {
				return
			}

			region := regionOf(cap.DomTree, item.backendID, axRole)
			innerSlugBase, groupID, groupPath := gw.resolve(item.backendID, headingCtx, func(id int64) string {
				return labelOf(cap.DomTree[id], cap.AxTree[id], snapshot.KindGeneric, visibleTextOf(cap.DomTree, id))
			})
			_ = innerSlugBase

			label := labelOf(node, ax, kind, visibleTextOf(cap.DomTree, item.backendID))

			var layoutPtr *cdpreader.NodeLayoutInfo
			if l, ok := cap.Layouts[item.backendID]; ok {
				layoutPtr = &l
			}
			state := extractState(node, ax, layoutPtr)

			bbox := snapshot.BBox{}
			var layout snapshot.Layout
			if layoutPtr != nil {
				bbox = snapshot.BBox{X: layoutPtr.X, Y: layoutPtr.Y, W: layoutPtr.W, H: layoutPtr.H}
				layout = snapshot.Layout{
					BBox:       bbox,
					Display:    layoutPtr.Display,
					Visibility: layoutPtr.Visibility,
					ZIndex:     layoutPtr.ZIndex,
					HasZIndex:  layoutPtr.HasZIndex,
					ScreenZone: screenZone(bbox, vp),
				}
			}

			attrs := extractAttributes(node, kind, cfg.Sanitizer)

			shadowPath := shadowPathOf(cap.DomTree, item.backendID)

			bucket := eid.Bucket{Region: region, GroupID: groupID, Kind: kind, Label: label}
			ordinal := assigner.Next(bucket)

			nodeID := eid.Compute(eid.Input{
				Kind:           kind,
				Label:          label,
				FrameID:        node.FrameID,
				Region:         region,
				GroupID:        groupID,
				HeadingContext: headingCtx,
				ShadowPath:     shadowPath,
				Ordinal:        ordinal,
			})

			rn := snapshot.ReadableNode{
				NodeID:        nodeID,
				BackendNodeID: item.backendID,
				FrameID:       node.FrameID,
				Kind:          kind,
				Label:         label,
				Where: snapshot.Where{
					Region:         region,
					GroupID:        groupID,
					GroupPath:      groupPath,
					HeadingContext: headingCtx,
				},
				Layout:     layout,
				State:      state,
				Attributes: attrs,
				DocOrder:   item.order,
				ShadowPath: shadowPath,
			}

			if kind.IsStructural() {
				return // region/landmark carriers are never emitted themselves
			}
			if isDecorative(rn) {
				return
			}

			result.Nodes = append(result.Nodes, rn)
		}()
	}

	return result
}

type orderItem struct {
	backendID int64
	depth     int
	order     int
}

// documentOrder performs a pre-order DFS over the DOM tree rooted at any
// node with ParentID == 0 (document roots, including discovered frame
// documents and shadow roots, which cdpreader links via ParentID/
// ShadowHostID), producing document order with depth, bounded against
// cycles the same way ancestor walks are (§9 design notes).
func documentOrder(dom map[int64]cdpreader.RawDomNode) []orderItem {
	children := make(map[int64][]int64)
	roots := []int64{}
	for id, n := range dom {
		if n.ParentID != 0 {
			children[n.ParentID] = append(children[n.ParentID], id)
		} else {
			roots = append(roots, id)
		}
	}
	for _, kids := range children {
		sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	var out []orderItem
	seen := make(map[int64]bool, len(dom))
	var walk func(id int64, depth int)
	walk = func(id int64, depth int) {
		if seen[id] || depth > 4096 {
			return
		}
		seen[id] = true
		out = append(out, orderItem{backendID: id, depth: depth, order: len(out)})
		for _, c := range children[id] {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}

// visibleTextOf concatenates the direct and descendant text-node content
// of backendID, trimmed — used for heading/link label fallback (§4.2 step
// 2) and for heading-context tracking.
func visibleTextOf(dom map[int64]cdpreader.RawDomNode, backendID int64) string {
	node, ok := dom[backendID]
	if !ok {
		return ""
	}
	if node.NodeType == 3 {
		return strings.TrimSpace(node.TextContent)
	}
	var b strings.Builder
	var walk func(int64, int)
	walk = func(id int64, depth int) {
		if depth > 20 {
			return
		}
		n, ok := dom[id]
		if !ok {
			return
		}
		if n.NodeType == 3 {
			if t := strings.TrimSpace(n.TextContent); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(backendID, 0)
	return strings.TrimSpace(b.String())
}

// shadowPathOf returns the outermost-first sequence of shadow-host backend
// ids enclosing backendID (§4.3).
func shadowPathOf(dom map[int64]cdpreader.RawDomNode, backendID int64) []int64 {
	var path []int64
	ancestors(dom, backendID, func(a cdpreader.RawDomNode) bool {
		if a.ShadowHostID != 0 {
			path = append(path, a.ShadowHostID)
		}
		return false
	})
	// ancestors walks nearest-first; reverse for outermost-first (§4.3).
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

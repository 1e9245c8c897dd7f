package compiler

import "github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"

// maxAncestryDepth bounds ancestor walks so a malformed or cyclic parent
// chain can never spin the compiler forever (§4.2 step 3: "capped at 50
// levels"; §9 design notes: "traversal uses a visited set bounded to a
// fixed depth to avoid cycles").
const maxAncestryDepth = 50

// ancestors walks backendID's parent chain, calling visit for each
// ancestor (nearest first), stopping when visit returns true, the chain is
// exhausted, a node repeats (cycle guard), or maxAncestryDepth is reached.
func ancestors(dom map[int64]cdpreader.RawDomNode, backendID int64, visit func(cdpreader.RawDomNode) bool) {
	seen := make(map[int64]bool, maxAncestryDepth)
	cur, ok := dom[backendID]
	if !ok {
		return
	}
	for depth := 0; depth < maxAncestryDepth; depth++ {
		parentID := cur.ParentID
		if parentID == 0 || seen[parentID] {
			return
		}
		seen[parentID] = true
		parent, ok := dom[parentID]
		if !ok {
			return
		}
		if visit(parent) {
			return
		}
		cur = parent
	}
}

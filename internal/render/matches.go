package render

import "github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"

// MatchedNode pairs a node with its query relevance score, the shape
// find-elements renders (§6: "find-elements: delegates to the Query Engine
// over the latest snapshot").
type MatchedNode struct {
	Node  *snapshot.ReadableNode
	Score float64
}

// RenderMatches renders a <matches> document, reusing the same per-node
// element shape perceive-current-state's <actionables> uses so the agent
// sees one consistent node representation across tools.
func RenderMatches(matches []MatchedNode, suggestions []*snapshot.ReadableNode) string {
	w := newWriter()
	close := w.open("matches", intAttrNonZero("count", len(matches)))
	for _, m := range matches {
		closeM := w.open("match", floatAttr("score", m.Score))
		w.renderNode(m.Node)
		closeM()
	}
	if len(suggestions) > 0 {
		closeS := w.open("suggestions")
		for _, n := range suggestions {
			w.renderNode(n)
		}
		closeS()
	}
	close()
	return w.String()
}

package compiler

import (
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// labelOf computes a node's accessible label: AX computed name, else
// aria-label, else trimmed visible text (for headings/links), else empty
// (§4.2 step 2).
func labelOf(dom cdpreader.RawDomNode, ax cdpreader.RawAxNode, kind snapshot.NodeKind, visibleText string) string {
	if name := strings.TrimSpace(ax.Name); name != "" {
		return cleanText(name)
	}
	if label := strings.TrimSpace(dom.Attributes["aria-label"]); label != "" {
		return cleanText(label)
	}
	if kind == snapshot.KindHeading || kind == snapshot.KindLink {
		if t := strings.TrimSpace(visibleText); t != "" {
			return cleanText(t)
		}
	}
	return ""
}

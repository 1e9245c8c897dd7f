package compiler

import (
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"
)

// maxGroupSlugLen truncates the innermost group_id slug (§4.2 step 4).
const maxGroupSlugLen = 40

// groupingTags and groupingRoles are the fixed grouping set of roles/tags
// walked when collecting ancestors for group_id/group_path (§4.2 step 4).
var groupingTags = map[string]bool{
	"form": true, "ul": true, "ol": true, "menu": true, "nav": true,
	"table": true, "fieldset": true, "article": true, "section": true,
}

var groupingRoles = map[string]bool{
	"form": true, "list": true, "menu": true, "navigation": true,
	"table": true, "tablist": true, "radiogroup": true, "region": true,
}

// groupAncestor is one matched ancestor in the grouping walk.
type groupAncestor struct {
	tag     string
	axRole  string
	domRole string
}

func (g groupAncestor) matches() bool {
	if g.axRole != "" && groupingRoles[g.axRole] {
		return true
	}
	if g.domRole != "" && groupingRoles[g.domRole] {
		return true
	}
	return groupingTags[g.tag]
}

func (g groupAncestor) roleSlug() string {
	if g.axRole != "" && groupingRoles[g.axRole] {
		return g.axRole
	}
	if g.domRole != "" && groupingRoles[g.domRole] {
		return g.domRole
	}
	return g.tag
}

// groupingWalker resolves the nearest- and outermost-first chain of
// grouping ancestors for a node (§4.2 step 4). axRoleOf looks up a backend
// id's AX role, since the grouping set includes AX-only roles like
// "tablist"/"radiogroup" that have no corresponding DOM tag.
type groupingWalker struct {
	dom      map[int64]cdpreader.RawDomNode
	axRoleOf func(int64) string
}

// resolve returns the innermost group's (tag/role, name-or-heading-or-id)
// pair and the outermost-first list of named ancestors for group_path.
func (gw *groupingWalker) resolve(backendID int64, headingContext string, nameOf func(int64) string) (innerSlugBase, innerID string, path []string) {
	type match struct {
		backendID int64
		slugBase  string
	}
	var chain []match

	ancestors(gw.dom, backendID, func(a cdpreader.RawDomNode) bool {
		ga := groupAncestor{tag: strings.ToLower(a.NodeName), axRole: gw.axRoleOf(a.BackendNodeID), domRole: strings.ToLower(a.Attributes["role"])}
		if ga.matches() {
			chain = append(chain, match{backendID: a.BackendNodeID, slugBase: ga.roleSlug()})
		}
		return false
	})

	if len(chain) == 0 {
		return "", "", nil
	}

	inner := chain[0]
	name := nameOf(inner.backendID)
	if name == "" {
		name = headingContext
	}
	if name == "" {
		name = itoa(inner.backendID)
	}
	innerID = slugify(inner.slugBase + "-" + name)

	// group_path is outermost-first named ancestors (§3: "outermost-first
	// names of named ancestors").
	for i := len(chain) - 1; i >= 0; i-- {
		n := nameOf(chain[i].backendID)
		if n == "" {
			continue
		}
		path = append(path, n)
	}

	return chain[0].slugBase, innerID, path
}

// slugify lower-cases, collapses non-alphanumeric runs to a single hyphen,
// trims leading/trailing hyphens, and truncates to maxGroupSlugLen.
func slugify(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxGroupSlugLen {
		out = strings.TrimRight(out[:maxGroupSlugLen], "-")
	}
	return out
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

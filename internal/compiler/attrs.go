package compiler

import (
	"strconv"
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// extractAttributes builds the kind-conditioned, sanitized attribute
// record (§4.2 step 7): href only for links, input_type/value only for
// form controls, etc.
func extractAttributes(dom cdpreader.RawDomNode, kind snapshot.NodeKind, sanitizer *Sanitizer) snapshot.Attributes {
	a := snapshot.Attributes{
		Role: strings.ToLower(dom.Attributes["role"]),
	}

	switch kind {
	case snapshot.KindLink:
		if href := dom.Attributes["href"]; href != "" {
			a.Href = sanitizer.SanitizeURL(href)
		}
	case snapshot.KindImage:
		a.Alt = cleanText(dom.Attributes["alt"])
		a.Src = dom.Attributes["src"]
	case snapshot.KindForm:
		a.Action = dom.Attributes["action"]
		a.Method = strings.ToUpper(dom.Attributes["method"])
		if a.Method == "" {
			a.Method = "GET"
		}
	}

	if kind == snapshot.KindInput || kind == snapshot.KindTextbox || kind == snapshot.KindSearchbox || kind == snapshot.KindTextarea {
		a.InputType = strings.ToLower(dom.Attributes["type"])
		if a.InputType == "" && kind == snapshot.KindTextarea {
			a.InputType = "textarea"
		}
		a.Placeholder = cleanText(dom.Attributes["placeholder"])
		a.Autocomplete = strings.ToLower(dom.Attributes["autocomplete"])
		a.Value = RedactIfSensitive(a.InputType, dom.Attributes["value"])
	}

	if v := dom.Attributes["data-testid"]; v != "" {
		a.TestID = v
	} else if v := dom.Attributes["data-test-id"]; v != "" {
		a.TestID = v
	}

	if kind == snapshot.KindHeading {
		a.HeadingLevel = headingLevel(dom.NodeName)
	}

	return a
}

func headingLevel(tag string) int {
	tag = strings.ToLower(tag)
	if len(tag) == 2 && tag[0] == 'h' {
		if n, err := strconv.Atoi(tag[1:2]); err == nil && n >= 1 && n <= 6 {
			return n
		}
	}
	return 0
}

// isDecorative reports whether a node carries no label, no state signal,
// no interactive role, and no structural function — such nodes are
// dropped by the compiler's filter step (§4.2 step 8).
func isDecorative(n snapshot.ReadableNode) bool {
	if n.Kind.IsStructural() {
		return false // kept as region carrier; filtered separately
	}
	if n.IsInteractive() {
		return false
	}
	if n.Label != "" {
		return false
	}
	if n.Kind == snapshot.KindHeading || n.Kind == snapshot.KindDialog || n.Kind == snapshot.KindForm || n.Kind == snapshot.KindNavigation {
		return false
	}
	if n.State.Required || n.State.Invalid || n.State.Focused {
		return false
	}
	return true
}

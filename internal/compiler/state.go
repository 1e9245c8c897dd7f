package compiler

import (
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// extractState builds a node's sparse State record. AX properties take
// priority; DOM boolean attributes and aria-* fallbacks fill gaps not
// covered by AX; AX tristate checked maps true/false/undefined, mixed
// mapping to undefined (§4.2 step 6).
func extractState(dom cdpreader.RawDomNode, ax cdpreader.RawAxNode, layout (*cdpreader.NodeLayoutInfo)) snapshot.State {
	s := snapshot.State{
		Enabled: true, // absence of disabled means enabled
	}

	if layout != nil {
		s.Visible = layout.InViewport && layout.Display != "none" && layout.Visibility != "hidden"
	} else {
		// "absent layout defaults to visible" (§4.2 step 6).
		s.Visible = true
	}

	if v, ok := ax.Properties["disabled"]; ok {
		s.Enabled = v != "true"
	} else if hasAttr(dom, "disabled") || dom.Attributes["aria-disabled"] == "true" {
		s.Enabled = false
	}

	if v, ok := ax.Properties["checked"]; ok {
		switch v {
		case "true":
			b := true
			s.Checked = &b
		case "false":
			b := false
			s.Checked = &b
		// "mixed" and anything else: leave undefined (tristate -> undefined).
		}
	} else if domChecked, ok := dom.Attributes["checked"]; ok {
		b := domChecked != "false"
		s.Checked = &b
	} else if v := dom.Attributes["aria-checked"]; v == "true" || v == "false" {
		b := v == "true"
		s.Checked = &b
	}

	if v, ok := ax.Properties["expanded"]; ok {
		b := v == "true"
		s.Expanded = &b
	} else if v, ok := dom.Attributes["aria-expanded"]; ok {
		b := v == "true"
		s.Expanded = &b
	}

	if v, ok := ax.Properties["selected"]; ok {
		b := v == "true"
		s.Selected = &b
	} else if v, ok := dom.Attributes["aria-selected"]; ok {
		b := v == "true"
		s.Selected = &b
	}

	if v, ok := ax.Properties["focused"]; ok {
		s.Focused = v == "true"
	}

	s.Required = hasAttr(dom, "required") || dom.Attributes["aria-required"] == "true"
	s.Invalid = dom.Attributes["aria-invalid"] == "true"
	s.Readonly = hasAttr(dom, "readonly") || dom.Attributes["aria-readonly"] == "true"

	return s
}

func hasAttr(dom cdpreader.RawDomNode, name string) bool {
	_, ok := dom.Attributes[name]
	return ok
}

// screenZone classifies a bbox against the viewport into a ScreenZone.
func screenZone(box snapshot.BBox, vp snapshot.Viewport) snapshot.ScreenZone {
	if vp.H == 0 {
		return ""
	}
	mid := box.Y + box.H/2
	third := vp.H / 3
	switch {
	case mid < third:
		return snapshot.ZoneAboveFold
	case mid > vp.H-third:
		return snapshot.ZoneBelowFold
	default:
		return snapshot.ZoneCenter
	}
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

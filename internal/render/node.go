package render

import "github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"

// renderNode writes one ReadableNode as an element tagged with its kind
// (§4.8: "element kind is the tag name; label is element content"),
// where.* and layout.bbox flattened onto the root tag, and the sparse
// state record flattened with default-value elision.
func (w *writer) renderNode(n *snapshot.ReadableNode) {
	attrs := []attr{
		strAttr("eid", n.NodeID),
		strAttr("region", string(n.Where.Region)),
		strAttr("group", n.Where.GroupID),
		strAttr("path", joinPath(n.Where.GroupPath)),
	}
	attrs = append(attrs, bboxAttrs(n.Layout.BBox)...)
	if w.includeState {
		attrs = append(attrs,
			boolAttrUnlessDefault("visible", n.State.Visible, true),
			boolAttrUnlessDefault("enabled", n.State.Enabled, true),
			boolPtrAttr("checked", n.State.Checked),
			boolPtrAttr("selected", n.State.Selected),
			boolPtrAttr("expanded", n.State.Expanded),
			boolAttrUnlessDefault("focused", n.State.Focused, false),
			boolAttrUnlessDefault("required", n.State.Required, false),
			boolAttrUnlessDefault("invalid", n.State.Invalid, false),
		)
	}
	attrs = append(attrs,
		strAttr("display", n.Layout.Display),
		strAttr("zone", string(n.Layout.ScreenZone)),
		strAttr("heading", n.Where.HeadingContext),
	)
	if n.Attributes.Value != "" {
		attrs = append(attrs, strAttr("value", n.Attributes.Value))
	}
	if n.Attributes.Href != "" {
		attrs = append(attrs, strAttr("href", sanitizeHref(n.Attributes.Href)))
	}
	if n.Attributes.InputType != "" {
		attrs = append(attrs, strAttr("input_type", n.Attributes.InputType))
	}
	if n.Attributes.Placeholder != "" {
		attrs = append(attrs, strAttr("placeholder", n.Attributes.Placeholder))
	}

	tag := string(n.Kind)
	if n.Label == "" {
		w.selfClose(tag, attrs...)
		return
	}
	close := w.open(tag, attrs...)
	w.text(n.Label)
	close()
}

// bboxAttrs emits x/y/w/h for n's bounding box, omitting all four when the
// box is the zero value (the node had no layout captured at all), per the
// token-minimizing elision §4.8 applies to the rest of the state record.
// A box with some individual zero coordinate (e.g. flush against the
// viewport's top edge) is still real geometry and is emitted as-is.
func bboxAttrs(b snapshot.BBox) []attr {
	if b == (snapshot.BBox{}) {
		return nil
	}
	return []attr{
		intAttr("x", b.X),
		intAttr("y", b.Y),
		intAttr("w", b.W),
		intAttr("h", b.H),
	}
}

func joinPath(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "/" + p
	}
	return out
}

// maxHrefLen and the sensitive query-param elision are applied upstream by
// the attribute extractor (§4.2 step 7); sanitizeHref here only enforces
// the length cap at the render boundary in case a longer value reaches
// this layer some other way (§7: "truncated to ≤ ~200 characters").
const maxHrefLen = 200

func sanitizeHref(href string) string {
	r := []rune(href)
	if len(r) <= maxHrefLen {
		return href
	}
	return string(r[:maxHrefLen]) + "..."
}

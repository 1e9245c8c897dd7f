// Package snapshot defines the normalized, fused representation of a page
// used by every downstream stage: the flat list of ReadableNodes that make
// up a BaseSnapshot. Nothing in this package talks to CDP or the browser —
// it is the pure data model the compiler produces and everything else
// (query, factpack, diff, render) consumes.
package snapshot

// NodeKind is the closed set of element kinds a ReadableNode can carry.
type NodeKind string

const (
	KindButton     NodeKind = "button"
	KindLink       NodeKind = "link"
	KindInput      NodeKind = "input"
	KindTextbox    NodeKind = "textbox"
	KindSearchbox  NodeKind = "searchbox"
	KindCombobox   NodeKind = "combobox"
	KindSelect     NodeKind = "select"
	KindCheckbox   NodeKind = "checkbox"
	KindRadio      NodeKind = "radio"
	KindSwitch     NodeKind = "switch"
	KindSlider     NodeKind = "slider"
	KindMenuItem   NodeKind = "menuitem"
	KindOption     NodeKind = "option"
	KindTab        NodeKind = "tab"
	KindTextarea   NodeKind = "textarea"
	KindHeading    NodeKind = "heading"
	KindParagraph  NodeKind = "paragraph"
	KindText       NodeKind = "text"
	KindImage      NodeKind = "image"
	KindList       NodeKind = "list"
	KindListItem   NodeKind = "listitem"
	KindTable      NodeKind = "table"
	KindForm       NodeKind = "form"
	KindDialog     NodeKind = "dialog"
	KindNavigation NodeKind = "navigation"
	KindGeneric    NodeKind = "generic"

	// kindStructural is an internal-only pseudo-kind: landmark nodes kept
	// solely as region carriers, filtered out of the emitted node list
	// by the compiler (§4.2 step 8) but useful while resolving ancestry.
	kindStructural NodeKind = "structural"
)

// IsStructural reports whether k is the internal landmark-carrier kind.
func (k NodeKind) IsStructural() bool { return k == kindStructural }

// InteractiveKinds is the closed set of kinds that can appear in
// actionables (§3 glossary: "Actionable — a visible, enabled node of an
// interactive kind").
var InteractiveKinds = map[NodeKind]bool{
	KindButton:    true,
	KindLink:      true,
	KindInput:     true,
	KindTextbox:   true,
	KindSearchbox: true,
	KindCombobox:  true,
	KindSelect:    true,
	KindCheckbox:  true,
	KindRadio:     true,
	KindSwitch:    true,
	KindSlider:    true,
	KindMenuItem:  true,
	KindOption:    true,
	KindTab:       true,
	KindTextarea:  true,
}

// SemanticRegion is the closed set of page regions a node can be resolved
// into (§3).
type SemanticRegion string

const (
	RegionHeader  SemanticRegion = "header"
	RegionNav     SemanticRegion = "nav"
	RegionMain    SemanticRegion = "main"
	RegionAside   SemanticRegion = "aside"
	RegionFooter  SemanticRegion = "footer"
	RegionDialog  SemanticRegion = "dialog"
	RegionForm    SemanticRegion = "form"
	RegionSearch  SemanticRegion = "search"
	RegionUnknown SemanticRegion = "unknown"
)

// ScreenZone classifies where in the viewport a node's bounding box falls.
type ScreenZone string

const (
	ZoneAboveFold ScreenZone = "above-fold"
	ZoneBelowFold ScreenZone = "below-fold"
	ZoneCenter    ScreenZone = "center"
)

// Where locates a node within the page's semantic structure.
type Where struct {
	Region          SemanticRegion
	GroupID         string
	GroupPath       []string
	HeadingContext  string
}

// BBox is an axis-aligned bounding box in CSS pixels, integer-rounded at
// emission time per §4.7 ("numeric coordinates in emitted layout are
// rounded to integers").
type BBox struct {
	X, Y, W, H int
}

// Layout carries the node's geometry and visual stacking.
type Layout struct {
	BBox       BBox
	Display    string
	Visibility string
	ZIndex     int
	HasZIndex  bool
	ScreenZone ScreenZone
}

// State is a sparse boolean record. Pointer fields distinguish "false" from
// "not applicable to this kind of node" (§3: "sparse boolean record").
type State struct {
	Visible  bool
	Enabled  bool
	Checked  *bool
	Expanded *bool
	Selected *bool
	Focused  bool
	Required bool
	Invalid  bool
	Readonly bool
}

// Attributes is the bounded, sanitized attribute record (§3, §4.2 step 7).
type Attributes struct {
	InputType    string
	Placeholder  string
	Value        string
	Href         string
	Alt          string
	Src          string
	HeadingLevel int
	Action       string
	Method       string
	Autocomplete string
	TestID       string
	Role         string
}

// ReadableNode is the atomic unit of perception (§3).
type ReadableNode struct {
	NodeID        string // the EID, content-addressed (§4.3)
	BackendNodeID int64  // opaque CDP handle; action dispatch only
	FrameID       string

	Kind  NodeKind
	Label string

	Where  Where
	Layout Layout
	State  State

	Attributes Attributes

	// DocOrder is the node's position in document order within its frame;
	// used as the ordinal tiebreak input to EID computation (§4.3) and for
	// stable output sorting where not otherwise specified.
	DocOrder int

	// ShadowPath is the outermost-first sequence of shadow-host backend ids
	// enclosing this node, empty when the node is not shadow-scoped (§4.3).
	ShadowPath []int64
}

// IsInteractive reports whether the node's kind is one of the interactive
// kinds, independent of visibility/enabled state.
func (n *ReadableNode) IsInteractive() bool {
	return InteractiveKinds[n.Kind]
}

// IsActionable reports whether the node qualifies as an actionable: visible,
// enabled, and of an interactive kind (glossary: Actionable).
func (n *ReadableNode) IsActionable() bool {
	return n.IsInteractive() && n.State.Visible && n.State.Enabled
}

// IsActionableAllowingDisabled is IsActionable without the enabled
// requirement, used when a caller opts into seeing disabled fields
// alongside the usual actionable set (§9: include_disabled_fields).
func (n *ReadableNode) IsActionableAllowingDisabled() bool {
	return n.IsInteractive() && n.State.Visible
}

// Package observe accumulates transient DOM mutations reported by an
// in-page observer across action boundaries and scores their significance
// (§4.6).
//
// Grounded on the teacher's observer package
// (domwatch/internal/observer/{observer.go,dedup.go,debounce.go}): the
// dual CDP+injected-JS source model, the rawRecord{source,at} shape, and
// the dedup machinery are reused near verbatim (this package has no
// debouncer), re-keyed from XPath to (tag, text, kind) and generalized from
// arbitrary mutation ops to the
// appeared/disappeared/text-changed observation shape this spec defines.
package observe

// Kind is the closed set of observation types (§3 glossary: "a DOM
// subtree appeared, disappeared, or changed text").
type Kind string

const (
	KindAppeared      Kind = "appeared"
	KindDisappeared   Kind = "disappeared"
	KindTextChanged   Kind = "text-changed"
	KindStatusChanged Kind = "status"
)

// Signals is the twelve-signal significance model (§3, §4.6).
type Signals struct {
	HasAlertRole             bool
	HasAriaLive              bool
	IsDialog                 bool
	IsFixedOrSticky          bool
	HasHighZIndex            bool
	CoversSignificantViewport bool
	IsBodyDirectChild        bool
	ContainsInteractiveElements bool
	IsVisibleInViewport      bool
	HasNonTrivialText        bool
	AppearedAfterDelay       bool
	WasShortLived            bool
}

// Content is the minimal content snapshot carried by an observation, used
// for rendering and for the (tag, text) dedup key.
type Content struct {
	Tag             string
	Role            string
	Text            string
	HasInteractives bool
}

// maxTextLen is the character cap text is truncated to, with a trailing
// ellipsis (§4.6: "truncates text to a fixed character cap (e.g., 100)").
const maxTextLen = 100

// Observation is a single accumulated, scored DOM event (§3 glossary).
type Observation struct {
	Type        Kind
	Significance int
	Signals     Signals
	Content     Content

	TimestampMs int64
	AgeMs       *int64
	DurationMs  *int64

	// Reported marks whether this observation has already been emitted in
	// a prior response; it is retained briefly afterward so age/duration
	// can still be updated (§4.6).
	Reported bool

	// EIDHint, when non-empty, is the EID of the node this observation
	// concerns, when one could be resolved (e.g. an appear/disappear of a
	// node the compiler also captured this cycle).
	EIDHint string
}

func truncateText(s string) string {
	r := []rune(s)
	if len(r) <= maxTextLen {
		return s
	}
	return string(r[:maxTextLen]) + "..."
}

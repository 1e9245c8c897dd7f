// Package diff computes per-page incremental diffs between successive
// snapshots (§4.7). New relative to the teacher: domwatch's mutation
// stream is itself a replacement for diffing, not a snapshot-to-snapshot
// diff. Grounded on the *shape* of the teacher's mutation.Batch/Record
// (typed-op records carrying old/new fields), generalized here from
// DOM-mutation records to state-diff records.
package diff

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// Mode is the top-level shape a diff result takes (§4.7, §3 glossary:
// "Baseline / Diff mode").
type Mode string

const (
	ModeBaseline Mode = "baseline"
	ModeDiff     Mode = "diff"
)

// BaselineReason explains why a baseline was emitted instead of a diff.
type BaselineReason string

const (
	ReasonFirst     BaselineReason = "first"
	ReasonNavigated BaselineReason = "navigated"
)

// ChangeCode is the short field-change code emitted per changed state
// field (§4.7: "short kind code ena|chk|sel|exp|foc|inv|val").
type ChangeCode string

const (
	ChangeEnabled  ChangeCode = "ena"
	ChangeChecked  ChangeCode = "chk"
	ChangeSelected ChangeCode = "sel"
	ChangeExpanded ChangeCode = "exp"
	ChangeFocused  ChangeCode = "foc"
	ChangeInvalid  ChangeCode = "inv"
	ChangeValue    ChangeCode = "val"
)

// FieldChange is one changed field on an actionable present in both
// snapshots.
type FieldChange struct {
	EID  string
	Code ChangeCode
	From string
	To   string
}

// TextChange is one label-changed record for a non-interactive,
// status-like node.
type TextChange struct {
	EID  string
	From string
	To   string
}

// StatusAppeared is a status-like node that newly appeared.
type StatusAppeared struct {
	EID  string
	Role string
	Text string
}

// DocChange carries a URL/title transition.
type DocChange struct {
	FromURL, FromTitle string
	ToURL, ToTitle     string
	NavType            string // "hard" | "soft"
}

// LayerChange carries a layer-stack transition.
type LayerChange struct {
	From, To []string
}

// Atom is a single scalar change such as a viewport dimension (§4.7:
// "viewport width/height changes").
type Atom struct {
	Key  string
	From string
	To   string
}

// Actionables holds the added/removed/changed triad (§4.7, ordering:
// "added, removed, changed, then mutations").
type Actionables struct {
	Added   []string // EIDs, lexicographically sorted
	Removed []string
	Changed []FieldChange
}

// Mutations holds the non-interactive-node change pair.
type Mutations struct {
	TextChanged     []TextChange
	StatusAppeared  []StatusAppeared
}

// Diff is the full diff-mode result.
type Diff struct {
	Actionables Actionables
	Mutations   Mutations
	Doc         *DocChange
	Layer       *LayerChange
	Atoms       []Atom
}

// IsEmpty reports whether d carries no observable change (§4.7:
// "isEmpty: true iff no actionables changes, no mutations, no doc/layer/
// atom changes").
func (d *Diff) IsEmpty() bool {
	return len(d.Actionables.Added) == 0 && len(d.Actionables.Removed) == 0 && len(d.Actionables.Changed) == 0 &&
		len(d.Mutations.TextChanged) == 0 && len(d.Mutations.StatusAppeared) == 0 &&
		d.Doc == nil && d.Layer == nil && len(d.Atoms) == 0
}

// Result is the engine's top-level output (§4.7).
type Result struct {
	Mode   Mode
	Reason BaselineReason // only set when Mode == ModeBaseline
	Diff   *Diff          // only set when Mode == ModeDiff
}

// Compute diffs prev against curr. prev == nil or a changed DocumentID
// yields a baseline result; otherwise a full diff (§4.7).
func Compute(prev, curr *snapshot.BaseSnapshot) Result {
	if prev == nil {
		return Result{Mode: ModeBaseline, Reason: ReasonFirst}
	}
	if prev.DocumentID != curr.DocumentID {
		return Result{Mode: ModeBaseline, Reason: ReasonNavigated}
	}

	d := &Diff{
		Actionables: diffActionables(prev, curr),
		Mutations:   diffMutations(prev, curr),
		Doc:         diffDoc(prev, curr),
		Layer:       diffLayer(prev, curr),
		Atoms:       diffAtoms(prev, curr),
	}
	return Result{Mode: ModeDiff, Diff: d}
}

func diffActionables(prev, curr *snapshot.BaseSnapshot) Actionables {
	prevByEID := indexByEID(prev.Actionables(false))
	currByEID := indexByEID(curr.Actionables(false))

	var added, removed []string
	for eid := range currByEID {
		if _, ok := prevByEID[eid]; !ok {
			added = append(added, eid)
		}
	}
	for eid := range prevByEID {
		if _, ok := currByEID[eid]; !ok {
			removed = append(removed, eid)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	var changed []FieldChange
	var commonEIDs []string
	for eid := range currByEID {
		if _, ok := prevByEID[eid]; ok {
			commonEIDs = append(commonEIDs, eid)
		}
	}
	sort.Strings(commonEIDs)

	for _, eid := range commonEIDs {
		changed = append(changed, fieldChanges(eid, prevByEID[eid], currByEID[eid])...)
	}

	return Actionables{Added: added, Removed: removed, Changed: changed}
}

func indexByEID(nodes []*snapshot.ReadableNode) map[string]*snapshot.ReadableNode {
	m := make(map[string]*snapshot.ReadableNode, len(nodes))
	for _, n := range nodes {
		m[n.NodeID] = n
	}
	return m
}

func fieldChanges(eid string, from, to *snapshot.ReadableNode) []FieldChange {
	var out []FieldChange

	if from.State.Enabled != to.State.Enabled {
		out = append(out, FieldChange{EID: eid, Code: ChangeEnabled, From: boolStr(from.State.Enabled), To: boolStr(to.State.Enabled)})
	}
	if !boolPtrEqual(from.State.Checked, to.State.Checked) {
		out = append(out, FieldChange{EID: eid, Code: ChangeChecked, From: boolPtrStr(from.State.Checked), To: boolPtrStr(to.State.Checked)})
	}
	if !boolPtrEqual(from.State.Selected, to.State.Selected) {
		out = append(out, FieldChange{EID: eid, Code: ChangeSelected, From: boolPtrStr(from.State.Selected), To: boolPtrStr(to.State.Selected)})
	}
	if !boolPtrEqual(from.State.Expanded, to.State.Expanded) {
		out = append(out, FieldChange{EID: eid, Code: ChangeExpanded, From: boolPtrStr(from.State.Expanded), To: boolPtrStr(to.State.Expanded)})
	}
	if from.State.Focused != to.State.Focused {
		out = append(out, FieldChange{EID: eid, Code: ChangeFocused, From: boolStr(from.State.Focused), To: boolStr(to.State.Focused)})
	}
	if from.State.Invalid != to.State.Invalid {
		out = append(out, FieldChange{EID: eid, Code: ChangeInvalid, From: boolStr(from.State.Invalid), To: boolStr(to.State.Invalid)})
	}
	if from.Attributes.Value != to.Attributes.Value {
		out = append(out, FieldChange{EID: eid, Code: ChangeValue, From: truncateValue(from.Attributes.Value), To: truncateValue(to.Attributes.Value)})
	}

	return out
}

// maxTextChangeLen truncates text-change values (§4.7: "values are
// truncated").
const maxTextChangeLen = 100

func truncateValue(s string) string {
	r := []rune(s)
	if len(r) <= maxTextChangeLen {
		return s
	}
	return string(r[:maxTextChangeLen]) + "..."
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func boolPtrStr(b *bool) string {
	if b == nil {
		return ""
	}
	return boolStr(*b)
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// statusLikeRoles are the AX/DOM roles tracked for text-change and
// appearance mutations independent of interactivity (§4.7).
var statusLikeRoles = map[string]bool{
	"status":      true,
	"alert":       true,
	"alertdialog": true,
	"log":         true,
	"progressbar": true,
}

func diffMutations(prev, curr *snapshot.BaseSnapshot) Mutations {
	prevByEID := indexAllByEID(prev)
	currByEID := indexAllByEID(curr)

	var eids []string
	for eid := range currByEID {
		eids = append(eids, eid)
	}
	sort.Strings(eids)

	var m Mutations
	for _, eid := range eids {
		cn := currByEID[eid]
		if !isStatusLike(cn) {
			continue
		}
		pn, existed := prevByEID[eid]
		if !existed {
			m.StatusAppeared = append(m.StatusAppeared, StatusAppeared{EID: eid, Role: cn.Attributes.Role, Text: truncateValue(cn.Label)})
			continue
		}
		if pn.Label != cn.Label {
			m.TextChanged = append(m.TextChanged, TextChange{EID: eid, From: truncateValue(pn.Label), To: truncateValue(cn.Label)})
		}
	}
	return m
}

func isStatusLike(n *snapshot.ReadableNode) bool {
	return statusLikeRoles[strings.ToLower(n.Attributes.Role)]
}

func indexAllByEID(snap *snapshot.BaseSnapshot) map[string]*snapshot.ReadableNode {
	m := make(map[string]*snapshot.ReadableNode, len(snap.Nodes))
	for i := range snap.Nodes {
		m[snap.Nodes[i].NodeID] = &snap.Nodes[i]
	}
	return m
}

func diffDoc(prev, curr *snapshot.BaseSnapshot) *DocChange {
	if prev.URL == curr.URL && prev.Title == curr.Title {
		return nil
	}
	navType := "soft"
	if pathOf(prev.URL) != pathOf(curr.URL) {
		navType = "hard"
	}
	return &DocChange{
		FromURL: prev.URL, FromTitle: prev.Title,
		ToURL: curr.URL, ToTitle: curr.Title,
		NavType: navType,
	}
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

func layerStack(snap *snapshot.BaseSnapshot) []string {
	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		if n.Kind == snapshot.KindDialog && n.State.Visible {
			return []string{"main", "modal"}
		}
	}
	return []string{"main"}
}

func diffLayer(prev, curr *snapshot.BaseSnapshot) *LayerChange {
	from, to := layerStack(prev), layerStack(curr)
	if sliceEqual(from, to) {
		return nil
	}
	return &LayerChange{From: from, To: to}
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func diffAtoms(prev, curr *snapshot.BaseSnapshot) []Atom {
	var atoms []Atom
	if prev.Viewport.W != curr.Viewport.W {
		atoms = append(atoms, Atom{Key: "viewport.w", From: strconv.Itoa(prev.Viewport.W), To: strconv.Itoa(curr.Viewport.W)})
	}
	if prev.Viewport.H != curr.Viewport.H {
		atoms = append(atoms, Atom{Key: "viewport.h", From: strconv.Itoa(prev.Viewport.H), To: strconv.Itoa(curr.Viewport.H)})
	}
	return atoms
}

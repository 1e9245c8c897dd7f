// Package render serializes a compiled snapshot, its diff against the
// previous one, and accumulated observations into a compact, token-budgeted
// XML payload (§4.8, C8).
//
// encoding/xml is deliberately not used: it has no notion of the spec's
// attribute-flattening and priority-truncation token budget model, and
// round-tripping through its reflection-based encoder would fight every
// rule in §4.8 rather than help apply them. The hand-rolled writer here is
// grounded on the teacher's domwatch/mutation/serialize.go posture: small,
// explicit, no reflection-heavy dependency.
package render

import (
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/diff"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/factpack"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/observe"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// Input is everything the renderer needs; it is a pure function of these
// fields (§4.8: "no internal state; pure function of (state, diff,
// observations, budget)").
type Input struct {
	Snapshot      *snapshot.BaseSnapshot
	Diff          diff.Result
	Facts         *factpack.FactPack
	DuringAction  []observe.Observation
	SincePrevious []observe.Observation
	Budget        Budget

	// IncludeDisabledFields widens the rendered actionables list to also
	// include disabled interactive nodes (§9: include_disabled_fields).
	IncludeDisabledFields bool
	// IncludeState controls whether each actionable's state attributes
	// (visible/enabled/checked/...) are emitted at all (§9: include_state).
	// nil means "unset", defaulting to true — the existing behavior for
	// every caller that doesn't route through the options decoder.
	IncludeState *bool
}

func (in Input) includeState() bool {
	if in.IncludeState == nil {
		return true
	}
	return *in.IncludeState
}

// Output is the rendered payload plus the budgeter's verdict.
type Output struct {
	XML             string
	WasTruncated    bool
	EstimatedTokens int
}

// Render builds the XML payload for in, shrinking lowest-priority sections
// first until it fits the budget (§4.8: "truncate lowest-priority sections
// first (observations before mutations before actionables tail)").
func Render(in Input) Output {
	in.Budget.defaults()

	full := build(in, true, true, -1, false)
	if estimateTokens(full) <= in.Budget.MaxTokens {
		return Output{XML: full, EstimatedTokens: estimateTokens(full)}
	}

	noObs := build(in, false, true, -1, true)
	if estimateTokens(noObs) <= in.Budget.MaxTokens {
		return Output{XML: noObs, WasTruncated: true, EstimatedTokens: estimateTokens(noObs)}
	}

	noObsNoMut := build(in, false, false, -1, true)
	if estimateTokens(noObsNoMut) <= in.Budget.MaxTokens {
		return Output{XML: noObsNoMut, WasTruncated: true, EstimatedTokens: estimateTokens(noObsNoMut)}
	}

	limit := len(in.Snapshot.Actionables(in.IncludeDisabledFields))
	out := noObsNoMut
	for limit > 0 {
		limit--
		out = build(in, false, false, limit, true)
		if estimateTokens(out) <= in.Budget.MaxTokens {
			break
		}
	}
	return Output{XML: out, WasTruncated: true, EstimatedTokens: estimateTokens(out)}
}

func build(in Input, includeObservations, includeMutations bool, actionablesLimit int, truncated bool) string {
	w := newWriter()
	w.includeState = in.includeState()
	closeRoot := w.open("perception",
		strAttr("url", in.Snapshot.URL),
		boolAttrUnlessDefault("was_truncated", truncated, false),
	)

	w.renderState(in.Snapshot)

	switch in.Diff.Mode {
	case diff.ModeBaseline:
		w.selfClose("baseline", strAttr("reason", string(in.Diff.Reason)))
	case diff.ModeDiff:
		w.renderDiff(in.Diff.Diff)
		if includeMutations {
			w.renderMutations(in.Diff.Diff)
		}
	}

	if includeObservations {
		w.renderObservations(in.DuringAction, in.SincePrevious)
	}

	if in.Facts != nil {
		w.renderFacts(in.Facts)
	}

	w.renderActionables(in.Snapshot, in.IncludeDisabledFields, actionablesLimit)

	closeRoot()
	return w.String()
}

func (w *writer) renderState(snap *snapshot.BaseSnapshot) {
	attrs := []attr{
		strAttr("title", snap.Title),
		strAttr("document_id", snap.DocumentID),
		intAttr("w", snap.Viewport.W),
		intAttr("h", snap.Viewport.H),
		intAttrNonZero("node_count", snap.Meta.NodeCount),
		intAttrNonZero("interactive_count", snap.Meta.InteractiveCount),
	}
	if snap.Health.Degraded() {
		attrs = append(attrs, strAttr("limitations", limitationsOf(snap.Health)))
	}
	w.selfClose("state", attrs...)
}

func limitationsOf(h snapshot.CaptureHealth) string {
	parts := ""
	add := func(s string) {
		if parts != "" {
			parts += ","
		}
		parts += s
	}
	if h.AXDegraded {
		add("ax-degraded")
	}
	if h.LayoutDegraded {
		add("layout-degraded")
	}
	if h.CompileSkippedCount > 0 {
		add("skipped-nodes")
	}
	return parts
}

func (w *writer) renderDiff(d *diff.Diff) {
	close := w.open("diff")

	closeA := w.open("actionables")
	for _, eid := range d.Actionables.Added {
		w.selfClose("added", strAttr("eid", eid))
	}
	for _, eid := range d.Actionables.Removed {
		w.selfClose("removed", strAttr("eid", eid))
	}
	for _, c := range d.Actionables.Changed {
		w.selfClose("changed",
			strAttr("eid", c.EID),
			strAttr("kind", string(c.Code)),
			rawAttr("from", c.From),
			rawAttr("to", c.To),
		)
	}
	closeA()

	if d.Doc != nil {
		w.selfClose("doc",
			strAttr("from_url", d.Doc.FromURL),
			strAttr("from_title", d.Doc.FromTitle),
			strAttr("to_url", d.Doc.ToURL),
			strAttr("to_title", d.Doc.ToTitle),
			strAttr("nav_type", d.Doc.NavType),
		)
	}
	if d.Layer != nil {
		w.selfClose("layer",
			strAttr("from", joinPath(d.Layer.From)),
			strAttr("to", joinPath(d.Layer.To)),
		)
	}
	for _, a := range d.Atoms {
		w.selfClose("atom", strAttr("k", a.Key), rawAttr("from", a.From), rawAttr("to", a.To))
	}

	close()
}

func (w *writer) renderMutations(d *diff.Diff) {
	if len(d.Mutations.TextChanged) == 0 && len(d.Mutations.StatusAppeared) == 0 {
		return
	}
	close := w.open("mutations")
	for _, t := range d.Mutations.TextChanged {
		w.selfClose("text-changed", strAttr("eid", t.EID), rawAttr("from", t.From), rawAttr("to", t.To))
	}
	for _, s := range d.Mutations.StatusAppeared {
		w.selfClose("status", strAttr("eid", s.EID), strAttr("role", s.Role), strAttr("text", s.Text))
	}
	close()
}

func (w *writer) renderObservations(duringAction, sincePrevious []observe.Observation) {
	if len(duringAction) == 0 && len(sincePrevious) == 0 {
		return
	}
	close := w.open("observations")
	if len(duringAction) > 0 {
		closeD := w.open("during-action")
		for _, o := range duringAction {
			w.renderObservation(o)
		}
		closeD()
	}
	if len(sincePrevious) > 0 {
		closeS := w.open("since-previous")
		for _, o := range sincePrevious {
			w.renderObservation(o)
		}
		closeS()
	}
	close()
}

func (w *writer) renderObservation(o observe.Observation) {
	attrs := []attr{
		strAttr("type", string(o.Type)),
		intAttr("significance", o.Significance),
		strAttr("tag", o.Content.Tag),
		strAttr("role", o.Content.Role),
		strAttr("eid", o.EIDHint),
		boolAttrUnlessDefault("reported", o.Reported, false),
	}
	if o.AgeMs != nil {
		attrs = append(attrs, intAttr("age_ms", int(*o.AgeMs)))
	}
	if o.DurationMs != nil {
		attrs = append(attrs, intAttr("duration_ms", int(*o.DurationMs)))
	}
	if o.Content.Text == "" {
		w.selfClose("observation", attrs...)
		return
	}
	close := w.open("observation", attrs...)
	w.text(o.Content.Text)
	close()
}

func (w *writer) renderActionables(snap *snapshot.BaseSnapshot, includeDisabled bool, limit int) {
	nodes := snap.Actionables(includeDisabled)
	if limit >= 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	close := w.open("actionables")
	for _, n := range nodes {
		w.renderNode(n)
	}
	close()
}

func (w *writer) renderFacts(f *factpack.FactPack) {
	close := w.open("facts")

	for _, d := range f.Dialogs {
		w.selfClose("dialog", strAttr("eid", d.NodeID), strAttr("category", string(d.Category)), strAttr("label", d.Label))
	}

	for _, form := range f.Forms {
		closeF := w.open("form",
			strAttr("eid", form.NodeID),
			floatAttr("completion_pct", form.CompletionPct),
			intAttrNonZero("error_count", form.ErrorCount),
			boolAttrUnlessDefault("can_submit", form.CanSubmit, false),
			boolAttrUnlessDefault("dirty", form.Dirty, false),
			intAttrNonZero("required_count", form.RequiredCount),
			intAttrNonZero("filled_required_count", form.FilledRequiredCount),
		)
		for _, field := range form.Fields {
			w.selfClose("field",
				strAttr("eid", field.NodeID),
				strAttr("semantic_type", string(field.SemanticType)),
				boolAttrUnlessDefault("required", field.Required, false),
				boolAttrUnlessDefault("filled", field.Filled, false),
				boolAttrUnlessDefault("invalid", field.Invalid, false),
			)
		}
		for _, submitEID := range form.Submits {
			w.selfClose("submit", strAttr("eid", submitEID))
		}
		closeF()
	}

	w.selfClose("page-type", strAttr("label", string(f.PageType.Label)), floatAttr("score", f.PageType.Score))

	closeActions := w.open("actions")
	for _, c := range f.Actions.Candidates {
		isPrimary := f.Actions.PrimaryCTA != nil && f.Actions.PrimaryCTA.NodeID == c.NodeID
		w.selfClose("action",
			strAttr("eid", c.NodeID),
			strAttr("label", c.Label),
			strAttr("category", string(c.Category)),
			boolAttrUnlessDefault("primary", isPrimary, false),
		)
	}
	closeActions()

	close()
}

package render

import (
	"strings"
	"testing"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/diff"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/observe"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

func fixtureSnapshot() *snapshot.BaseSnapshot {
	return &snapshot.BaseSnapshot{
		SnapshotID: "snap-1",
		URL:        "https://example.com/checkout",
		Title:      "Checkout",
		DocumentID: "doc-1",
		Viewport:   snapshot.Viewport{W: 1280, H: 800},
		Nodes: []snapshot.ReadableNode{
			{
				NodeID: "button-aaa11111",
				Kind:   snapshot.KindButton,
				Label:  "Place order",
				Where:  snapshot.Where{Region: snapshot.RegionMain, GroupID: "form-checkout"},
				Layout: snapshot.Layout{BBox: snapshot.BBox{X: 10, Y: 20, W: 120, H: 40}},
				State:  snapshot.State{Visible: true, Enabled: true},
			},
			{
				NodeID: "textbox-bbb22222",
				Kind:   snapshot.KindTextbox,
				Label:  "",
				Where:  snapshot.Where{Region: snapshot.RegionForm, GroupID: "form-checkout"},
				Layout: snapshot.Layout{BBox: snapshot.BBox{X: 10, Y: 60, W: 200, H: 30}},
				State:  snapshot.State{Visible: true, Enabled: true, Required: true},
				Attributes: snapshot.Attributes{
					Value: "a@b.com",
				},
			},
		},
	}
}

func TestRender_BaselineIncludesActionables(t *testing.T) {
	snap := fixtureSnapshot()
	out := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}})

	if !strings.Contains(out.XML, `<baseline reason="first"/>`) {
		t.Errorf("missing baseline tag, got: %s", out.XML)
	}
	if !strings.Contains(out.XML, `<button`) || !strings.Contains(out.XML, `Place order`) {
		t.Errorf("expected rendered button node, got: %s", out.XML)
	}
	if out.WasTruncated {
		t.Error("small payload should not be truncated")
	}
}

func TestRender_DefaultStateValuesOmitted(t *testing.T) {
	snap := fixtureSnapshot()
	out := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}})

	if strings.Contains(out.XML, `visible="true"`) || strings.Contains(out.XML, `enabled="true"`) {
		t.Errorf("default visible/enabled should be omitted, got: %s", out.XML)
	}
	if !strings.Contains(out.XML, `required="true"`) {
		t.Errorf("non-default required=true should be emitted, got: %s", out.XML)
	}
}

func TestRender_SelfClosesEmptyLabelNode(t *testing.T) {
	snap := fixtureSnapshot()
	out := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}})

	if !strings.Contains(out.XML, `value="a@b.com"`) {
		t.Errorf("expected value attribute on empty-label textbox, got: %s", out.XML)
	}
}

func TestRender_DiffModeEmitsAddedRemovedChanged(t *testing.T) {
	prev := fixtureSnapshot()
	curr := fixtureSnapshot()
	curr.Nodes = append(curr.Nodes, snapshot.ReadableNode{
		NodeID: "button-ccc33333",
		Kind:   snapshot.KindButton,
		Label:  "Apply coupon",
		State:  snapshot.State{Visible: true, Enabled: true},
	})

	res := diff.Compute(prev, curr)
	out := Render(Input{Snapshot: curr, Diff: res})

	if !strings.Contains(out.XML, `<added eid="button-ccc33333"/>`) {
		t.Errorf("expected added record, got: %s", out.XML)
	}
}

func TestRender_XMLEscaping(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Nodes[0].Label = `Save & "exit" <now>`
	out := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}})

	if strings.Contains(out.XML, "<now>") || strings.Contains(out.XML, `"exit"`) {
		t.Errorf("expected XML-escaped label, got: %s", out.XML)
	}
	if !strings.Contains(out.XML, "&amp;") || !strings.Contains(out.XML, "&lt;now&gt;") {
		t.Errorf("expected escaped entities, got: %s", out.XML)
	}
}

func TestRender_ObservationsDroppedFirstUnderTightBudget(t *testing.T) {
	snap := fixtureSnapshot()
	obs := []observe.Observation{
		{Type: observe.KindAppeared, Significance: 8, Content: observe.Content{Tag: "div", Text: "A cookie banner appeared and took up a meaningful chunk of the viewport"}},
	}

	loose := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}, SincePrevious: obs, Budget: Budget{MaxTokens: 5000}})
	if !strings.Contains(loose.XML, "<observations>") {
		t.Fatalf("expected observations in an unconstrained budget, got: %s", loose.XML)
	}

	tight := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}, SincePrevious: obs, Budget: Budget{MaxTokens: 20}})
	if strings.Contains(tight.XML, "<observations>") {
		t.Errorf("expected observations dropped under a tight budget, got: %s", tight.XML)
	}
	if !tight.WasTruncated {
		t.Error("expected WasTruncated=true once a section was dropped")
	}
	if !strings.Contains(tight.XML, `was_truncated="true"`) {
		t.Errorf("expected was_truncated attribute set, got: %s", tight.XML)
	}
}

func TestRender_ActionablesTruncatedUnderExtremeBudget(t *testing.T) {
	snap := fixtureSnapshot()
	out := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}, Budget: Budget{MaxTokens: 10}})

	if !out.WasTruncated {
		t.Error("expected truncation under an extreme budget")
	}
	if estimateTokens(out.XML) > 10 {
		// Even the minimal (zero actionables) payload may exceed an
		// unreasonably tiny budget; this only checks truncation was
		// attempted, not that the cap was always met.
		t.Logf("rendered payload still estimated at %d tokens", estimateTokens(out.XML))
	}
}

func TestRender_ZeroBBoxOmitted(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Nodes = append(snap.Nodes, snapshot.ReadableNode{
		NodeID: "button-nolayout",
		Kind:   snapshot.KindButton,
		Label:  "Hidden until measured",
		State:  snapshot.State{Visible: true, Enabled: true},
	})
	out := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}})

	if strings.Contains(out.XML, `eid="button-nolayout" x=`) {
		t.Errorf("expected zero bbox to omit x/y/w/h, got: %s", out.XML)
	}
	if !strings.Contains(out.XML, `x="10" y="20" w="120" h="40"`) {
		t.Errorf("expected the fixture button's real bbox to still be emitted, got: %s", out.XML)
	}
}

func TestRender_IncludeStateFalseOmitsStateAttrs(t *testing.T) {
	snap := fixtureSnapshot()
	f := false
	out := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}, IncludeState: &f})

	if strings.Contains(out.XML, `required="true"`) {
		t.Errorf("expected state attrs suppressed when IncludeState=false, got: %s", out.XML)
	}
}

func TestRender_IncludeDisabledFieldsWidensActionables(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Nodes = append(snap.Nodes, snapshot.ReadableNode{
		NodeID: "button-disabled",
		Kind:   snapshot.KindButton,
		Label:  "Disabled button",
		State:  snapshot.State{Visible: true, Enabled: false},
	})

	without := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}})
	if strings.Contains(without.XML, "button-disabled") {
		t.Errorf("expected disabled node excluded by default, got: %s", without.XML)
	}

	with := Render(Input{Snapshot: snap, Diff: diff.Result{Mode: diff.ModeBaseline, Reason: diff.ReasonFirst}, IncludeDisabledFields: true})
	if !strings.Contains(with.XML, "button-disabled") {
		t.Errorf("expected disabled node included with IncludeDisabledFields=true, got: %s", with.XML)
	}
}

func TestEscape_AllFiveSpecialChars(t *testing.T) {
	got := escape(`& < > " '`)
	want := "&amp; &lt; &gt; &quot; &apos;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

package diff

import (
	"testing"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

func baseSnap(documentID, url, title string) *snapshot.BaseSnapshot {
	return &snapshot.BaseSnapshot{
		DocumentID: documentID,
		URL:        url,
		Title:      title,
		Viewport:   snapshot.Viewport{W: 1280, H: 800},
	}
}

func TestCompute_NilPrevIsFirstBaseline(t *testing.T) {
	res := Compute(nil, baseSnap("doc1", "https://example.com", "Home"))
	if res.Mode != ModeBaseline || res.Reason != ReasonFirst {
		t.Fatalf("got mode=%s reason=%s, want baseline/first", res.Mode, res.Reason)
	}
}

func TestCompute_DocumentIDChangeIsNavigatedBaseline(t *testing.T) {
	prev := baseSnap("doc1", "https://example.com", "Home")
	curr := baseSnap("doc2", "https://example.com/other", "Other")
	res := Compute(prev, curr)
	if res.Mode != ModeBaseline || res.Reason != ReasonNavigated {
		t.Fatalf("got mode=%s reason=%s, want baseline/navigated", res.Mode, res.Reason)
	}
}

func TestCompute_ActionableAddedAndRemoved(t *testing.T) {
	prev := baseSnap("doc1", "https://example.com", "Home")
	prev.Nodes = []snapshot.ReadableNode{
		{NodeID: "button-aaa", Kind: snapshot.KindButton, State: snapshot.State{Visible: true, Enabled: true}},
	}
	curr := baseSnap("doc1", "https://example.com", "Home")
	curr.Nodes = []snapshot.ReadableNode{
		{NodeID: "button-bbb", Kind: snapshot.KindButton, State: snapshot.State{Visible: true, Enabled: true}},
	}

	res := Compute(prev, curr)
	if res.Mode != ModeDiff {
		t.Fatalf("got mode=%s, want diff", res.Mode)
	}
	if len(res.Diff.Actionables.Added) != 1 || res.Diff.Actionables.Added[0] != "button-bbb" {
		t.Errorf("Added: got %v, want [button-bbb]", res.Diff.Actionables.Added)
	}
	if len(res.Diff.Actionables.Removed) != 1 || res.Diff.Actionables.Removed[0] != "button-aaa" {
		t.Errorf("Removed: got %v, want [button-aaa]", res.Diff.Actionables.Removed)
	}
}

func TestCompute_ActionableFieldChanges(t *testing.T) {
	prev := baseSnap("doc1", "https://example.com", "Home")
	prev.Nodes = []snapshot.ReadableNode{
		{NodeID: "checkbox-aaa", Kind: snapshot.KindCheckbox, State: snapshot.State{Visible: true, Enabled: true}},
	}
	yes := true
	curr := baseSnap("doc1", "https://example.com", "Home")
	curr.Nodes = []snapshot.ReadableNode{
		{NodeID: "checkbox-aaa", Kind: snapshot.KindCheckbox, State: snapshot.State{Visible: true, Enabled: true, Checked: &yes}},
	}

	res := Compute(prev, curr)
	if len(res.Diff.Actionables.Changed) != 1 {
		t.Fatalf("got %d changes, want 1", len(res.Diff.Actionables.Changed))
	}
	fc := res.Diff.Actionables.Changed[0]
	if fc.Code != ChangeChecked || fc.To != "true" {
		t.Errorf("got %+v, want chk change to true", fc)
	}
}

func TestCompute_StatusAppearedAndTextChanged(t *testing.T) {
	prev := baseSnap("doc1", "https://example.com", "Home")
	prev.Nodes = []snapshot.ReadableNode{
		{NodeID: "rd-0001", Label: "Loading...", Attributes: snapshot.Attributes{Role: "status"}},
	}
	curr := baseSnap("doc1", "https://example.com", "Home")
	curr.Nodes = []snapshot.ReadableNode{
		{NodeID: "rd-0001", Label: "Done", Attributes: snapshot.Attributes{Role: "status"}},
		{NodeID: "rd-0002", Label: "An error occurred", Attributes: snapshot.Attributes{Role: "alert"}},
	}

	res := Compute(prev, curr)
	if len(res.Diff.Mutations.TextChanged) != 1 {
		t.Fatalf("got %d text changes, want 1", len(res.Diff.Mutations.TextChanged))
	}
	if res.Diff.Mutations.TextChanged[0].To != "Done" {
		t.Errorf("got %q, want Done", res.Diff.Mutations.TextChanged[0].To)
	}
	if len(res.Diff.Mutations.StatusAppeared) != 1 {
		t.Fatalf("got %d status-appeared, want 1", len(res.Diff.Mutations.StatusAppeared))
	}
	if res.Diff.Mutations.StatusAppeared[0].Role != "alert" {
		t.Errorf("got role %q, want alert", res.Diff.Mutations.StatusAppeared[0].Role)
	}
}

func TestCompute_DocChangeHardVsSoftNav(t *testing.T) {
	prev := baseSnap("doc1", "https://example.com/a", "A")
	curr := baseSnap("doc1", "https://example.com/b", "B")
	res := Compute(prev, curr)
	if res.Diff.Doc == nil || res.Diff.Doc.NavType != "hard" {
		t.Fatalf("got %+v, want hard nav", res.Diff.Doc)
	}

	prev2 := baseSnap("doc1", "https://example.com/a", "A")
	curr2 := baseSnap("doc1", "https://example.com/a#section", "A")
	res2 := Compute(prev2, curr2)
	if res2.Diff.Doc == nil || res2.Diff.Doc.NavType != "soft" {
		t.Fatalf("got %+v, want soft nav", res2.Diff.Doc)
	}
}

func TestCompute_LayerTransitionOnDialogAppear(t *testing.T) {
	prev := baseSnap("doc1", "https://example.com", "Home")
	curr := baseSnap("doc1", "https://example.com", "Home")
	curr.Nodes = []snapshot.ReadableNode{
		{NodeID: "dialog-aaa", Kind: snapshot.KindDialog, State: snapshot.State{Visible: true}},
	}
	res := Compute(prev, curr)
	if res.Diff.Layer == nil {
		t.Fatal("expected a layer transition")
	}
	if res.Diff.Layer.To[len(res.Diff.Layer.To)-1] != "modal" {
		t.Errorf("got %v, want modal on top", res.Diff.Layer.To)
	}
}

func TestCompute_ViewportAtom(t *testing.T) {
	prev := baseSnap("doc1", "https://example.com", "Home")
	curr := baseSnap("doc1", "https://example.com", "Home")
	curr.Viewport = snapshot.Viewport{W: 375, H: 812}
	res := Compute(prev, curr)
	if len(res.Diff.Atoms) != 2 {
		t.Fatalf("got %d atoms, want 2", len(res.Diff.Atoms))
	}
}

func TestCompute_IsEmptyWhenNothingChanged(t *testing.T) {
	prev := baseSnap("doc1", "https://example.com", "Home")
	curr := baseSnap("doc1", "https://example.com", "Home")
	res := Compute(prev, curr)
	if !res.Diff.IsEmpty() {
		t.Error("expected IsEmpty true for two identical snapshots")
	}
}

package query

import (
	"testing"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

func fixtureSnapshot() *snapshot.BaseSnapshot {
	yes := true
	return &snapshot.BaseSnapshot{
		Nodes: []snapshot.ReadableNode{
			{
				NodeID: "button-aaa", Kind: snapshot.KindButton, Label: "Submit order",
				Where: snapshot.Where{Region: snapshot.RegionForm}, State: snapshot.State{Visible: true, Enabled: true},
				DocOrder: 0,
			},
			{
				NodeID: "button-bbb", Kind: snapshot.KindButton, Label: "Cancel",
				Where: snapshot.Where{Region: snapshot.RegionForm}, State: snapshot.State{Visible: true, Enabled: true},
				DocOrder: 1,
			},
			{
				NodeID: "link-ccc", Kind: snapshot.KindLink, Label: "Submit order",
				Where: snapshot.Where{Region: snapshot.RegionNav}, State: snapshot.State{Visible: true, Enabled: true},
				DocOrder: 2,
			},
			{
				NodeID: "checkbox-ddd", Kind: snapshot.KindCheckbox, Label: "Agree to terms",
				Where: snapshot.Where{Region: snapshot.RegionForm}, State: snapshot.State{Visible: true, Enabled: true, Checked: &yes},
				DocOrder: 3,
			},
		},
	}
}

func TestFind_ExactLabelAndKind(t *testing.T) {
	e := New(fixtureSnapshot())
	res := e.Find(Request{
		Kinds:     []snapshot.NodeKind{snapshot.KindButton},
		Label:     "Submit order",
		LabelMode: MatchExact,
	})
	if len(res.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(res.Matches))
	}
	if res.Matches[0].Node.NodeID != "button-aaa" {
		t.Errorf("got %s, want button-aaa", res.Matches[0].Node.NodeID)
	}
}

func TestFind_ContainsLabelAcrossKinds(t *testing.T) {
	e := New(fixtureSnapshot())
	res := e.Find(Request{Label: "submit", LabelMode: MatchContains, SortByRelevance: true})
	if len(res.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(res.Matches))
	}
}

func TestFind_FuzzyLabelTypo(t *testing.T) {
	e := New(fixtureSnapshot())
	res := e.Find(Request{Label: "sbumit order", LabelMode: MatchFuzzy})
	if len(res.Matches) == 0 {
		t.Fatal("expected fuzzy match for typo'd label")
	}
}

func TestFind_RegionFilter(t *testing.T) {
	e := New(fixtureSnapshot())
	res := e.Find(Request{Regions: []snapshot.SemanticRegion{snapshot.RegionNav}})
	if len(res.Matches) != 1 || res.Matches[0].Node.NodeID != "link-ccc" {
		t.Fatalf("got %+v, want single link-ccc match", res.Matches)
	}
}

func TestFind_StateConstraint(t *testing.T) {
	e := New(fixtureSnapshot())
	yes := true
	res := e.Find(Request{State: &StateConstraint{Checked: &yes}})
	if len(res.Matches) != 1 || res.Matches[0].Node.NodeID != "checkbox-ddd" {
		t.Fatalf("got %+v, want single checkbox-ddd match", res.Matches)
	}
}

func TestFind_Limit(t *testing.T) {
	e := New(fixtureSnapshot())
	res := e.Find(Request{Kinds: []snapshot.NodeKind{snapshot.KindButton, snapshot.KindLink, snapshot.KindCheckbox}, Limit: 2})
	if len(res.Matches) != 2 {
		t.Fatalf("got %d matches, want 2 (limit)", len(res.Matches))
	}
}

func TestFind_Disambiguation(t *testing.T) {
	e := New(fixtureSnapshot())
	res := e.Find(Request{Label: "submit", LabelMode: MatchContains, SortByRelevance: true, WithDisambiguation: true})
	if len(res.Suggestions) == 0 {
		t.Error("expected disambiguation suggestions for two equally-scored matches")
	}
}

func TestFind_NoMatchReturnsEmpty(t *testing.T) {
	e := New(fixtureSnapshot())
	res := e.Find(Request{Label: "completely unrelated nonexistent text", LabelMode: MatchExact})
	if len(res.Matches) != 0 {
		t.Fatalf("got %d matches, want 0", len(res.Matches))
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"submit order", "sbumit order", 2},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

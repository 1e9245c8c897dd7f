package compiler

import (
	"testing"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// buildFixture assembles a minimal page:
//
//	<html>
//	  <body>
//	    <main>
//	      <h1>Account settings</h1>
//	      <form>
//	        <label>Email</label>
//	        <input type="email" value="a@b.com">
//	        <button>Save</button>
//	      </form>
//	    </main>
//	  </body>
//	</html>
func buildFixture() *cdpreader.Capture {
	dom := map[int64]cdpreader.RawDomNode{
		1: {BackendNodeID: 1, NodeType: 1, NodeName: "HTML", FrameID: "f0", Children: []int64{2}},
		2: {BackendNodeID: 2, ParentID: 1, NodeType: 1, NodeName: "BODY", FrameID: "f0", Children: []int64{3}},
		3: {BackendNodeID: 3, ParentID: 2, NodeType: 1, NodeName: "MAIN", FrameID: "f0", Children: []int64{4, 5}},
		4: {BackendNodeID: 4, ParentID: 3, NodeType: 1, NodeName: "H1", FrameID: "f0", Children: []int64{40}},
		40: {BackendNodeID: 40, ParentID: 4, NodeType: 3, NodeName: "#text", FrameID: "f0", TextContent: "Account settings"},
		5: {BackendNodeID: 5, ParentID: 3, NodeType: 1, NodeName: "FORM", FrameID: "f0", Children: []int64{6, 7, 8}},
		6: {BackendNodeID: 6, ParentID: 5, NodeType: 1, NodeName: "LABEL", FrameID: "f0", Children: []int64{60}},
		60: {BackendNodeID: 60, ParentID: 6, NodeType: 3, NodeName: "#text", FrameID: "f0", TextContent: "Email"},
		7: {
			BackendNodeID: 7, ParentID: 5, NodeType: 1, NodeName: "INPUT", FrameID: "f0",
			Attributes: map[string]string{"type": "email", "value": "a@b.com", "aria-label": "Email"},
		},
		8: {BackendNodeID: 8, ParentID: 5, NodeType: 1, NodeName: "BUTTON", FrameID: "f0", Children: []int64{80}},
		80: {BackendNodeID: 80, ParentID: 8, NodeType: 3, NodeName: "#text", FrameID: "f0", TextContent: "Save"},
	}

	ax := map[int64]cdpreader.RawAxNode{
		3: {BackendNodeID: 3, Role: "main"},
		4: {BackendNodeID: 4, Role: "heading", Name: "Account settings"},
		5: {BackendNodeID: 5, Role: "form"},
		7: {BackendNodeID: 7, Role: "textbox", Name: "Email"},
		8: {BackendNodeID: 8, Role: "button", Name: "Save"},
	}

	layouts := map[int64]cdpreader.NodeLayoutInfo{
		4: {X: 10, Y: 10, W: 300, H: 30, Display: "block", Visibility: "visible", InViewport: true},
		7: {X: 10, Y: 60, W: 200, H: 20, Display: "block", Visibility: "visible", InViewport: true},
		8: {X: 10, Y: 90, W: 80, H: 24, Display: "block", Visibility: "visible", InViewport: true},
	}

	return &cdpreader.Capture{
		DomTree:    dom,
		AxTree:     ax,
		Layouts:    layouts,
		DocumentID: "doc-1",
		URL:        "https://example.com/settings",
		Viewport:   cdpreader.ViewportInfo{W: 1280, H: 800, DPR: 1},
	}
}

func findByLabel(nodes []snapshot.ReadableNode, label string) *snapshot.ReadableNode {
	for i := range nodes {
		if nodes[i].Label == label {
			return &nodes[i]
		}
	}
	return nil
}

func TestCompile_EmitsExpectedKinds(t *testing.T) {
	result := Compile(buildFixture(), Config{})

	if result.SkippedCount != 0 {
		t.Fatalf("SkippedCount: got %d, want 0", result.SkippedCount)
	}

	heading := findByLabel(result.Nodes, "Account settings")
	if heading == nil {
		t.Fatal("expected heading node with label 'Account settings'")
	}
	if heading.Kind != snapshot.KindHeading {
		t.Errorf("heading.Kind: got %s, want %s", heading.Kind, snapshot.KindHeading)
	}
	if heading.Where.Region != snapshot.RegionMain {
		t.Errorf("heading.Where.Region: got %s, want %s", heading.Where.Region, snapshot.RegionMain)
	}

	input := findByLabel(result.Nodes, "Email")
	if input == nil {
		t.Fatal("expected input node with label 'Email'")
	}
	if input.Kind != snapshot.KindTextbox {
		t.Errorf("input.Kind: got %s, want %s", input.Kind, snapshot.KindTextbox)
	}
	if input.Where.Region != snapshot.RegionForm {
		t.Errorf("input.Where.Region: got %s, want %s", input.Where.Region, snapshot.RegionForm)
	}
	if input.Where.HeadingContext != "Account settings" {
		t.Errorf("input.Where.HeadingContext: got %q, want %q", input.Where.HeadingContext, "Account settings")
	}
	if input.Attributes.Value != "a@b.com" {
		t.Errorf("input.Attributes.Value: got %q, want %q", input.Attributes.Value, "a@b.com")
	}

	button := findByLabel(result.Nodes, "Save")
	if button == nil {
		t.Fatal("expected button node with label 'Save'")
	}
	if !button.IsActionable() {
		t.Error("expected Save button to be actionable")
	}
}

func TestCompile_StructuralLandmarksNeverEmitted(t *testing.T) {
	result := Compile(buildFixture(), Config{})
	for _, n := range result.Nodes {
		if n.Kind.IsStructural() {
			t.Errorf("structural node leaked into output: %+v", n)
		}
	}
}

func TestCompile_SensitiveValueRedacted(t *testing.T) {
	cap := buildFixture()
	pw := cap.DomTree[7]
	pw.Attributes = map[string]string{"type": "password", "value": "hunter2", "aria-label": "Password"}
	cap.DomTree[7] = pw
	cap.AxTree[7] = cdpreader.RawAxNode{BackendNodeID: 7, Role: "textbox", Name: "Password"}

	result := Compile(cap, Config{})
	field := findByLabel(result.Nodes, "Password")
	if field == nil {
		t.Fatal("expected password field in output")
	}
	if field.Attributes.Value != redactedValue {
		t.Errorf("Attributes.Value: got %q, want redacted", field.Attributes.Value)
	}
}

func TestCompile_EIDStableAcrossRuns(t *testing.T) {
	r1 := Compile(buildFixture(), Config{})
	r2 := Compile(buildFixture(), Config{})

	b1 := findByLabel(r1.Nodes, "Save")
	b2 := findByLabel(r2.Nodes, "Save")
	if b1 == nil || b2 == nil {
		t.Fatal("expected Save button in both compiles")
	}
	if b1.NodeID != b2.NodeID {
		t.Errorf("NodeID not stable across identical captures: %q vs %q", b1.NodeID, b2.NodeID)
	}
}

func TestCompile_SkipsMissingNodeGracefully(t *testing.T) {
	cap := buildFixture()
	html := cap.DomTree[1]
	html.Children = append(html.Children, 9999) // dangling child id, never defined
	cap.DomTree[1] = html

	result := Compile(cap, Config{})
	if result.Nodes == nil {
		t.Fatal("expected partial compile to still emit nodes")
	}
}

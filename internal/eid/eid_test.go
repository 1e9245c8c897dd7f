package eid

import (
	"testing"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

func baseInput() Input {
	return Input{
		Kind:           snapshot.KindButton,
		Label:          "Show More",
		FrameID:        "frame-1",
		Region:         snapshot.RegionMain,
		GroupID:        "list-results",
		HeadingContext: "Results",
		Ordinal:        0,
	}
}

func TestComputeStableAcrossIdenticalInput(t *testing.T) {
	a := Compute(baseInput())
	b := Compute(baseInput())
	if a != b {
		t.Fatalf("expected stable EID, got %q != %q", a, b)
	}
}

func TestComputeIgnoresLabelWhitespaceAndCase(t *testing.T) {
	in1 := baseInput()
	in1.Label = "Show   More"
	in2 := baseInput()
	in2.Label = "show more"
	if Compute(in1) != Compute(in2) {
		t.Fatalf("expected whitespace/case-insensitive label identity")
	}
}

func TestComputeDistinctForDifferentShadowPath(t *testing.T) {
	in1 := baseInput()
	in2 := baseInput()
	in2.ShadowPath = []int64{42}
	if Compute(in1) == Compute(in2) {
		t.Fatalf("expected distinct EIDs for distinct shadow paths")
	}
}

func TestComputeDistinctForOrdinal(t *testing.T) {
	in1 := baseInput()
	in2 := baseInput()
	in2.Ordinal = 1
	if Compute(in1) == Compute(in2) {
		t.Fatalf("expected distinct EIDs for distinct ordinals")
	}
}

func TestComputePrefixedByKind(t *testing.T) {
	got := Compute(baseInput())
	if got[:len(string(snapshot.KindButton))+1] != "button-" {
		t.Fatalf("expected kind-prefixed EID, got %q", got)
	}
}

func TestComputeReadablePrefix(t *testing.T) {
	in := baseInput()
	in.Readable = true
	got := Compute(in)
	if got[:3] != "rd-" {
		t.Fatalf("expected rd- prefix, got %q", got)
	}
}

func TestOrdinalAssignerIncrementsPerBucket(t *testing.T) {
	a := NewOrdinalAssigner()
	b1 := Bucket{Region: snapshot.RegionMain, Kind: snapshot.KindButton, Label: "x"}
	b2 := Bucket{Region: snapshot.RegionMain, Kind: snapshot.KindButton, Label: "y"}

	if got := a.Next(b1); got != 0 {
		t.Fatalf("first ordinal for b1: got %d, want 0", got)
	}
	if got := a.Next(b1); got != 1 {
		t.Fatalf("second ordinal for b1: got %d, want 1", got)
	}
	if got := a.Next(b2); got != 0 {
		t.Fatalf("first ordinal for b2: got %d, want 0", got)
	}
}

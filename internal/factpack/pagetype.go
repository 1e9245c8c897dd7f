package factpack

import (
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// PageTypeLabel is the closed set of page classifications (§4.5 step 3).
type PageTypeLabel string

const (
	PageLogin        PageTypeLabel = "login"
	PageSignup       PageTypeLabel = "signup"
	PageCart         PageTypeLabel = "cart"
	PageCheckout     PageTypeLabel = "checkout"
	PageProduct      PageTypeLabel = "product"
	PageArticle      PageTypeLabel = "article"
	PageSearchResult PageTypeLabel = "search-results"
	PageUnknown      PageTypeLabel = "unknown"
)

// PageType is the classifier's verdict, carrying the winning score so
// callers can judge confidence.
type PageType struct {
	Label PageTypeLabel
	Score float64
}

// signal is one weighted vote contributed by a single evidence source.
type signal struct {
	label  PageTypeLabel
	weight float64
}

// urlPatternSignals and titlePatternSignals are matched as substrings
// against the lower-cased URL path / title.
var urlPatternSignals = []struct {
	pattern string
	label   PageTypeLabel
	weight  float64
}{
	{"/login", PageLogin, 0.5},
	{"/signin", PageLogin, 0.5},
	{"/signup", PageSignup, 0.5},
	{"/register", PageSignup, 0.4},
	{"/cart", PageCart, 0.5},
	{"/basket", PageCart, 0.4},
	{"/checkout", PageCheckout, 0.55},
	{"/product", PageProduct, 0.4},
	{"/p/", PageProduct, 0.3},
	{"/item", PageProduct, 0.3},
	{"/article", PageArticle, 0.4},
	{"/blog", PageArticle, 0.35},
	{"/search", PageSearchResult, 0.45},
	{"q=", PageSearchResult, 0.2},
}

var titlePatternSignals = []struct {
	pattern string
	label   PageTypeLabel
	weight  float64
}{
	{"log in", PageLogin, 0.3},
	{"sign in", PageLogin, 0.3},
	{"sign up", PageSignup, 0.3},
	{"create account", PageSignup, 0.3},
	{"shopping cart", PageCart, 0.3},
	{"checkout", PageCheckout, 0.3},
	{"search results", PageSearchResult, 0.3},
}

// classifyPageType votes URL patterns, title patterns, and in-page content
// signals toward a page type; the winner must clear cfg.MinPageTypeScore
// of the total votes cast, else unknown (§4.5 step 3).
func classifyPageType(snap *snapshot.BaseSnapshot, cfg Config) PageType {
	scores := make(map[PageTypeLabel]float64)
	var total float64

	url := strings.ToLower(snap.URL)
	for _, s := range urlPatternSignals {
		if strings.Contains(url, s.pattern) {
			scores[s.label] += s.weight
			total += s.weight
		}
	}

	title := strings.ToLower(snap.Title)
	for _, s := range titlePatternSignals {
		if strings.Contains(title, s.pattern) {
			scores[s.label] += s.weight
			total += s.weight
		}
	}

	for _, sig := range contentSignals(snap) {
		scores[sig.label] += sig.weight
		total += sig.weight
	}

	if total == 0 {
		return PageType{Label: PageUnknown}
	}

	var best PageTypeLabel
	var bestScore float64
	for label, score := range scores {
		if score > bestScore {
			best, bestScore = label, score
		}
	}

	normalized := bestScore / total
	if normalized < cfg.MinPageTypeScore {
		return PageType{Label: PageUnknown, Score: normalized}
	}
	return PageType{Label: best, Score: normalized}
}

// contentSignals derives page-type votes from the compiled node list: the
// presence of a password field strongly suggests login/signup, a
// card-number, CVC or expiry label or placeholder suggests checkout, etc.
func contentSignals(snap *snapshot.BaseSnapshot) []signal {
	var out []signal

	hasPassword := false
	hasEmail := false
	hasCardField := false
	hasPriceText := false
	hasArticleBody := false
	headingCount := 0

	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		switch strings.ToLower(n.Attributes.InputType) {
		case "password":
			hasPassword = true
		case "email":
			hasEmail = true
		}
		if n.Kind == snapshot.KindHeading {
			headingCount++
		}
		if n.Kind == snapshot.KindParagraph || n.Kind == snapshot.KindText {
			if len([]rune(n.Label)) > 200 {
				hasArticleBody = true
			}
		}
		label := strings.ToLower(n.Label + " " + n.Attributes.Placeholder)
		if strings.Contains(label, "card number") || strings.Contains(label, "cvc") || strings.Contains(label, "expir") {
			hasCardField = true
		}
		if strings.ContainsAny(n.Label, "$€£") {
			hasPriceText = true
		}
	}

	if hasPassword && hasEmail {
		out = append(out, signal{label: PageLogin, weight: 0.25})
	}
	if hasCardField {
		out = append(out, signal{label: PageCheckout, weight: 0.4})
	}
	if hasPriceText {
		out = append(out, signal{label: PageProduct, weight: 0.2})
		out = append(out, signal{label: PageCart, weight: 0.15})
	}
	if hasArticleBody && headingCount <= 2 {
		out = append(out, signal{label: PageArticle, weight: 0.25})
	}
	return out
}

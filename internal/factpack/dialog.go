package factpack

import (
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// DialogCategory is the closed classification a detected dialog falls
// into (§4.5 step 1).
type DialogCategory string

const (
	DialogCookieConsent DialogCategory = "cookie-consent"
	DialogAuth          DialogCategory = "auth"
	DialogError         DialogCategory = "error"
	DialogGeneric       DialogCategory = "generic"
)

// Dialog is a detected modal surface.
type Dialog struct {
	NodeID   string
	Label    string
	Category DialogCategory
}

// cookieKeywords, authKeywords, errorKeywords are matched against a
// dialog's own label plus the label of every node that shares its GroupID
// or lies in the dialog region (§4.5 step 1:
// "classifies ... by keyword/region heuristics").
var cookieKeywords = []string{"cookie", "consent", "privacy preferences", "gdpr", "accept all", "reject all"}
var authKeywords = []string{"sign in", "log in", "login", "password", "create account", "sign up"}
var errorKeywords = []string{"error", "something went wrong", "try again", "failed"}

// detectDialogs locates role=dialog / aria-modal elements and classifies
// each (§4.5 step 1).
func detectDialogs(snap *snapshot.BaseSnapshot) []Dialog {
	var out []Dialog
	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		if n.Kind != snapshot.KindDialog {
			continue
		}
		haystack := strings.ToLower(n.Label)
		for _, sib := range snap.Nodes {
			if sib.Where.GroupID == n.Where.GroupID || sib.Where.Region == snapshot.RegionDialog {
				haystack += " " + strings.ToLower(sib.Label)
			}
		}

		out = append(out, Dialog{
			NodeID:   n.NodeID,
			Label:    n.Label,
			Category: classifyDialog(haystack),
		})
	}
	return out
}

func classifyDialog(haystack string) DialogCategory {
	if containsAny(haystack, cookieKeywords) {
		return DialogCookieConsent
	}
	if containsAny(haystack, authKeywords) {
		return DialogAuth
	}
	if containsAny(haystack, errorKeywords) {
		return DialogError
	}
	return DialogGeneric
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

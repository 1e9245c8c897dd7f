package factpack

import (
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// SemanticType is the inferred purpose of a form field (§4.5 step 2).
type SemanticType string

const (
	SemEmail      SemanticType = "email"
	SemPassword   SemanticType = "password"
	SemUsername   SemanticType = "username"
	SemPhone      SemanticType = "phone"
	SemCardNumber SemanticType = "card_number"
	SemCardExpiry SemanticType = "card_expiry"
	SemCardCVC    SemanticType = "card_cvc"
	SemName       SemanticType = "name"
	SemAddress    SemanticType = "address"
	SemSearch     SemanticType = "search"
	SemOther      SemanticType = "other"
)

// Field is one extracted form field.
type Field struct {
	NodeID       string
	SemanticType SemanticType
	Required     bool
	Filled       bool
	Invalid      bool
}

// Form is one detected form region plus its computed completion facts
// (§4.5 step 2).
type Form struct {
	NodeID  string // empty for implicit (unwrapped) clusters
	Fields  []Field
	Submits []string // NodeIDs of attached submit-like buttons

	CompletionPct      float64
	ErrorCount         int
	CanSubmit          bool
	Dirty              bool
	RequiredCount      int
	FilledRequiredCount int
}

// detectForms identifies form regions — semantic (role=form), structural
// (<form> tag via snapshot.KindForm), or implicit input clusters — and
// computes each one's fields and completion facts (§4.5 step 2).
func detectForms(snap *snapshot.BaseSnapshot, cfg Config) []Form {
	var forms []Form

	claimed := make(map[string]bool)
	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		if n.Kind != snapshot.KindForm {
			continue
		}
		fields, submits := collectFormMembers(snap, n.Where.GroupID, claimed)
		forms = append(forms, buildForm(n.NodeID, fields, submits))
	}

	forms = append(forms, clusterUnclaimedFields(snap, claimed, cfg.ClusterDistancePx)...)

	return forms
}

// collectFormMembers gathers every field/submit node that belongs to
// groupID (the form's own group), marking each claimed so the implicit
// clustering pass never double-counts them.
func collectFormMembers(snap *snapshot.BaseSnapshot, groupID string, claimed map[string]bool) ([]Field, []string) {
	var fields []Field
	var submits []string

	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		if groupID == "" || n.Where.GroupID != groupID {
			continue
		}
		if isSubmitLike(n) {
			submits = append(submits, n.NodeID)
			claimed[n.NodeID] = true
			continue
		}
		if isFormField(n) {
			fields = append(fields, fieldOf(n))
			claimed[n.NodeID] = true
		}
	}
	return fields, submits
}

// clusterUnclaimedFields groups remaining, unclaimed form-field and
// submit-like nodes into implicit forms by spatial proximity: two nodes in
// document order join the same cluster when the vertical gap between
// their bounding boxes is within maxGapPx (§4.5 step 2: "implicit input
// clusters").
func clusterUnclaimedFields(snap *snapshot.BaseSnapshot, claimed map[string]bool, maxGapPx int) []Form {
	type member struct {
		node     *snapshot.ReadableNode
		isSubmit bool
	}
	var candidates []member
	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		if claimed[n.NodeID] {
			continue
		}
		if isSubmitLike(n) {
			candidates = append(candidates, member{node: n, isSubmit: true})
		} else if isFormField(n) {
			candidates = append(candidates, member{node: n})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var clusters [][]member
	var cur []member
	for _, m := range candidates {
		if len(cur) == 0 {
			cur = append(cur, m)
			continue
		}
		prev := cur[len(cur)-1].node.Layout.BBox
		gap := m.node.Layout.BBox.Y - (prev.Y + prev.H)
		if gap < 0 {
			gap = -gap
		}
		if gap <= maxGapPx {
			cur = append(cur, m)
		} else {
			clusters = append(clusters, cur)
			cur = []member{m}
		}
	}
	if len(cur) > 0 {
		clusters = append(clusters, cur)
	}

	var forms []Form
	for _, cluster := range clusters {
		var fields []Field
		var submits []string
		hasField := false
		for _, m := range cluster {
			if m.isSubmit {
				submits = append(submits, m.node.NodeID)
				continue
			}
			fields = append(fields, fieldOf(m.node))
			hasField = true
		}
		if !hasField {
			continue // a run of only submit-like buttons is not a form
		}
		forms = append(forms, buildForm("", fields, submits))
	}
	return forms
}

func buildForm(nodeID string, fields []Field, submits []string) Form {
	f := Form{NodeID: nodeID, Fields: fields, Submits: submits}

	for _, field := range fields {
		if field.Required {
			f.RequiredCount++
			if field.Filled {
				f.FilledRequiredCount++
			}
		}
		if field.Filled {
			f.Dirty = true
		}
		if field.Invalid {
			f.ErrorCount++
		}
	}

	if f.RequiredCount > 0 {
		f.CompletionPct = float64(f.FilledRequiredCount) / float64(f.RequiredCount)
	} else if len(fields) > 0 {
		filled := 0
		for _, field := range fields {
			if field.Filled {
				filled++
			}
		}
		f.CompletionPct = float64(filled) / float64(len(fields))
	}

	f.CanSubmit = len(submits) > 0 && f.ErrorCount == 0 && f.FilledRequiredCount == f.RequiredCount
	return f
}

func isFormField(n *snapshot.ReadableNode) bool {
	switch n.Kind {
	case snapshot.KindInput, snapshot.KindTextbox, snapshot.KindSearchbox, snapshot.KindTextarea,
		snapshot.KindCheckbox, snapshot.KindRadio, snapshot.KindSelect, snapshot.KindCombobox, snapshot.KindSwitch:
		return true
	}
	return false
}

func isSubmitLike(n *snapshot.ReadableNode) bool {
	if n.Kind != snapshot.KindButton {
		return false
	}
	label := strings.ToLower(n.Label)
	return strings.Contains(label, "submit") || strings.Contains(label, "sign in") ||
		strings.Contains(label, "sign up") || strings.Contains(label, "log in") ||
		strings.Contains(label, "continue") || strings.Contains(label, "save") ||
		strings.Contains(label, "checkout") || strings.Contains(label, "pay") ||
		strings.Contains(label, "confirm") || strings.ToLower(n.Attributes.InputType) == "submit"
}

// fieldOf builds a Field from a compiled node. A redacted sensitive value
// still counts as filled — RedactIfSensitive only masks a value that was
// non-empty to begin with (internal/compiler.RedactIfSensitive), so the
// sentinel itself is evidence the field has content.
func fieldOf(n *snapshot.ReadableNode) Field {
	return Field{
		NodeID:       n.NodeID,
		SemanticType: inferSemanticType(n),
		Required:     n.State.Required,
		Filled:       n.Attributes.Value != "",
		Invalid:      n.State.Invalid,
	}
}

// semanticKeyword pairs one label/placeholder keyword with the semantic
// type it implies.
type semanticKeyword struct {
	keyword string
	typ     SemanticType
}

// semanticKeywords maps label/placeholder keywords to a semantic type,
// checked after input type and autocomplete in the priority ladder
// (§4.5 step 2: "input type → autocomplete → label/placeholder keywords →
// naming patterns → kind fallback"). Declared as an ordered slice rather
// than a map so a label matching two keywords (e.g. both "email" and
// "phone" present) resolves to the same semantic type on every run; the
// earliest match wins.
var semanticKeywords = []semanticKeyword{
	{"email", SemEmail},
	{"e-mail", SemEmail},
	{"password", SemPassword},
	{"username", SemUsername},
	{"user name", SemUsername},
	{"phone", SemPhone},
	{"mobile", SemPhone},
	{"card number", SemCardNumber},
	{"card-number", SemCardNumber},
	{"expir", SemCardExpiry},
	{"cvc", SemCardCVC},
	{"cvv", SemCardCVC},
	{"security code", SemCardCVC},
	{"full name", SemName},
	{"first name", SemName},
	{"last name", SemName},
	{"address", SemAddress},
	{"street", SemAddress},
	{"city", SemAddress},
	{"postal", SemAddress},
	{"zip", SemAddress},
	{"search", SemSearch},
}

// autocompleteSemanticTypes maps the HTML autocomplete token directly to a
// semantic type, second in the priority ladder.
var autocompleteSemanticTypes = map[string]SemanticType{
	"email":           SemEmail,
	"current-password": SemPassword,
	"new-password":    SemPassword,
	"username":        SemUsername,
	"tel":             SemPhone,
	"cc-number":       SemCardNumber,
	"cc-exp":          SemCardExpiry,
	"cc-csc":          SemCardCVC,
	"name":            SemName,
	"street-address":  SemAddress,
	"postal-code":     SemAddress,
}

func inferSemanticType(n *snapshot.ReadableNode) SemanticType {
	if t, ok := inputTypeSemanticTypes[strings.ToLower(n.Attributes.InputType)]; ok {
		return t
	}
	if t, ok := autocompleteSemanticTypes[strings.ToLower(n.Attributes.Autocomplete)]; ok {
		return t
	}
	haystack := strings.ToLower(n.Label + " " + n.Attributes.Placeholder)
	for _, sk := range semanticKeywords {
		if strings.Contains(haystack, sk.keyword) {
			return sk.typ
		}
	}
	if n.Kind == snapshot.KindSearchbox {
		return SemSearch
	}
	return SemOther
}

// inputTypeSemanticTypes is the first, highest-priority rung of the
// ladder: the HTML input `type` attribute itself.
var inputTypeSemanticTypes = map[string]SemanticType{
	"email":    SemEmail,
	"password": SemPassword,
	"tel":      SemPhone,
	"search":   SemSearch,
}

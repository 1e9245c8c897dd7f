package compiler

import "github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"

// axRoleKinds maps AX roles to ReadableNode kinds. AX role wins over tag
// when present and non-empty (§4.2 step 1: "AX role wins; tag-based rules
// are fallbacks").
var axRoleKinds = map[string]snapshot.NodeKind{
	"button":        snapshot.KindButton,
	"link":          snapshot.KindLink,
	"textbox":       snapshot.KindTextbox,
	"searchbox":     snapshot.KindSearchbox,
	"combobox":      snapshot.KindCombobox,
	"listbox":       snapshot.KindSelect,
	"checkbox":      snapshot.KindCheckbox,
	"radio":         snapshot.KindRadio,
	"switch":        snapshot.KindSwitch,
	"slider":        snapshot.KindSlider,
	"menuitem":      snapshot.KindMenuItem,
	"option":        snapshot.KindOption,
	"tab":           snapshot.KindTab,
	"heading":       snapshot.KindHeading,
	"paragraph":     snapshot.KindParagraph,
	"staticText":    snapshot.KindText,
	"img":           snapshot.KindImage,
	"image":         snapshot.KindImage,
	"list":          snapshot.KindList,
	"listitem":      snapshot.KindListItem,
	"table":         snapshot.KindTable,
	"form":          snapshot.KindForm,
	"dialog":        snapshot.KindDialog,
	"alertdialog":   snapshot.KindDialog,
	"navigation":    snapshot.KindNavigation,
	"generic":       snapshot.KindGeneric,

	// Landmark roles are kept only as region carriers (§4.2 step 1).
	"main":             kindStructural,
	"banner":            kindStructural,
	"contentinfo":       kindStructural,
	"complementary":     kindStructural,
	"search":            kindStructural,
	"region":            kindStructural,
}

// kindStructural mirrors snapshot's unexported structural pseudo-kind; we
// can't reference the unexported constant across packages, so the compiler
// keeps its own sentinel and maps it to the exported concept at filter time.
const kindStructural snapshot.NodeKind = "structural"

// tagKinds maps DOM tag names to kinds, used only when no AX role (or DOM
// role attribute, checked first by the caller) resolved a kind (§4.2
// step 1: "tag-based rules are fallbacks").
var tagKinds = map[string]snapshot.NodeKind{
	"button":   snapshot.KindButton,
	"a":        snapshot.KindLink,
	"select":   snapshot.KindSelect,
	"textarea": snapshot.KindTextarea,
	"h1":       snapshot.KindHeading,
	"h2":       snapshot.KindHeading,
	"h3":       snapshot.KindHeading,
	"h4":       snapshot.KindHeading,
	"h5":       snapshot.KindHeading,
	"h6":       snapshot.KindHeading,
	"p":        snapshot.KindParagraph,
	"img":      snapshot.KindImage,
	"ul":       snapshot.KindList,
	"ol":       snapshot.KindList,
	"li":       snapshot.KindListItem,
	"table":    snapshot.KindTable,
	"form":     snapshot.KindForm,
	"nav":      snapshot.KindNavigation,
	"dialog":   snapshot.KindDialog,

	"main":    kindStructural,
	"header":  kindStructural,
	"footer":  kindStructural,
	"aside":   kindStructural,
	"section": kindStructural,
	"article": kindStructural,
}

// inputTypeKinds refines an <input> tag's kind by its `type` attribute.
var inputTypeKinds = map[string]snapshot.NodeKind{
	"checkbox": snapshot.KindCheckbox,
	"radio":    snapshot.KindRadio,
	"search":   snapshot.KindSearchbox,
	"submit":   snapshot.KindButton,
	"button":   snapshot.KindButton,
	"reset":    snapshot.KindButton,
	"image":    snapshot.KindButton,
	"range":    snapshot.KindSlider,
}

// classify determines a node's kind from its AX role, DOM tag, and DOM
// role attribute (§4.2 step 1).
func classify(axRole, tag, domRole, inputType string) snapshot.NodeKind {
	if axRole != "" {
		if k, ok := axRoleKinds[axRole]; ok {
			return k
		}
	}
	if domRole != "" {
		if k, ok := axRoleKinds[domRole]; ok {
			return k
		}
	}
	if tag == "input" {
		if k, ok := inputTypeKinds[inputType]; ok {
			return k
		}
		return snapshot.KindInput
	}
	if k, ok := tagKinds[tag]; ok {
		return k
	}
	return snapshot.KindGeneric
}

package compiler

import (
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/cdpreader"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// axLandmarkRegions maps AX landmark roles to SemanticRegion (§4.2 step 3
// priority 1: "AX landmark role").
var axLandmarkRegions = map[string]snapshot.SemanticRegion{
	"banner":        snapshot.RegionHeader,
	"navigation":    snapshot.RegionNav,
	"main":          snapshot.RegionMain,
	"complementary": snapshot.RegionAside,
	"contentinfo":   snapshot.RegionFooter,
	"dialog":        snapshot.RegionDialog,
	"alertdialog":   snapshot.RegionDialog,
	"form":          snapshot.RegionForm,
	"search":        snapshot.RegionSearch,
}

// sectioningTagRegions maps HTML5 sectioning tags to SemanticRegion
// (§4.2 step 3 priority 3).
var sectioningTagRegions = map[string]snapshot.SemanticRegion{
	"header": snapshot.RegionHeader,
	"nav":    snapshot.RegionNav,
	"main":   snapshot.RegionMain,
	"aside":  snapshot.RegionAside,
	"footer": snapshot.RegionFooter,
	"form":   snapshot.RegionForm,
}

// regionOf resolves a node's region by AX landmark role, then DOM role
// attribute, then HTML5 sectioning tag, then nearest ancestor carrying one
// of the above (§4.2 step 3).
func regionOf(dom map[int64]cdpreader.RawDomNode, backendID int64, axRole string) snapshot.SemanticRegion {
	if r, ok := axLandmarkRegions[axRole]; ok {
		return r
	}

	node, ok := dom[backendID]
	if !ok {
		return snapshot.RegionUnknown
	}
	if domRole := strings.ToLower(node.Attributes["role"]); domRole != "" {
		if r, ok := axLandmarkRegions[domRole]; ok {
			return r
		}
	}
	if r, ok := sectioningTagRegions[strings.ToLower(node.NodeName)]; ok {
		return r
	}

	var found snapshot.SemanticRegion
	ancestors(dom, backendID, func(a cdpreader.RawDomNode) bool {
		if domRole := strings.ToLower(a.Attributes["role"]); domRole != "" {
			if r, ok := axLandmarkRegions[domRole]; ok {
				found = r
				return true
			}
		}
		if r, ok := sectioningTagRegions[strings.ToLower(a.NodeName)]; ok {
			found = r
			return true
		}
		return false
	})
	if found != "" {
		return found
	}
	return snapshot.RegionUnknown
}

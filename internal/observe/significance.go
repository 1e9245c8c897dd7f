package observe

// computeSignificance sums one point per true signal across all four
// signal groups (semantic, visual, structural, temporal), producing the
// 0..12 score named in §3's DOMObservation shape.
func computeSignificance(s Signals) int {
	score := 0

	// Semantic group: what the subtree claims to be.
	if s.HasAlertRole {
		score++
	}
	if s.HasAriaLive {
		score++
	}
	if s.IsDialog {
		score++
	}

	// Visual group: how the subtree presents.
	if s.IsFixedOrSticky {
		score++
	}
	if s.HasHighZIndex {
		score++
	}
	if s.CoversSignificantViewport {
		score++
	}
	if s.IsVisibleInViewport {
		score++
	}

	// Structural group: where the subtree sits and what it contains.
	if s.IsBodyDirectChild {
		score++
	}
	if s.ContainsInteractiveElements {
		score++
	}
	if s.HasNonTrivialText {
		score++
	}

	// Temporal group: when it showed up and how long it lasted.
	if s.AppearedAfterDelay {
		score++
	}
	if s.WasShortLived {
		score++
	}

	return score
}

package observe

import (
	"testing"
	"time"
)

func baseTime() time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
}

func dialogObservation() Observation {
	return Observation{
		Type: KindAppeared,
		Signals: Signals{
			IsDialog:                    true,
			HasAriaLive:                 true,
			IsFixedOrSticky:             true,
			HasHighZIndex:               true,
			CoversSignificantViewport:   true,
			IsBodyDirectChild:           true,
			ContainsInteractiveElements: true,
			IsVisibleInViewport:         true,
			HasNonTrivialText:           true,
		},
		Content: Content{Tag: "div", Role: "dialog", Text: "We use cookies to improve your experience."},
	}
}

func TestComputeSignificance_AllSignals(t *testing.T) {
	s := Signals{
		HasAlertRole: true, HasAriaLive: true, IsDialog: true,
		IsFixedOrSticky: true, HasHighZIndex: true, CoversSignificantViewport: true, IsVisibleInViewport: true,
		IsBodyDirectChild: true, ContainsInteractiveElements: true, HasNonTrivialText: true,
		AppearedAfterDelay: true, WasShortLived: true,
	}
	if got := computeSignificance(s); got != 12 {
		t.Errorf("got %d, want 12", got)
	}
}

func TestComputeSignificance_NoSignals(t *testing.T) {
	if got := computeSignificance(Signals{}); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestAccumulator_CookieDialogSurfacedAboveFloor(t *testing.T) {
	acc := NewAccumulator(Config{SignificanceFloor: 5})
	now := baseTime()

	acc.Record(dialogObservation(), sourceJS, now)

	during, since := acc.Surfaced(now.Add(time.Millisecond))
	if len(during) != 0 {
		t.Fatalf("got %d duringAction, want 0 (not in an action)", len(during))
	}
	if len(since) != 1 {
		t.Fatalf("got %d sincePrevious, want 1", len(since))
	}
	if since[0].Significance < 5 {
		t.Errorf("significance %d did not clear floor of 5", since[0].Significance)
	}
	if !since[0].Reported {
		t.Error("expected Reported=true after Surfaced")
	}
}

func TestAccumulator_BelowFloorNotSurfaced(t *testing.T) {
	acc := NewAccumulator(Config{SignificanceFloor: 10})
	now := baseTime()

	acc.Record(Observation{Type: KindAppeared, Content: Content{Tag: "span", Text: "x"}}, sourceJS, now)

	_, since := acc.Surfaced(now)
	if len(since) != 0 {
		t.Fatalf("got %d, want 0 (below floor)", len(since))
	}
}

func TestAccumulator_DuringActionBucketing(t *testing.T) {
	acc := NewAccumulator(Config{SignificanceFloor: 1})
	now := baseTime()

	acc.BeginAction(now)
	acc.Record(dialogObservation(), sourceJS, now.Add(10*time.Millisecond))
	acc.EndAction()
	acc.Record(Observation{
		Type:    KindAppeared,
		Signals: Signals{HasNonTrivialText: true},
		Content: Content{Tag: "div", Text: "a completely different toast notice"},
	}, sourceJS, now.Add(time.Second))

	during, since := acc.Surfaced(now.Add(2 * time.Second))
	if len(during) != 1 {
		t.Fatalf("got %d duringAction, want 1", len(during))
	}
	if len(since) != 1 {
		t.Fatalf("got %d sincePrevious, want 1", len(since))
	}
}

func TestAccumulator_BeginActionClearsPreviousDuringBucket(t *testing.T) {
	acc := NewAccumulator(Config{SignificanceFloor: 1})
	now := baseTime()

	acc.BeginAction(now)
	acc.Record(dialogObservation(), sourceJS, now)
	acc.EndAction()

	acc.BeginAction(now.Add(time.Second))
	during, _ := acc.Surfaced(now.Add(time.Second))
	if len(during) != 0 {
		t.Fatalf("got %d, want 0 (new action should start with an empty duringAction buffer)", len(during))
	}
}

func TestDeduper_CrossSourceDuplicateDiscardsCDP(t *testing.T) {
	d := newDeduper()
	now := baseTime()

	js := rawObservation{obs: Observation{Type: KindAppeared, Content: Content{Tag: "div", Text: "Loading"}}, source: sourceJS, at: now}
	cdp := rawObservation{obs: Observation{Type: KindAppeared, Content: Content{Tag: "div", Text: "Loading"}}, source: sourceCDP, at: now.Add(5 * time.Millisecond)}

	if d.isDuplicate(js) {
		t.Fatal("first observation should never be a duplicate")
	}
	if !d.isDuplicate(cdp) {
		t.Fatal("expected CDP duplicate of a just-seen JS observation to be discarded")
	}
}

func TestDeduper_DistinctContentNotDuplicate(t *testing.T) {
	d := newDeduper()
	now := baseTime()

	a := rawObservation{obs: Observation{Type: KindAppeared, Content: Content{Tag: "div", Text: "Loading"}}, source: sourceJS, at: now}
	b := rawObservation{obs: Observation{Type: KindAppeared, Content: Content{Tag: "div", Text: "Error"}}, source: sourceCDP, at: now}

	if d.isDuplicate(a) {
		t.Fatal("first observation should never be a duplicate")
	}
	if d.isDuplicate(b) {
		t.Fatal("distinct text should not be deduped")
	}
}

func TestTruncateText(t *testing.T) {
	long := ""
	for i := 0; i < 150; i++ {
		long += "a"
	}
	got := truncateText(long)
	if len([]rune(got)) != maxTextLen+3 {
		t.Errorf("got length %d, want %d (cap + ellipsis)", len([]rune(got)), maxTextLen+3)
	}
	short := "short text"
	if truncateText(short) != short {
		t.Errorf("short text should be unchanged, got %q", truncateText(short))
	}
}

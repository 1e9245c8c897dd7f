package observe

import (
	"sync"
	"time"
)

// Config tunes the accumulator's bounds and surfacing threshold.
type Config struct {
	// SignificanceFloor is the minimum score an observation must clear to
	// be surfaced in a response (§4.6: "surfaced ... when significance >=
	// a configurable floor").
	SignificanceFloor int
	// MaxDuringActionCount bounds the duringAction buffer by count.
	MaxDuringActionCount int
	// MaxDuringActionWindow bounds the duringAction buffer by wall time,
	// relative to BeginAction (§4.1: "bounded by wall time and count").
	MaxDuringActionWindow time.Duration
	// ReportedRetention is how long a surfaced observation is kept around
	// afterward so a later call can still update its age/duration before
	// it is finally dropped (§4.6: "retains it briefly").
	ReportedRetention time.Duration
}

func (c *Config) defaults() {
	if c.SignificanceFloor <= 0 {
		c.SignificanceFloor = 3
	}
	if c.MaxDuringActionCount <= 0 {
		c.MaxDuringActionCount = 200
	}
	if c.MaxDuringActionWindow <= 0 {
		c.MaxDuringActionWindow = 30 * time.Second
	}
	if c.ReportedRetention <= 0 {
		c.ReportedRetention = 5 * time.Second
	}
}

// Accumulator maintains the two rolling observation buffers for one page
// (§4.6). It is owned by the page and, per the concurrency model, mutated
// only under the page's mutex by callers — but it carries its own lock too
// so it can be exercised and tested standalone.
type Accumulator struct {
	mu  sync.Mutex
	cfg Config

	dedup *deduper

	duringAction  []trackedObservation
	sincePrevious []trackedObservation

	inAction      bool
	actionStarted time.Time
}

type trackedObservation struct {
	obs       Observation
	expiresAt time.Time // zero until Reported is set
}

// NewAccumulator creates an Accumulator with cfg, filling in defaults.
func NewAccumulator(cfg Config) *Accumulator {
	cfg.defaults()
	return &Accumulator{cfg: cfg, dedup: newDeduper()}
}

// BeginAction marks the start of an action's execution window; subsequent
// Record calls land in duringAction until EndAction (§4.6 two-bucket
// model).
func (a *Accumulator) BeginAction(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inAction = true
	a.actionStarted = now
	a.duringAction = nil
}

// EndAction marks the end of an action's execution window; subsequent
// Record calls land in sincePrevious.
func (a *Accumulator) EndAction() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inAction = false
}

// Record ingests a raw observation from either source, deduping,
// truncating its text, scoring its significance, and filing it into the
// active bucket.
func (a *Accumulator) Record(obs Observation, source recordSource, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ro := rawObservation{obs: obs, source: source, at: at}
	if a.dedup.isDuplicate(ro) {
		return
	}

	obs.Content.Text = truncateText(obs.Content.Text)
	obs.Significance = computeSignificance(obs.Signals)
	obs.TimestampMs = at.UnixMilli()

	tracked := trackedObservation{obs: obs}

	if a.inAction {
		if !a.actionStarted.IsZero() && at.Sub(a.actionStarted) > a.cfg.MaxDuringActionWindow {
			return // outside the action's bounded wall-time window
		}
		a.duringAction = append(a.duringAction, tracked)
		if len(a.duringAction) > a.cfg.MaxDuringActionCount {
			a.duringAction = a.duringAction[len(a.duringAction)-a.cfg.MaxDuringActionCount:]
		}
		return
	}

	a.sincePrevious = append(a.sincePrevious, tracked)
}

// Surfaced returns the (duringAction, sincePrevious) observations clearing
// the significance floor, marking each Reported and scheduling it for
// retention-window expiry. Call once per tool-call response.
func (a *Accumulator) Surfaced(now time.Time) (duringAction, sincePrevious []Observation) {
	a.mu.Lock()
	defer a.mu.Unlock()

	duringAction = a.surface(a.duringAction, now)
	sincePrevious = a.surface(a.sincePrevious, now)
	return duringAction, sincePrevious
}

func (a *Accumulator) surface(bucket []trackedObservation, now time.Time) []Observation {
	var out []Observation
	for i := range bucket {
		if bucket[i].obs.Significance < a.cfg.SignificanceFloor {
			continue
		}
		bucket[i].obs.Reported = true
		bucket[i].expiresAt = now.Add(a.cfg.ReportedRetention)
		out = append(out, bucket[i].obs)
	}
	return out
}

// DrainSincePrevious clears expired/reported entries from sincePrevious
// after a response has been constructed (§3 invariant I4 analogue: state
// is only replaced once the response built on it is finalized).
func (a *Accumulator) DrainSincePrevious(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sincePrevious = dropExpired(a.sincePrevious, now)
}

func dropExpired(bucket []trackedObservation, now time.Time) []trackedObservation {
	var kept []trackedObservation
	for _, t := range bucket {
		if !t.obs.Reported {
			kept = append(kept, t)
			continue
		}
		if t.expiresAt.IsZero() || now.Before(t.expiresAt) {
			kept = append(kept, t)
		}
	}
	return kept
}

package observe

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

//go:embed observer.js
var observerJS []byte

// bindingName is the Runtime binding the injected script calls back
// through. The script is evaluated in the page's main frame once per Start
// call.
const bindingName = "__athenaObserverBinding"

// PageObserver wires an Accumulator to a live page: it injects the
// watcher script, listens for its binding calls, and feeds parsed reports
// into the accumulator. Grounded on the teacher's Observer.injectJS/
// listenBinding pair (domwatch/internal/observer/observer.go), generalized
// from raw mutation records to the appeared/disappeared/text-changed
// report shape this spec defines.
type PageObserver struct {
	page *rod.Page
	acc  *Accumulator
	log  *slog.Logger

	stop func()
}

// NewPageObserver creates a PageObserver for page, backed by acc.
func NewPageObserver(page *rod.Page, acc *Accumulator, log *slog.Logger) *PageObserver {
	if log == nil {
		log = slog.Default()
	}
	return &PageObserver{page: page, acc: acc, log: log}
}

// Start injects the watcher script and begins listening for its reports.
// The script is evaluated once; nothing detects a navigation that tears it
// down, and nothing re-injects it afterwards unless Start is called again.
func (p *PageObserver) Start() error {
	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(p.page); err != nil {
		p.log.Warn("observe: add binding failed (may already exist)", "error", err)
	}

	ctx, cancel := context.WithCancel(p.page.GetContext())
	stopEvents := p.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != bindingName {
			return
		}
		p.handlePayload(e.Payload)
	})
	go stopEvents()
	p.stop = cancel

	if _, err := p.page.Eval(string(observerJS)); err != nil {
		return fmt.Errorf("observe: inject watcher script: %w", err)
	}
	return nil
}

// Stop tears down the event listener. The injected script itself dies
// with the page/frame on navigation; nothing to undo there.
func (p *PageObserver) Stop() {
	if p.stop != nil {
		p.stop()
	}
}

// jsReport mirrors the object shape the injected script posts through the
// binding: one per appeared/disappeared/text-changed event.
type jsReport struct {
	Type    string  `json:"type"`
	Tag     string  `json:"tag"`
	Role    string  `json:"role"`
	Text    string  `json:"text"`
	Signals struct {
		HasAlertRole                bool `json:"hasAlertRole"`
		HasAriaLive                 bool `json:"hasAriaLive"`
		IsDialog                    bool `json:"isDialog"`
		IsFixedOrSticky             bool `json:"isFixedOrSticky"`
		HasHighZIndex               bool `json:"hasHighZIndex"`
		CoversSignificantViewport   bool `json:"coversSignificantViewport"`
		IsBodyDirectChild           bool `json:"isBodyDirectChild"`
		ContainsInteractiveElements bool `json:"containsInteractiveElements"`
		IsVisibleInViewport         bool `json:"isVisibleInViewport"`
		HasNonTrivialText           bool `json:"hasNonTrivialText"`
		AppearedAfterDelay          bool `json:"appearedAfterDelay"`
		WasShortLived               bool `json:"wasShortLived"`
	} `json:"signals"`
	HasInteractives bool `json:"hasInteractives"`
}

func (p *PageObserver) handlePayload(payload string) {
	var reports []jsReport
	if err := json.Unmarshal([]byte(payload), &reports); err != nil {
		p.log.Warn("observe: parse binding payload", "error", err)
		return
	}

	now := time.Now()
	for _, r := range reports {
		obs := Observation{
			Type: Kind(r.Type),
			Signals: Signals{
				HasAlertRole:                r.Signals.HasAlertRole,
				HasAriaLive:                 r.Signals.HasAriaLive,
				IsDialog:                    r.Signals.IsDialog,
				IsFixedOrSticky:             r.Signals.IsFixedOrSticky,
				HasHighZIndex:               r.Signals.HasHighZIndex,
				CoversSignificantViewport:   r.Signals.CoversSignificantViewport,
				IsBodyDirectChild:           r.Signals.IsBodyDirectChild,
				ContainsInteractiveElements: r.Signals.ContainsInteractiveElements,
				IsVisibleInViewport:         r.Signals.IsVisibleInViewport,
				HasNonTrivialText:           r.Signals.HasNonTrivialText,
				AppearedAfterDelay:          r.Signals.AppearedAfterDelay,
				WasShortLived:               r.Signals.WasShortLived,
			},
			Content: Content{
				Tag:             r.Tag,
				Role:            r.Role,
				Text:            r.Text,
				HasInteractives: r.HasInteractives,
			},
		}
		p.acc.Record(obs, sourceJS, now)
	}
}

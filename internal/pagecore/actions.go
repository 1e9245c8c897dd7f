package pagecore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/render"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// TargetDescriptor is the agent-facing target selector for an action
// (§6: "at minimum { eid? }"). The core translates EID to the latest known
// backend_node_id for that element in the current snapshot.
type TargetDescriptor struct {
	EID string
}

// ClickParams, TypeParams, PressParams, and ScrollParams are the per-action
// parameter shapes named by §6 (action_params).
type ClickParams struct{}

type TypeParams struct {
	Text string
}

type PressParams struct {
	Key string // e.g. "Enter", "Tab", "Escape"
}

type ScrollParams struct {
	DeltaX, DeltaY float64
}

// Executor dispatches the actual mouse/keyboard action (§1: "action
// executors" are an external collaborator; §6: "the action itself is
// executed by C1's collaborator"). rodExecutor below is the reference
// implementation this repo ships so the core is exercisable end-to-end.
type Executor interface {
	Click(ctx context.Context, page *rod.Page, backendNodeID int64, params ClickParams) error
	Type(ctx context.Context, page *rod.Page, backendNodeID int64, params TypeParams) error
	Press(ctx context.Context, page *rod.Page, params PressParams) error
	Scroll(ctx context.Context, page *rod.Page, backendNodeID int64, params ScrollParams) error
}

// resolveTarget translates td.EID to the node it currently names in the
// latest snapshot, rejecting with a Resolution error when the eid is
// absent or stale (§6, §7 Resolution).
func (pc *PageCore) resolveTarget(td TargetDescriptor) (*snapshot.ReadableNode, error) {
	if pc.prev == nil {
		return nil, &Error{Kind: KindResolution, Reason: "no snapshot captured yet for this page"}
	}
	if td.EID == "" {
		return nil, &Error{Kind: KindResolution, Reason: "target descriptor missing eid"}
	}
	n := pc.prev.NodeByEID(td.EID)
	if n == nil {
		suggestions := nearestEIDs(pc.prev, td.EID)
		return nil, &Error{Kind: KindResolution, Reason: fmt.Sprintf("eid %q not found in latest snapshot", td.EID), Suggestions: suggestions}
	}
	return n, nil
}

// nearestEIDs offers a short list of actionable EIDs as disambiguation
// suggestions when a target failed to resolve (§7: "surfaced with
// suggestions via the Query Engine's disambiguation output when
// available"). A handful of the current actionables is a reasonable
// stand-in for a full fuzzy re-query here: the agent can inspect the list
// and retry with a better target.
func nearestEIDs(snap *snapshot.BaseSnapshot, want string) []string {
	const maxSuggestions = 5
	all := snap.Actionables(false)
	out := make([]string, 0, maxSuggestions)
	for _, n := range all {
		out = append(out, n.NodeID)
		if len(out) >= maxSuggestions {
			break
		}
	}
	return out
}

// runAction wraps a single action in an observation window and returns the
// resulting perception delta (§6: "the core is responsible for wrapping
// the action in an observation window and returning the resulting
// delta"). Action failures are reported but never prevent the perception
// response from being returned (§7 Action-failure: "the core still returns
// a perception response").
func (pc *PageCore) runAction(ctx context.Context, exec Executor, opts PerceiveOptions, do func(Executor) error) (render.Output, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.acc.BeginAction(time.Now())
	actionErr := do(exec)
	pc.acc.EndAction()

	out, err := pc.captureAndRender(ctx, opts)
	if err != nil {
		return out, err
	}
	if actionErr != nil {
		return out, &Error{Kind: KindActionFailure, Reason: actionErr.Error(), Err: actionErr}
	}
	return out, nil
}

// ActClick resolves td to a backend node and dispatches a click (§6:
// act-click). opts configures the resulting perception delta the same way
// Perceive's does (§9).
func (pc *PageCore) ActClick(ctx context.Context, exec Executor, td TargetDescriptor, params ClickParams, opts PerceiveOptions) (render.Output, error) {
	pc.mu.Lock()
	node, err := pc.resolveTarget(td)
	pc.mu.Unlock()
	if err != nil {
		return render.Output{}, err
	}
	backendID := node.BackendNodeID
	return pc.runAction(ctx, exec, opts, func(e Executor) error {
		return e.Click(ctx, pc.page, backendID, params)
	})
}

// ActType resolves td to a backend node and dispatches text input (§6:
// act-type).
func (pc *PageCore) ActType(ctx context.Context, exec Executor, td TargetDescriptor, params TypeParams, opts PerceiveOptions) (render.Output, error) {
	pc.mu.Lock()
	node, err := pc.resolveTarget(td)
	pc.mu.Unlock()
	if err != nil {
		return render.Output{}, err
	}
	backendID := node.BackendNodeID
	return pc.runAction(ctx, exec, opts, func(e Executor) error {
		return e.Type(ctx, pc.page, backendID, params)
	})
}

// ActPress dispatches a keyboard key press against whatever currently has
// focus — no target resolution, since a key press is global dispatch, not
// an element-targeted gesture (§6: act-press).
func (pc *PageCore) ActPress(ctx context.Context, exec Executor, params PressParams, opts PerceiveOptions) (render.Output, error) {
	return pc.runAction(ctx, exec, opts, func(e Executor) error {
		return e.Press(ctx, pc.page, params)
	})
}

// ActScroll dispatches a scroll, optionally targeted at an element (scroll
// it into view first) or else scrolling the viewport directly (§6:
// act-scroll).
func (pc *PageCore) ActScroll(ctx context.Context, exec Executor, td TargetDescriptor, params ScrollParams, opts PerceiveOptions) (render.Output, error) {
	var backendID int64
	if td.EID != "" {
		pc.mu.Lock()
		node, err := pc.resolveTarget(td)
		pc.mu.Unlock()
		if err != nil {
			return render.Output{}, err
		}
		backendID = node.BackendNodeID
	}
	return pc.runAction(ctx, exec, opts, func(e Executor) error {
		return e.Scroll(ctx, pc.page, backendID, params)
	})
}

// rodExecutor is the reference action executor, grounded on go-rod's
// element/keyboard/mouse APIs the same way domwatch/internal/browser uses
// go-rod for tab lifecycle — backend node ids are resolved to elements the
// way cdpreader already casts them for DOM.getBoxModel (proto.
// DOMBackendNodeID(id)).
type rodExecutor struct{}

// NewRodExecutor returns the default Executor backed by go-rod.
func NewRodExecutor() Executor { return rodExecutor{} }

func (rodExecutor) element(page *rod.Page, backendNodeID int64) (*rod.Element, error) {
	el, err := page.ElementFromBackendID(proto.DOMBackendNodeID(backendNodeID))
	if err != nil {
		return nil, fmt.Errorf("pagecore: resolve backend node %d: %w", backendNodeID, err)
	}
	return el, nil
}

func (r rodExecutor) Click(ctx context.Context, page *rod.Page, backendNodeID int64, _ ClickParams) error {
	el, err := r.element(page, backendNodeID)
	if err != nil {
		return err
	}
	return el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (r rodExecutor) Type(ctx context.Context, page *rod.Page, backendNodeID int64, params TypeParams) error {
	el, err := r.element(page, backendNodeID)
	if err != nil {
		return err
	}
	return el.Context(ctx).Input(params.Text)
}

func (rodExecutor) Press(ctx context.Context, page *rod.Page, params PressParams) error {
	key, ok := namedKeys[params.Key]
	if !ok {
		return fmt.Errorf("pagecore: unknown key %q", params.Key)
	}
	return page.Context(ctx).Keyboard.Type(key)
}

func (r rodExecutor) Scroll(ctx context.Context, page *rod.Page, backendNodeID int64, params ScrollParams) error {
	if backendNodeID != 0 {
		el, err := r.element(page, backendNodeID)
		if err != nil {
			return err
		}
		if err := el.Context(ctx).ScrollIntoView(); err != nil {
			return err
		}
	}
	return page.Context(ctx).Mouse.Scroll(params.DeltaX, params.DeltaY, 1)
}

// namedKeys maps the agent-facing key names act-press accepts to go-rod's
// input.Key constants.
var namedKeys = map[string]input.Key{
	"Enter":      input.Enter,
	"Tab":        input.Tab,
	"Escape":     input.Escape,
	"Backspace":  input.Backspace,
	"Delete":     input.Delete,
	"Space":      input.Space,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
}

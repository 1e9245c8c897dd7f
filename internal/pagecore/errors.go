package pagecore

import "errors"

// ErrorKind is the closed taxonomy of error categories the core surfaces at
// its boundary (§7 ERROR HANDLING DESIGN), named exactly after the
// abstract taxonomy so a transport adapter can map them to a stable
// wire-level error_kind without re-deriving the categories itself.
type ErrorKind string

const (
	// KindTransport covers page handle unknown, CDP channel closed, or the
	// page navigating away mid-call. Fatal to the tool call.
	KindTransport ErrorKind = "transport"
	// KindResolution covers an agent-provided target that did not resolve
	// to a current EID.
	KindResolution ErrorKind = "resolution"
	// KindActionFailure covers the external action executor reporting
	// failure; the core still returns a perception response.
	KindActionFailure ErrorKind = "action_failure"
)

// Sentinel errors for errors.Is checks at the transport boundary, mirroring
// domwatch/internal/browser/manager.go's fmt.Errorf("browser: ...") wrapped-
// error convention (component-prefixed messages, %w-compatible).
var (
	ErrPageUnknown   = errors.New("pagecore: page unknown")
	ErrChannelClosed = errors.New("pagecore: channel closed")
)

// Error is the structured error the core returns; transport adapters turn
// it into the wire-level {status, error_kind, reason} shape (§7: "responses
// always carry a machine-readable status and ... a short human-readable
// reason").
type Error struct {
	Kind   ErrorKind
	Reason string
	// Suggestions carries up to five current actionable EIDs, in document
	// order, that resolveTarget offers when a Resolution error's eid was not
	// found; they are not ranked against the missing eid.
	Suggestions []string
	Err         error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

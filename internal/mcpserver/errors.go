package mcpserver

import (
	"encoding/json"
	"errors"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/pagecore"
)

// wireError is the {status, error_kind, reason} shape spec.md §7 requires
// at the transport boundary ("responses always carry a machine-readable
// status and ... a short human-readable reason").
type wireError struct {
	Status      string   `json:"status"`
	ErrorKind   string   `json:"error_kind,omitempty"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// toolError turns any endpoint error into the wire error shape, preserving
// pagecore's ErrorKind/Suggestions when present. It always returns a
// non-nil error whose Error() is the JSON payload the agent sees.
func toolError(err error) error {
	var perr *pagecore.Error
	we := wireError{Status: "error", Reason: err.Error()}
	if errors.As(err, &perr) {
		we.ErrorKind = string(perr.Kind)
		we.Reason = perr.Reason
		we.Suggestions = perr.Suggestions
	}
	data, marshalErr := json.Marshal(we)
	if marshalErr != nil {
		return err
	}
	return errors.New(string(data))
}

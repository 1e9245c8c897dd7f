// Package shield provides reusable HTTP security middleware: security
// headers, body limits, request tracing, flash messages, and HEAD method
// handling.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
//	r.Use(shield.MaxFormBody(64 * 1024))
//	r.Use(shield.TraceID)
//	r.Use(shield.Flash)
//	r.Use(shield.HeadToGet)
//
// Or apply the default stack in one call:
//
//	for _, mw := range shield.DefaultBOStack() {
//	    r.Use(mw)
//	}
package shield

import (
	"context"
	"net/http"
)

type contextKey string

const (
	// LoggerKey is the context key for the per-request structured logger.
	LoggerKey contextKey = "shield_logger"

	// FlashKey is the context key for flash messages.
	FlashKey contextKey = "shield_flash"
)

// FlashMessage represents a one-time notification shown to the user.
type FlashMessage struct {
	Type    string // "success" or "error"
	Message string
}

// GetFlash retrieves the flash message from the request context.
func GetFlash(ctx context.Context) *FlashMessage {
	v, _ := ctx.Value(FlashKey).(*FlashMessage)
	return v
}

// DefaultBOStack returns the standard middleware stack applied to the
// debug/health router: HeadToGet → SecurityHeaders → MaxFormBody →
// TraceID → Flash.
func DefaultBOStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		MaxFormBody(64 * 1024),
		TraceID,
		Flash,
	}
}

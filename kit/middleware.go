package kit

import "context"

// Endpoint is the Go-kit style unit of business logic: a function from a
// typed request to a typed response, independent of transport.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior (logging,
// auth, tracing) without the endpoint itself knowing about it.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first one listed runs outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

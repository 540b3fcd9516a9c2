package middleware

import "net/http"

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes mws so the first one sees the request first.
// Nil entries are skipped, which lets optional layers be passed inline.
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		return Wrap(final, mws...)
	}
}

// Wrap applies mws to h, outermost first.
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		h = mws[i](h)
	}
	return h
}

// When returns mw if enabled and nil otherwise.
func When(enabled bool, mw Middleware) Middleware {
	if !enabled {
		return nil
	}
	return mw
}

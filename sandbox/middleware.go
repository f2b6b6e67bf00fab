package sandbox

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Authenticator validates the Authorization header before a request reaches
// an order handler.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) error
}

// AuthenticatorFunc lifts bare functions into [Authenticator].
type AuthenticatorFunc func(ctx context.Context, key string) error

// Authenticate validates the key using the wrapped function.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, key string) error {
	return f(ctx, key)
}

// keyAuthenticator accepts exactly the configured service key. The WorldPay
// contract sends the raw key, not a Bearer scheme.
func keyAuthenticator(serviceKey string) Authenticator {
	return AuthenticatorFunc(func(_ context.Context, key string) error {
		if key != serviceKey {
			return errInvalidKey
		}
		return nil
	})
}

func (g *Gateway) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get("Authorization"))
		if key == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			return
		}
		if err := g.auth.Authenticate(r.Context(), key); err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid service key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestContext captures the request metadata the gateway cares about, for
// handlers and logs.
type RequestContext struct {
	// Service or client key presented by the caller.
	Authorization string
	// Standard client user agent.
	UserAgent string
	// Platform/library/API descriptor sent on token endpoints.
	//
	// Example: linux;amd64;go1.25.0;0.2.0;v1;go;world pay;
	ClientUserAgent string
	// Caller address, recorded as the shopper IP for order legs.
	RemoteAddr string
}

type requestContextKey struct{}

func requestContextFromRequest(r *http.Request) *RequestContext {
	return &RequestContext{
		Authorization:   strings.TrimSpace(r.Header.Get("Authorization")),
		UserAgent:       strings.TrimSpace(r.Header.Get("User-Agent")),
		ClientUserAgent: strings.TrimSpace(r.Header.Get("X-WP-Client-User-Agent")),
		RemoteAddr:      r.RemoteAddr,
	}
}

// RequestContextFromContext extracts the HTTP request metadata previously
// stored in the context.
func RequestContextFromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	if requestCtx, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok {
		return requestCtx
	}
	return nil
}

func (g *Gateway) requestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCtx := requestContextFromRequest(r)
		ctx := context.WithValue(r.Context(), requestContextKey{}, requestCtx)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		g.logger.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"client_user_agent", requestCtx.ClientUserAgent,
			"duration", time.Since(start))
	})
}

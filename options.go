package worldpay

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type config struct {
	baseURL    string
	httpClient *http.Client
	probe      ConnectivityProbe
	logger     *slog.Logger
	reusable   bool
	validation ValidationType
	session    ShopperSession
	now        func() time.Time
}

// Option customizes the client behavior.
type Option func(*config)

// WithBaseURL points the client at a different gateway, such as an in-process
// sandbox.
func WithBaseURL(baseURL string) Option {
	if baseURL == "" {
		panic("worldpay: base URL must not be empty")
	}
	return func(cfg *config) {
		cfg.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient replaces the default HTTP client and its 30 second timeout.
func WithHTTPClient(client *http.Client) Option {
	if client == nil {
		panic("worldpay: http client must not be nil")
	}
	return func(cfg *config) {
		cfg.httpClient = client
	}
}

// WithReusableTokens requests reusable tokens, allowing a stored card to be
// charged again after re-validating its CVC with [Client.ReuseToken].
func WithReusableTokens() Option {
	return func(cfg *config) {
		cfg.reusable = true
	}
}

// WithConnectivityProbe installs a network reachability check consulted
// before every request. When the probe reports no network the request is
// skipped entirely and a no-network [*SDKError] is returned.
func WithConnectivityProbe(probe ConnectivityProbe) Option {
	if probe == nil {
		panic("worldpay: connectivity probe must not be nil")
	}
	return func(cfg *config) {
		cfg.probe = probe
	}
}

// WithLogger enables debug logging of requests and responses. Logging is off
// by default.
func WithLogger(logger *slog.Logger) Option {
	if logger == nil {
		panic("worldpay: logger must not be nil")
	}
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithValidationType selects basic or advanced card number validation.
func WithValidationType(typ ValidationType) Option {
	if typ != ValidationTypeBasic && typ != ValidationTypeAdvanced {
		panic("worldpay: unknown validation type")
	}
	return func(cfg *config) {
		cfg.validation = typ
	}
}

// WithShopperSession overrides the session metadata attached to order calls.
func WithShopperSession(session ShopperSession) Option {
	return func(cfg *config) {
		cfg.session = session
	}
}

// withClock provides deterministic time in tests.
func withClock(fn func() time.Time) Option {
	return func(cfg *config) {
		cfg.now = fn
	}
}

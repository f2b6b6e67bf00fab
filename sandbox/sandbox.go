// Package sandbox is an in-process WorldPay-like gateway speaking the same
// wire contract as the production API: token creation and reuse, order
// creation, a 3-D Secure simulation page, and order finalization. It backs
// the module's tests and the example checkout without any network dependency.
package sandbox

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	worldpay "github.com/worldpay/worldpay-go"
)

// Gateway is the sandbox HTTP handler. All state is in memory and scoped to
// the instance, so each test can run its own gateway.
type Gateway struct {
	serviceKey string
	auth       Authenticator
	router     chi.Router
	logger     *slog.Logger
	clientKeys map[string]bool
	clock      func() time.Time

	mu     sync.Mutex
	tokens map[string]*tokenRecord
	orders map[string]*orderRecord
}

type tokenRecord struct {
	token         string
	reusable      bool
	kind          string // "Card" or "APM"
	paymentMethod worldpay.PaymentMethod
	created       time.Time
}

type orderRecord struct {
	order worldpay.Order
	paRes string // proof the 3DS page hands out and finalize must echo
}

// Option customizes the gateway behavior.
type Option func(*Gateway)

// WithLogger enables request logging.
func WithLogger(logger *slog.Logger) Option {
	if logger == nil {
		panic("sandbox: logger must not be nil")
	}
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithAuthenticator replaces the default service key comparison on the order
// endpoints.
func WithAuthenticator(auth Authenticator) Option {
	if auth == nil {
		panic("sandbox: authenticator must not be nil")
	}
	return func(g *Gateway) {
		g.auth = auth
	}
}

// withClock provides deterministic time in tests.
func withClock(fn func() time.Time) Option {
	return func(g *Gateway) {
		g.clock = fn
	}
}

// New builds a gateway accepting the given service key on order endpoints and
// the given client key in token payloads.
func New(serviceKey, clientKey string, opts ...Option) *Gateway {
	if serviceKey == "" {
		panic("sandbox: service key is required")
	}
	if clientKey == "" {
		panic("sandbox: client key is required")
	}
	g := &Gateway{
		serviceKey: serviceKey,
		logger:     slog.New(slog.DiscardHandler),
		clientKeys: map[string]bool{clientKey: true},
		clock:      time.Now,
		tokens:     make(map[string]*tokenRecord),
		orders:     make(map[string]*orderRecord),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(g)
	}
	if g.auth == nil {
		g.auth = keyAuthenticator(serviceKey)
	}
	g.router = g.routes()
	return g
}

// ServeHTTP satisfies http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

func (g *Gateway) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(g.requestContextMiddleware)
	r.Route("/"+worldpay.APIVersion, func(r chi.Router) {
		r.Post("/tokens", g.createToken)
		r.Put("/tokens/{token}", g.reuseToken)
		r.Group(func(r chi.Router) {
			r.Use(g.authMiddleware)
			r.Post("/orders", g.createOrder)
			r.Put("/orders/{orderCode}", g.finalizeOrder)
		})
		r.Post("/3ds/{orderCode}", g.issuerPage)
		r.Get("/apm/{orderCode}", g.apmPage)
	})
	return r
}

package worldpay

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	// Version is the library version reported in the client user agent.
	Version = "0.2.0"
	// APIVersion is the gateway API version this client speaks.
	APIVersion = "v1"
)

const defaultBaseURL = "https://api.worldpay.com/" + APIVersion

// Client talks to the WorldPay gateway. Construct one with [New] and share it;
// all configuration lives here rather than in package-level state, so tests
// and multiple merchants can run side by side.
type Client struct {
	serviceKey string
	clientKey  string
	cfg        config
}

// New builds a Client from the merchant's service key (orders) and client key
// (tokens).
func New(serviceKey, clientKey string, opts ...Option) *Client {
	if serviceKey == "" {
		panic("worldpay: service key is required")
	}
	if clientKey == "" {
		panic("worldpay: client key is required")
	}
	cfg := config{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		probe:      ConnectivityProbeFunc(func(context.Context) bool { return true }),
		logger:     slog.New(slog.DiscardHandler),
		validation: ValidationTypeAdvanced,
		session:    defaultShopperSession(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Client{
		serviceKey: serviceKey,
		clientKey:  clientKey,
		cfg:        cfg,
	}
}

func (c *Client) tokensURL() string {
	return c.cfg.baseURL + "/tokens"
}

func (c *Client) ordersURL() string {
	return c.cfg.baseURL + "/orders"
}

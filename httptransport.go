package worldpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sync"
	"time"
)

const defaultTimeout = 30 * time.Second

// headerClientUserAgent identifies the platform and library to the tokens
// endpoints.
const headerClientUserAgent = "X-WP-Client-User-Agent"

// ConnectivityProbe reports whether the network is reachable. The client
// consults it before each request so that an offline host fails fast without
// a connection attempt.
type ConnectivityProbe interface {
	Connected(ctx context.Context) bool
}

// ConnectivityProbeFunc lifts bare functions into [ConnectivityProbe].
type ConnectivityProbeFunc func(ctx context.Context) bool

// Connected reports reachability using the wrapped function.
func (f ConnectivityProbeFunc) Connected(ctx context.Context) bool {
	return f(ctx)
}

// clientUserAgent encodes platform, architecture, language runtime, library
// and API versions, in that order.
var clientUserAgent = sync.OnceValue(func() string {
	return fmt.Sprintf("%s;%s;%s;%s;%s;%s;%s;",
		runtime.GOOS,
		runtime.GOARCH,
		runtime.Version(),
		Version,
		APIVersion,
		"go",
		"world pay")
})

// do runs one JSON round trip against the gateway. A 200 decodes into out;
// any other status becomes a [*ResponseError] built from the body. Transport
// and decode failures become [*SDKError] values.
func (c *Client) do(ctx context.Context, method, rawURL string, payload, out any, tokenEndpoint bool) error {
	if !c.cfg.probe.Connected(ctx) {
		return newSDKError(ErrCodeNoNetwork, "there is no network connectivity")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return wrapSDKError(ErrCodeCreatingRequest, "error while trying to create the request", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return wrapSDKError(ErrCodeCreatingRequest, "error while trying to create the request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tokenEndpoint {
		req.Header.Set("Authorization", c.clientKey)
		req.Header.Set(headerClientUserAgent, clientUserAgent())
	} else {
		req.Header.Set("Authorization", c.serviceKey)
	}

	c.cfg.logger.Debug("gateway request", "method", method, "url", rawURL)
	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return wrapSDKError(ErrCodeConnection, "connection error", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapSDKError(ErrCodeConnection, "connection error", err)
	}
	c.cfg.logger.Debug("gateway response", "method", method, "url", rawURL, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return parseResponseError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if len(respBody) == 0 {
		return newSDKError(ErrCodeUnknownResponse, "error while trying to get response")
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return wrapSDKError(ErrCodeMalformedResponse, "json parsing failed", err)
	}
	return nil
}

package worldpay

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// ResponseScheme is the application-internal prefix the issuer's page
// redirects to when authentication finishes. Navigations starting with it are
// intercepted and never actually loaded.
const ResponseScheme = "worldpay-scheme://response?"

// AuthenticationPage is the capability the orchestrator needs from a UI: load
// a URL and report every navigation the page attempts afterwards. A WebView
// satisfies it in an app; tests use a scripted double.
type AuthenticationPage interface {
	// Load opens rawURL, posting form when it is non-empty, and calls
	// intercept for each navigation the page attempts. Returning true from
	// intercept means the navigation was handled and must not be loaded.
	// Load returns once the page is done or ctx is cancelled.
	Load(ctx context.Context, rawURL string, form url.Values, intercept func(navigation string) bool) error
}

// AuthenticationPageFunc lifts bare functions into [AuthenticationPage].
type AuthenticationPageFunc func(ctx context.Context, rawURL string, form url.Values, intercept func(navigation string) bool) error

// Load runs the wrapped function.
func (f AuthenticationPageFunc) Load(ctx context.Context, rawURL string, form url.Values, intercept func(navigation string) bool) error {
	return f(ctx, rawURL, form, intercept)
}

// redirectInterceptor watches page navigations for the [ResponseScheme]
// redirect and captures the PaRes proof from its query string. Only the
// first matching navigation is acted on; later matches are still swallowed
// so the page never loads the scheme URL.
type redirectInterceptor struct {
	once     sync.Once
	captured bool
	paRes    string
	err      *SDKError
}

func (i *redirectInterceptor) intercept(navigation string) bool {
	if !strings.HasPrefix(navigation, ResponseScheme) {
		return false
	}
	i.once.Do(func() {
		i.captured = true
		params, err := url.ParseQuery(navigation[len(ResponseScheme):])
		if err != nil {
			i.err = wrapSDKError(ErrCodeUnknownResponse, "received unknown response", err)
			return
		}
		paRes := params.Get("PaRes")
		if paRes == "" {
			i.err = newSDKError(ErrCodeUnknownResponse, "received unknown response")
			return
		}
		i.paRes = paRes
	})
	return true
}

// outcomeInterceptor matches APM page navigations against the merchant's
// terminal URLs. First match wins.
type outcomeInterceptor struct {
	order  *Order
	once   sync.Once
	status PaymentStatus
}

func (i *outcomeInterceptor) intercept(navigation string) bool {
	var status PaymentStatus
	switch navigation {
	case i.order.SuccessURL:
		status = PaymentStatusSuccess
	case i.order.CancelURL:
		status = PaymentStatusCancelled
	case i.order.FailureURL:
		status = PaymentStatusFailed
	default:
		return false
	}
	i.once.Do(func() { i.status = status })
	return true
}

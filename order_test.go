package worldpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
)

// scriptedPage is a deterministic AuthenticationPage: it records what it was
// asked to load and replays a fixed list of navigations through the
// interceptor.
type scriptedPage struct {
	navigations []string
	loadErr     error

	loads       int
	loadedURL   string
	loadedForm  url.Values
	intercepted []bool
}

func (p *scriptedPage) Load(_ context.Context, rawURL string, form url.Values, intercept func(string) bool) error {
	p.loads++
	p.loadedURL = rawURL
	p.loadedForm = form
	for _, nav := range p.navigations {
		p.intercepted = append(p.intercepted, intercept(nav))
	}
	return p.loadErr
}

func testOrderDetails() OrderDetails {
	return OrderDetails{
		Address:  "221B Baker Street",
		City:     "London",
		PostCode: "NW1 6XE",
		Price:    1250,
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	var finalizes atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/orders":
			if got := r.Header.Get("Authorization"); got != testServiceKey {
				t.Errorf("Authorization = %q, want service key", got)
			}
			var req orderRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decoding order request: %v", err)
			}
			if !req.Is3DSOrder {
				t.Error("expected a 3DS order request")
			}
			if req.Name != "3D" {
				t.Errorf("name = %q, want 3D", req.Name)
			}
			if req.Amount != 1250 {
				t.Errorf("amount = %d, want 1250", req.Amount)
			}
			if req.CurrencyCode != "GBP" {
				t.Errorf("currencyCode = %q, want default GBP", req.CurrencyCode)
			}
			if req.OrderDescription != "Goods and Services" {
				t.Errorf("orderDescription = %q", req.OrderDescription)
			}
			if req.BillingAddress == nil || req.BillingAddress.CountryCode != "GB" {
				t.Error("expected billing address with default GB country")
			}
			_, _ = w.Write([]byte(`{
				"orderCode": "ORDER-1",
				"paymentStatus": "PRE_AUTHORIZED",
				"redirectURL": "https://issuer.example/3ds",
				"oneTime3DsToken": "3DS_TOKEN_1",
				"is3DSOrder": true
			}`))
		case r.Method == http.MethodPut && r.URL.Path == "/orders/ORDER-1":
			finalizes.Add(1)
			var req finalizeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decoding finalize request: %v", err)
			}
			if req.ThreeDSResponseCode != "ABC123" {
				t.Errorf("threeDSResponseCode = %q, want ABC123", req.ThreeDSResponseCode)
			}
			_, _ = w.Write([]byte(`{"orderCode": "ORDER-1", "paymentStatus": "SUCCESS"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client := newTestClient(t, handler)
	page := &scriptedPage{navigations: []string{
		"https://issuer.example/3ds/challenge",
		ResponseScheme + "PaRes=ABC123&MD=merchant-data",
	}}

	result, err := client.Authorize(context.Background(), "TEST_TOKEN_1", testOrderDetails(), page)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if result.Status != PaymentStatusSuccess {
		t.Errorf("status = %s, want SUCCESS", result.Status)
	}
	if !result.Authenticated {
		t.Error("expected an authenticated result")
	}
	if !result.Succeeded() {
		t.Error("expected Succeeded")
	}
	if got := finalizes.Load(); got != 1 {
		t.Errorf("finalize calls = %d, want exactly 1", got)
	}
	if page.loadedURL != "https://issuer.example/3ds" {
		t.Errorf("loaded URL = %q", page.loadedURL)
	}
	if got := page.loadedForm.Get("PaReq"); got != "3DS_TOKEN_1" {
		t.Errorf("PaReq = %q, want the one-time 3DS token", got)
	}
	if page.loadedForm.Get("TermUrl") == "" || page.loadedForm.Get("MD") == "" {
		t.Error("expected TermUrl and MD in the challenge form")
	}
	if len(page.intercepted) != 2 || page.intercepted[0] || !page.intercepted[1] {
		t.Errorf("intercepted = %v, want [false true]", page.intercepted)
	}
}

func TestAuthorizeImmediateDecision(t *testing.T) {
	t.Parallel()

	var finalizes atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			finalizes.Add(1)
		}
		_, _ = w.Write([]byte(`{"orderCode": "ORDER-2", "paymentStatus": "SUCCESS"}`))
	})

	client := newTestClient(t, handler)
	page := &scriptedPage{}

	result, err := client.Authorize(context.Background(), "TEST_TOKEN_1", testOrderDetails(), page)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if result.Status != PaymentStatusSuccess {
		t.Errorf("status = %s", result.Status)
	}
	if result.Authenticated {
		t.Error("no authentication leg should be reported")
	}
	if page.loads != 0 {
		t.Error("page must not load when the order is decided up front")
	}
	if finalizes.Load() != 0 {
		t.Error("finalize must not run without authentication")
	}
}

func TestAuthorizeDuplicateRedirect(t *testing.T) {
	t.Parallel()

	var finalizes atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			_, _ = w.Write([]byte(`{
				"orderCode": "ORDER-3",
				"paymentStatus": "PRE_AUTHORIZED",
				"redirectURL": "https://issuer.example/3ds",
				"oneTime3DsToken": "3DS_TOKEN_3"
			}`))
		case http.MethodPut:
			finalizes.Add(1)
			_, _ = w.Write([]byte(`{"orderCode": "ORDER-3", "paymentStatus": "SUCCESS"}`))
		}
	})

	client := newTestClient(t, handler)
	// The issuer page fires the scheme redirect twice; only the first one may
	// produce an outcome, but both must be swallowed.
	page := &scriptedPage{navigations: []string{
		ResponseScheme + "PaRes=FIRST",
		ResponseScheme + "PaRes=SECOND",
	}}

	result, err := client.Authorize(context.Background(), "TEST_TOKEN_1", testOrderDetails(), page)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if result.Status != PaymentStatusSuccess {
		t.Errorf("status = %s", result.Status)
	}
	if got := finalizes.Load(); got != 1 {
		t.Errorf("finalize calls = %d, want exactly 1", got)
	}
	if len(page.intercepted) != 2 || !page.intercepted[0] || !page.intercepted[1] {
		t.Errorf("intercepted = %v, want both swallowed", page.intercepted)
	}
}

func TestAuthorizeUnknownResponse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		order       string
		navigations []string
	}{
		"missing redirect url": {
			order: `{"orderCode": "ORDER-4", "paymentStatus": "PRE_AUTHORIZED", "oneTime3DsToken": "3DS_TOKEN_4"}`,
		},
		"missing one time token": {
			order: `{"orderCode": "ORDER-4", "paymentStatus": "PRE_AUTHORIZED", "redirectURL": "https://issuer.example/3ds"}`,
		},
		"no scheme redirect": {
			order: `{"orderCode": "ORDER-4", "paymentStatus": "PRE_AUTHORIZED", "redirectURL": "https://issuer.example/3ds", "oneTime3DsToken": "3DS_TOKEN_4"}`,
			navigations: []string{
				"https://issuer.example/3ds/challenge",
				"https://issuer.example/3ds/done",
			},
		},
		"redirect without pares": {
			order: `{"orderCode": "ORDER-4", "paymentStatus": "PRE_AUTHORIZED", "redirectURL": "https://issuer.example/3ds", "oneTime3DsToken": "3DS_TOKEN_4"}`,
			navigations: []string{
				ResponseScheme + "MD=merchant-data",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var finalizes atomic.Int32
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPut {
					finalizes.Add(1)
				}
				_, _ = w.Write([]byte(tt.order))
			})
			client := newTestClient(t, handler)
			page := &scriptedPage{navigations: tt.navigations}

			_, err := client.Authorize(context.Background(), "TEST_TOKEN_1", testOrderDetails(), page)
			var sdkErr *SDKError
			if !errors.As(err, &sdkErr) {
				t.Fatalf("expected *SDKError, got %T: %v", err, err)
			}
			if sdkErr.Code != ErrCodeUnknownResponse {
				t.Errorf("code = %d, want %d", sdkErr.Code, ErrCodeUnknownResponse)
			}
			if finalizes.Load() != 0 {
				t.Error("finalize must not run without a PaRes")
			}
		})
	}
}

func TestAuthorizePageFailure(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"orderCode": "ORDER-5",
			"paymentStatus": "PRE_AUTHORIZED",
			"redirectURL": "https://issuer.example/3ds",
			"oneTime3DsToken": "3DS_TOKEN_5"
		}`))
	})

	client := newTestClient(t, handler)
	page := &scriptedPage{loadErr: errors.New("webview crashed")}

	_, err := client.Authorize(context.Background(), "TEST_TOKEN_1", testOrderDetails(), page)
	var sdkErr *SDKError
	if !errors.As(err, &sdkErr) {
		t.Fatalf("expected *SDKError, got %T: %v", err, err)
	}
	if sdkErr.Code != ErrCodeConnection {
		t.Errorf("code = %d, want %d", sdkErr.Code, ErrCodeConnection)
	}
}

func TestAuthorizeOrderDeclined(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"httpStatusCode": 400,
			"customCode": "TKN_NOT_FOUND",
			"message": "Token not found"
		}`))
	})

	client := newTestClient(t, handler)
	page := &scriptedPage{}

	_, err := client.Authorize(context.Background(), "TEST_TOKEN_GONE", testOrderDetails(), page)
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected *ResponseError, got %T: %v", err, err)
	}
	if respErr.CustomCode != "TKN_NOT_FOUND" {
		t.Errorf("customCode = %q", respErr.CustomCode)
	}
	if page.loads != 0 {
		t.Error("page must not load for a rejected order")
	}
}

func TestPlaceOrder(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding order request: %v", err)
		}
		if req.Is3DSOrder {
			t.Error("plain orders must not request 3DS")
		}
		if req.Name != "" {
			t.Errorf("name = %q, want empty", req.Name)
		}
		_, _ = w.Write([]byte(`{"orderCode": "ORDER-6", "paymentStatus": "SUCCESS", "amount": 1250}`))
	})

	client := newTestClient(t, handler)
	order, err := client.PlaceOrder(context.Background(), "TEST_TOKEN_1", testOrderDetails())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.PaymentStatus != PaymentStatusSuccess {
		t.Errorf("paymentStatus = %s", order.PaymentStatus)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	client := newTestClient(t, handler)

	tests := map[string]struct {
		token   string
		details OrderDetails
	}{
		"missing token":  {token: "", details: testOrderDetails()},
		"zero amount":    {token: "TEST_TOKEN_1", details: OrderDetails{Address: "a", City: "b", PostCode: "c"}},
		"bad currency":   {token: "TEST_TOKEN_1", details: OrderDetails{Address: "a", City: "b", PostCode: "c", Price: 1, Currency: "gbp"}},
		"missing city":   {token: "TEST_TOKEN_1", details: OrderDetails{Address: "a", PostCode: "c", Price: 1}},
		"lowercase land": {token: "TEST_TOKEN_1", details: OrderDetails{Address: "a", City: "b", PostCode: "c", Price: 1, CountryCode: "gb"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := client.PlaceOrder(context.Background(), tt.token, tt.details)
			var sdkErr *SDKError
			if !errors.As(err, &sdkErr) {
				t.Fatalf("expected *SDKError, got %T: %v", err, err)
			}
			if sdkErr.Code != ErrCodeCreatingRequest {
				t.Errorf("code = %d, want %d", sdkErr.Code, ErrCodeCreatingRequest)
			}
		})
	}
	if hits.Load() != 0 {
		t.Error("invalid orders must not reach the gateway")
	}
}

func TestAuthorizeAPM(t *testing.T) {
	t.Parallel()

	urls := APMRedirectURLs{
		SuccessURL: "https://shop.example/apm/success",
		CancelURL:  "https://shop.example/apm/cancel",
		FailureURL: "https://shop.example/apm/failure",
	}

	tests := map[string]struct {
		navigation string
		want       PaymentStatus
	}{
		"approved":  {navigation: urls.SuccessURL, want: PaymentStatusSuccess},
		"cancelled": {navigation: urls.CancelURL, want: PaymentStatusCancelled},
		"declined":  {navigation: urls.FailureURL, want: PaymentStatusFailed},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req orderRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("decoding order request: %v", err)
				}
				if req.SuccessURL != urls.SuccessURL {
					t.Errorf("successUrl = %q", req.SuccessURL)
				}
				resp := Order{
					OrderCode:     "ORDER-7",
					PaymentStatus: PaymentStatusPreAuthorized,
					RedirectURL:   "https://provider.example/pay",
					SuccessURL:    urls.SuccessURL,
					CancelURL:     urls.CancelURL,
					FailureURL:    urls.FailureURL,
				}
				_ = json.NewEncoder(w).Encode(resp)
			})

			client := newTestClient(t, handler)
			page := &scriptedPage{navigations: []string{
				"https://provider.example/pay/step2",
				tt.navigation,
			}}

			result, err := client.AuthorizeAPM(context.Background(), "TEST_APM_1", testOrderDetails(), urls, page)
			if err != nil {
				t.Fatalf("AuthorizeAPM: %v", err)
			}
			if result.Status != tt.want {
				t.Errorf("status = %s, want %s", result.Status, tt.want)
			}
			if !result.Authenticated {
				t.Error("expected an authenticated result")
			}
			if page.loadedURL != "https://provider.example/pay" {
				t.Errorf("loaded URL = %q", page.loadedURL)
			}
			if page.loadedForm != nil {
				t.Error("APM pages are loaded without a form post")
			}
		})
	}
}

func TestAuthorizeAPMMissingURLs(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	client := newTestClient(t, handler)

	urls := APMRedirectURLs{SuccessURL: "https://shop.example/apm/success"}
	_, err := client.AuthorizeAPM(context.Background(), "TEST_APM_1", testOrderDetails(), urls, &scriptedPage{})
	var sdkErr *SDKError
	if !errors.As(err, &sdkErr) {
		t.Fatalf("expected *SDKError, got %T: %v", err, err)
	}
	if sdkErr.Code != ErrCodeCreatingRequest {
		t.Errorf("code = %d, want %d", sdkErr.Code, ErrCodeCreatingRequest)
	}
	if hits.Load() != 0 {
		t.Error("invalid APM orders must not reach the gateway")
	}
}

func TestRedirectInterceptor(t *testing.T) {
	t.Parallel()

	ic := &redirectInterceptor{}
	if ic.intercept("https://issuer.example/anything") {
		t.Error("unrelated navigations must load normally")
	}
	if !ic.intercept(ResponseScheme + "PaRes=XYZ&MD=merchant-data") {
		t.Error("scheme navigation must be swallowed")
	}
	if !ic.intercept(ResponseScheme + "PaRes=LATER") {
		t.Error("later scheme navigations are still swallowed")
	}
	if !ic.captured || ic.paRes != "XYZ" {
		t.Errorf("captured = %v, paRes = %q, want first PaRes", ic.captured, ic.paRes)
	}
	if ic.err != nil {
		t.Errorf("unexpected interceptor error: %v", ic.err)
	}
}

package sandbox

import (
	"fmt"
	"html"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	worldpay "github.com/worldpay/worldpay-go"
)

// orderRequest mirrors the body of POST /orders.
type orderRequest struct {
	Token               string          `json:"token"`
	OrderType           string          `json:"orderType"`
	OrderDescription    string          `json:"orderDescription"`
	Amount              int64           `json:"amount"`
	CurrencyCode        string          `json:"currencyCode"`
	Name                string          `json:"name"`
	Is3DSOrder          bool            `json:"is3DSOrder"`
	ShopperAcceptHeader string          `json:"shopperAcceptHeader"`
	ShopperUserAgent    string          `json:"shopperUserAgent"`
	ShopperSessionID    string          `json:"shopperSessionId"`
	ShopperIPAddress    string          `json:"shopperIpAddress"`
	BillingAddress      *billingAddress `json:"billingAddress"`
	SuccessURL          string          `json:"successUrl"`
	CancelURL           string          `json:"cancelUrl"`
	FailureURL          string          `json:"failureUrl"`
	PendingURL          string          `json:"pendingUrl"`
}

type billingAddress struct {
	Address1    string `json:"address1"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

// finalizeRequest mirrors the body of PUT /orders/{orderCode}.
type finalizeRequest struct {
	ThreeDSResponseCode string `json:"threeDSResponseCode"`
	ShopperAcceptHeader string `json:"shopperAcceptHeader"`
	ShopperUserAgent    string `json:"shopperUserAgent"`
	ShopperSessionID    string `json:"shopperSessionId"`
	ShopperIPAddress    string `json:"shopperIpAddress"`
}

func (g *Gateway) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "amount must be positive")
		return
	}
	if len(req.CurrencyCode) != 3 {
		writeError(w, http.StatusBadRequest, "INVALID_CURRENCY", "currencyCode must be a 3-letter code")
		return
	}

	g.mu.Lock()
	tokenRec, ok := g.tokens[req.Token]
	g.mu.Unlock()
	if !ok {
		writeError(w, http.StatusBadRequest, "TKN_NOT_FOUND", "token could not be found")
		return
	}

	record := &orderRecord{
		order: worldpay.Order{
			OrderCode:    "ORDER-" + uuid.NewString(),
			Amount:       req.Amount,
			CurrencyCode: req.CurrencyCode,
		},
	}

	switch {
	case tokenRec.kind == "APM":
		if req.SuccessURL == "" || req.CancelURL == "" || req.FailureURL == "" {
			writeError(w, http.StatusBadRequest, "MISSING_REDIRECT_URLS", "successUrl, cancelUrl and failureUrl are required for APM orders")
			return
		}
		record.order.PaymentStatus = worldpay.PaymentStatusPreAuthorized
		record.order.RedirectURL = fmt.Sprintf("%s/%s/apm/%s", externalBase(r), worldpay.APIVersion, record.order.OrderCode)
		record.order.SuccessURL = req.SuccessURL
		record.order.CancelURL = req.CancelURL
		record.order.FailureURL = req.FailureURL
		record.order.PendingURL = req.PendingURL

	case req.Is3DSOrder && req.Name == "3D":
		// The magic shopper name drives the simulation, as in the hosted
		// sandbox.
		record.order.PaymentStatus = worldpay.PaymentStatusPreAuthorized
		record.order.Is3DSOrder = true
		record.order.OneTime3DsToken = "3DS_" + uuid.NewString()
		record.order.RedirectURL = fmt.Sprintf("%s/%s/3ds/%s", externalBase(r), worldpay.APIVersion, record.order.OrderCode)
		record.paRes = "PARES-" + uuid.NewString()

	default:
		record.order.PaymentStatus = worldpay.PaymentStatusSuccess
	}

	g.mu.Lock()
	g.orders[record.order.OrderCode] = record
	g.mu.Unlock()

	g.logger.Debug("order created",
		"order_code", record.order.OrderCode,
		"payment_status", record.order.PaymentStatus,
		"shopper_session_id", req.ShopperSessionID)
	writeJSON(w, http.StatusOK, record.order)
}

// issuerPage simulates the card issuer's 3DS challenge. It accepts the
// PaReq/TermUrl/MD form post and answers a page whose continue link is the
// worldpay-scheme redirect carrying the PaRes proof.
func (g *Gateway) issuerPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed challenge form")
		return
	}
	orderCode := chi.URLParam(r, "orderCode")
	g.mu.Lock()
	record, ok := g.orders[orderCode]
	g.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "ORD_NOT_FOUND", "order could not be found")
		return
	}
	if r.PostFormValue("PaReq") != record.order.OneTime3DsToken {
		writeError(w, http.StatusBadRequest, "INVALID_PAREQ", "PaReq does not match the order's one-time token")
		return
	}

	redirect := worldpay.ResponseScheme + url.Values{
		"PaRes": {record.paRes},
		"MD":    {r.PostFormValue("MD")},
	}.Encode()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>ACS Simulation</title></head>
<body>
<h1>Card issuer authentication</h1>
<p>Order %s</p>
<a id="complete" href="%s">Complete authentication</a>
</body>
</html>
`, html.EscapeString(orderCode), html.EscapeString(redirect))
}

// apmPage simulates the alternative payment provider's page, offering the
// merchant's terminal URLs as links.
func (g *Gateway) apmPage(w http.ResponseWriter, r *http.Request) {
	orderCode := chi.URLParam(r, "orderCode")
	g.mu.Lock()
	record, ok := g.orders[orderCode]
	g.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "ORD_NOT_FOUND", "order could not be found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Payment Simulation</title></head>
<body>
<h1>Pay %d %s</h1>
<a id="approve" href="%s">Approve</a>
<a id="cancel" href="%s">Cancel</a>
<a id="decline" href="%s">Decline</a>
</body>
</html>
`, record.order.Amount, html.EscapeString(record.order.CurrencyCode),
		html.EscapeString(record.order.SuccessURL),
		html.EscapeString(record.order.CancelURL),
		html.EscapeString(record.order.FailureURL))
}

func (g *Gateway) finalizeOrder(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if req.ThreeDSResponseCode == "" {
		writeError(w, http.StatusBadRequest, "MISSING_3DS_RESPONSE", "threeDSResponseCode is required")
		return
	}

	orderCode := chi.URLParam(r, "orderCode")
	g.mu.Lock()
	defer g.mu.Unlock()
	record, ok := g.orders[orderCode]
	if !ok {
		writeError(w, http.StatusNotFound, "ORD_NOT_FOUND", "order could not be found")
		return
	}
	if record.order.PaymentStatus != worldpay.PaymentStatusPreAuthorized {
		writeError(w, http.StatusBadRequest, "ORD_ALREADY_DECIDED", "order is not awaiting authentication")
		return
	}

	if req.ThreeDSResponseCode == record.paRes {
		record.order.PaymentStatus = worldpay.PaymentStatusSuccess
	} else {
		record.order.PaymentStatus = worldpay.PaymentStatusFailed
	}
	g.logger.Debug("order finalized",
		"order_code", record.order.OrderCode,
		"payment_status", record.order.PaymentStatus)

	writeJSON(w, http.StatusOK, struct {
		OrderCode     string                 `json:"orderCode"`
		PaymentStatus worldpay.PaymentStatus `json:"paymentStatus"`
	}{
		OrderCode:     record.order.OrderCode,
		PaymentStatus: record.order.PaymentStatus,
	})
}

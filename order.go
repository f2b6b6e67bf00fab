package worldpay

import (
	"context"
	"net/http"
	"net/url"
)

const (
	orderTypeECOM = "ECOM"

	// termURL is where the issuer's page would return the shopper in a
	// server-integrated flow; the sandbox redirects to [ResponseScheme]
	// instead so the client can intercept the result.
	termURL = "https://online.worldpay.com/3dsr/"

	// threeDSMarker is the opaque MD field echoed through the issuer page.
	threeDSMarker = "merchant-data"

	// threeDSTestShopperName forces the sandbox into the 3DS simulation.
	// Real traffic never sets a magic shopper name; this flow is
	// demonstration-only.
	threeDSTestShopperName = "3D"
)

// PlaceOrder creates a plain (non-3DS) order for a tokenized payment method
// and returns the gateway's decision. No authentication leg runs.
func (c *Client) PlaceOrder(ctx context.Context, token string, details OrderDetails) (*Order, error) {
	return c.createOrder(ctx, c.cardOrderRequest(token, details, false))
}

// Authorize runs the full 3-D Secure order flow: create the order, and when
// the gateway answers PRE_AUTHORIZED, post the challenge form to the issuer's
// page through page, intercept the redirect carrying the PaRes proof, and
// finalize the order. Exactly one terminal outcome is produced: an
// [OrderResult], a [*ResponseError], or a [*SDKError]. Nothing is retried.
func (c *Client) Authorize(ctx context.Context, token string, details OrderDetails, page AuthenticationPage) (*OrderResult, error) {
	if page == nil {
		panic("worldpay: authentication page is required")
	}
	order, err := c.createOrder(ctx, c.cardOrderRequest(token, details, true))
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != PaymentStatusPreAuthorized {
		// Decided on the first leg; no further network calls.
		return &OrderResult{OrderCode: order.OrderCode, Status: order.PaymentStatus}, nil
	}
	paRes, err := c.authenticate(ctx, page, order)
	if err != nil {
		return nil, err
	}
	return c.finalize(ctx, order.OrderCode, paRes)
}

// AuthorizeAPM runs an alternative payment method order: create the order,
// load the provider's page, and read the outcome off which of the merchant's
// terminal URLs the page navigates to. No finalize call is involved.
func (c *Client) AuthorizeAPM(ctx context.Context, token string, details OrderDetails, urls APMRedirectURLs, page AuthenticationPage) (*OrderResult, error) {
	if page == nil {
		panic("worldpay: authentication page is required")
	}
	if err := validateRequest(urls); err != nil {
		return nil, wrapSDKError(ErrCodeCreatingRequest, "invalid order request", err)
	}
	details = details.withDefaults()
	req := orderRequest{
		Token:            token,
		OrderType:        orderTypeECOM,
		OrderDescription: details.Description,
		Amount:           details.Price,
		CurrencyCode:     details.Currency,
		SuccessURL:       urls.SuccessURL,
		CancelURL:        urls.CancelURL,
		FailureURL:       urls.FailureURL,
		PendingURL:       urls.PendingURL,
	}
	order, err := c.createOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != PaymentStatusPreAuthorized {
		return &OrderResult{OrderCode: order.OrderCode, Status: order.PaymentStatus}, nil
	}
	if order.RedirectURL == "" {
		return nil, newSDKError(ErrCodeUnknownResponse, "received unknown response")
	}
	ic := &outcomeInterceptor{order: order}
	if err := page.Load(ctx, order.RedirectURL, nil, ic.intercept); err != nil {
		return nil, wrapSDKError(ErrCodeConnection, "authentication page failed", err)
	}
	if ic.status == "" {
		return nil, newSDKError(ErrCodeUnknownResponse, "received unknown response")
	}
	return &OrderResult{OrderCode: order.OrderCode, Status: ic.status, Authenticated: true}, nil
}

func (c *Client) cardOrderRequest(token string, details OrderDetails, threeDS bool) orderRequest {
	details = details.withDefaults()
	req := orderRequest{
		Token:            token,
		OrderType:        orderTypeECOM,
		OrderDescription: details.Description,
		Amount:           details.Price,
		CurrencyCode:     details.Currency,
		BillingAddress: &billingAddress{
			Address1:    details.Address,
			PostalCode:  details.PostCode,
			City:        details.City,
			CountryCode: details.CountryCode,
		},
	}
	if threeDS {
		req.Name = threeDSTestShopperName
		req.Is3DSOrder = true
		req.ShopperAcceptHeader = c.cfg.session.AcceptHeader
		req.ShopperUserAgent = c.cfg.session.UserAgent
		req.ShopperSessionID = c.cfg.session.SessionID
		req.ShopperIPAddress = c.cfg.session.IPAddress
	}
	return req
}

func (c *Client) createOrder(ctx context.Context, req orderRequest) (*Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, wrapSDKError(ErrCodeCreatingRequest, "invalid order request", err)
	}
	order := &Order{}
	if err := c.do(ctx, http.MethodPost, c.ordersURL(), req, order, false); err != nil {
		return nil, err
	}
	if order.OrderCode == "" {
		return nil, newSDKError(ErrCodeMalformedResponse, "response did not carry an order code")
	}
	return order, nil
}

// authenticate posts the challenge form to the issuer's redirect URL and
// waits for the interceptor to capture the PaRes proof.
func (c *Client) authenticate(ctx context.Context, page AuthenticationPage, order *Order) (string, error) {
	if order.RedirectURL == "" || order.OneTime3DsToken == "" {
		return "", newSDKError(ErrCodeUnknownResponse, "received unknown response")
	}
	form := url.Values{
		"PaReq":   {order.OneTime3DsToken},
		"TermUrl": {termURL},
		"MD":      {threeDSMarker},
	}
	c.cfg.logger.Debug("loading issuer authentication page", "order_code", order.OrderCode, "url", order.RedirectURL)
	ic := &redirectInterceptor{}
	if err := page.Load(ctx, order.RedirectURL, form, ic.intercept); err != nil {
		return "", wrapSDKError(ErrCodeConnection, "authentication page failed", err)
	}
	if ic.err != nil {
		return "", ic.err
	}
	if !ic.captured {
		return "", newSDKError(ErrCodeUnknownResponse, "received unknown response")
	}
	return ic.paRes, nil
}

// finalize sends the authentication proof back to the gateway and reports
// the final payment status.
func (c *Client) finalize(ctx context.Context, orderCode, paRes string) (*OrderResult, error) {
	req := finalizeRequest{
		ThreeDSResponseCode: paRes,
		ShopperAcceptHeader: c.cfg.session.AcceptHeader,
		ShopperUserAgent:    c.cfg.session.UserAgent,
		ShopperSessionID:    c.cfg.session.SessionID,
		ShopperIPAddress:    c.cfg.session.IPAddress,
	}
	if err := validateRequest(req); err != nil {
		return nil, wrapSDKError(ErrCodeCreatingRequest, "invalid order request", err)
	}
	var final struct {
		PaymentStatus PaymentStatus `json:"paymentStatus"`
	}
	if err := c.do(ctx, http.MethodPut, c.ordersURL()+"/"+url.PathEscape(orderCode), req, &final, false); err != nil {
		return nil, err
	}
	return &OrderResult{OrderCode: orderCode, Status: final.PaymentStatus, Authenticated: true}, nil
}

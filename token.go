package worldpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

var errNoToken = errors.New("token is required")

// CreateToken validates the card and exchanges it for a [TokenizedCard]. The
// token is one-time unless the client was built with [WithReusableTokens].
//
// Validation failures are returned as [CardValidationError] before any
// network call is made.
func (c *Client) CreateToken(ctx context.Context, card *Card) (*TokenizedCard, error) {
	if card == nil {
		panic("worldpay: card is required")
	}
	if verr := card.validateAt(c.cfg.now(), c.cfg.validation); verr.HasErrors() {
		return nil, verr
	}
	payload, err := json.Marshal(card.payload())
	if err != nil {
		return nil, wrapSDKError(ErrCodeCreatingRequest, "error while trying to create the request", err)
	}
	return c.createToken(ctx, payload)
}

// CreateAPMToken tokenizes an alternative payment method descriptor such as
// the one from [NewPayPalAPM].
func (c *Client) CreateAPMToken(ctx context.Context, apm *AlternativePaymentMethod) (*TokenizedCard, error) {
	if apm == nil {
		panic("worldpay: payment method is required")
	}
	if verr := apm.Validate(); verr.HasErrors() {
		return nil, verr
	}
	payload, err := json.Marshal(apm.payload())
	if err != nil {
		return nil, wrapSDKError(ErrCodeCreatingRequest, "error while trying to create the request", err)
	}
	return c.createToken(ctx, payload)
}

func (c *Client) createToken(ctx context.Context, paymentMethod json.RawMessage) (*TokenizedCard, error) {
	req := tokenRequest{
		Reusable:      c.cfg.reusable,
		ClientKey:     c.clientKey,
		PaymentMethod: paymentMethod,
	}
	if err := validateRequest(req); err != nil {
		return nil, wrapSDKError(ErrCodeCreatingRequest, "invalid token request", err)
	}
	tok := &TokenizedCard{}
	if err := c.do(ctx, http.MethodPost, c.tokensURL(), req, tok, true); err != nil {
		return nil, err
	}
	if tok.Token == "" {
		return nil, newSDKError(ErrCodeMalformedResponse, "response did not carry a token")
	}
	return tok, nil
}

// ReuseToken re-validates a previously issued reusable token with a fresh
// CVC. The gateway requires this before a stored card is charged again.
func (c *Client) ReuseToken(ctx context.Context, token, cvc string) (*TokenizedCard, error) {
	if token == "" {
		return nil, wrapSDKError(ErrCodeCreatingRequest, "invalid token request", errNoToken)
	}
	req := reuseTokenRequest{
		ClientKey: c.clientKey,
		CVC:       cvc,
	}
	if err := validateRequest(req); err != nil {
		return nil, wrapSDKError(ErrCodeCreatingRequest, "invalid token request", err)
	}
	tok := &TokenizedCard{}
	if err := c.do(ctx, http.MethodPut, c.tokensURL()+"/"+url.PathEscape(token), req, tok, true); err != nil {
		return nil, err
	}
	return tok, nil
}

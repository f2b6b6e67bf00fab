// Package worldpay is a Go client for the WorldPay online payments sandbox.
// It tokenizes card and alternative payment method details, places orders, and
// drives the 3-D Secure authentication redirect required to complete some card
// transactions.
//
// # Configuration
//
// Build a [Client] with your service and client keys. There is no global
// state; every call goes through the client you construct.
//
//	wp := worldpay.New(serviceKey, clientKey, worldpay.WithReusableTokens())
//
// # Tokenization
//
// Validate the card locally, then exchange it for an opaque token:
//
//	card := &worldpay.Card{
//		HolderName:  "A Shopper",
//		CardNumber:  "4444 3333 2222 1111",
//		ExpiryMonth: "11",
//		ExpiryYear:  "2031",
//		CVC:         "123",
//	}
//	if verr := card.Validate(); verr.HasErrors() {
//		// inspect verr.Has(worldpay.ErrCardNumber) etc.
//	}
//	tok, err := wp.CreateToken(ctx, card)
//
// Reusable tokens are re-validated before use with [Client.ReuseToken].
//
// # Orders and 3-D Secure
//
// [Client.Authorize] runs the whole order flow: it creates the order, and when
// the gateway answers PRE_AUTHORIZED it posts the challenge form to the card
// issuer's page through the [AuthenticationPage] you supply, intercepts the
// worldpay-scheme redirect carrying the PaRes proof, and finalizes the order
// with a second call. The terminal payment status comes back as an
// [OrderResult]; transport faults and gateway rejections surface as
// [*SDKError] and [*ResponseError] values.
//
// Alternative payment methods (PayPal) follow the same shape through
// [Client.AuthorizeAPM], where the page's navigations are matched against the
// order's success, cancel and failure URLs instead of the redirect scheme.
package worldpay

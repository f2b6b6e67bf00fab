package worldpay

// PaymentStatus is the gateway's view of an order. The value space is owned
// by the gateway; anything other than PRE_AUTHORIZED is terminal.
type PaymentStatus string

const (
	// PaymentStatusPreAuthorized means the order needs 3-D Secure (or APM)
	// authentication before it can complete.
	PaymentStatusPreAuthorized PaymentStatus = "PRE_AUTHORIZED"
	// PaymentStatusSuccess is the terminal happy outcome.
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	// PaymentStatusAuthorized means the payment was authorized but not yet
	// captured.
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	// PaymentStatusFailed is the terminal declined outcome.
	PaymentStatusFailed PaymentStatus = "FAILED"
	// PaymentStatusCancelled means the shopper abandoned an APM flow.
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// OrderDetails is what the shopper confirmed at checkout: where to deliver
// and how much to charge. Price is in minor currency units.
type OrderDetails struct {
	Address     string
	City        string
	PostCode    string
	CountryCode string // defaults to GB
	Price       int64
	Currency    string // defaults to GBP
	Description string // defaults to "Goods and Services"
}

func (d OrderDetails) withDefaults() OrderDetails {
	if d.CountryCode == "" {
		d.CountryCode = "GB"
	}
	if d.Currency == "" {
		d.Currency = "GBP"
	}
	if d.Description == "" {
		d.Description = "Goods and Services"
	}
	return d
}

// APMRedirectURLs are the merchant pages an alternative payment method flow
// lands on. The orchestrator recognizes the outcome by which of them the
// provider's page navigates to.
type APMRedirectURLs struct {
	SuccessURL string `json:"successUrl" validate:"required"`
	CancelURL  string `json:"cancelUrl" validate:"required"`
	FailureURL string `json:"failureUrl" validate:"required"`
	PendingURL string `json:"pendingUrl,omitempty"`
}

// orderRequest is the body of POST /orders.
type orderRequest struct {
	Token               string          `json:"token" validate:"required"`
	OrderType           string          `json:"orderType" validate:"required"`
	OrderDescription    string          `json:"orderDescription" validate:"required"`
	Amount              int64           `json:"amount" validate:"gt=0"`
	CurrencyCode        string          `json:"currencyCode" validate:"len=3,uppercase"`
	Name                string          `json:"name,omitempty"`
	Is3DSOrder          bool            `json:"is3DSOrder"`
	ShopperAcceptHeader string          `json:"shopperAcceptHeader,omitempty"`
	ShopperUserAgent    string          `json:"shopperUserAgent,omitempty"`
	ShopperSessionID    string          `json:"shopperSessionId,omitempty"`
	ShopperIPAddress    string          `json:"shopperIpAddress,omitempty"`
	BillingAddress      *billingAddress `json:"billingAddress,omitempty"`
	SuccessURL          string          `json:"successUrl,omitempty"`
	CancelURL           string          `json:"cancelUrl,omitempty"`
	FailureURL          string          `json:"failureUrl,omitempty"`
	PendingURL          string          `json:"pendingUrl,omitempty"`
}

type billingAddress struct {
	Address1    string `json:"address1" validate:"required"`
	PostalCode  string `json:"postalCode" validate:"required"`
	City        string `json:"city" validate:"required"`
	CountryCode string `json:"countryCode" validate:"len=2,uppercase"`
}

// finalizeRequest is the body of PUT /orders/{orderCode}, carrying the 3DS
// authentication proof back to the gateway.
type finalizeRequest struct {
	ThreeDSResponseCode string `json:"threeDSResponseCode" validate:"required"`
	ShopperAcceptHeader string `json:"shopperAcceptHeader,omitempty"`
	ShopperUserAgent    string `json:"shopperUserAgent,omitempty"`
	ShopperSessionID    string `json:"shopperSessionId,omitempty"`
	ShopperIPAddress    string `json:"shopperIpAddress,omitempty"`
}

// Order is the gateway's response to order creation. Immutable; the redirect
// fields are only populated when the order is PRE_AUTHORIZED.
type Order struct {
	OrderCode       string        `json:"orderCode"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	Amount          int64         `json:"amount,omitempty"`
	CurrencyCode    string        `json:"currencyCode,omitempty"`
	RedirectURL     string        `json:"redirectURL,omitempty"`
	OneTime3DsToken string        `json:"oneTime3DsToken,omitempty"`
	Is3DSOrder      bool          `json:"is3DSOrder,omitempty"`
	SuccessURL      string        `json:"successUrl,omitempty"`
	CancelURL       string        `json:"cancelUrl,omitempty"`
	FailureURL      string        `json:"failureUrl,omitempty"`
	PendingURL      string        `json:"pendingUrl,omitempty"`
}

// OrderResult is the terminal outcome of one orchestrated order: exactly one
// is produced per invocation.
type OrderResult struct {
	OrderCode string
	Status    PaymentStatus
	// Authenticated reports whether a redirect authentication leg ran before
	// the status was reached.
	Authenticated bool
}

// Succeeded reports whether the gateway settled the order positively.
func (r *OrderResult) Succeeded() bool {
	return r != nil && (r.Status == PaymentStatusSuccess || r.Status == PaymentStatusAuthorized)
}

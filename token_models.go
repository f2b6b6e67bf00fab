package worldpay

import (
	"encoding/json"

	"github.com/oapi-codegen/runtime"
)

// TokenizedCard is the gateway's answer to a tokenization request: an opaque
// token standing in for the raw payment details, plus display metadata.
// Immutable once received.
type TokenizedCard struct {
	Token         string        `json:"token"`
	Reusable      bool          `json:"reusable"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// CardDetails is the card variant of the tokenized payment method.
type CardDetails struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	ExpiryMonth      string `json:"expiryMonth"`
	ExpiryYear       string `json:"expiryYear"`
	CardType         string `json:"cardType"`
	MaskedCardNumber string `json:"maskedCardNumber"`
	CardSchemeType   string `json:"cardSchemeType"`
	CardSchemeName   string `json:"cardSchemeName"`
	CardIssuer       string `json:"cardIssuer"`
	CountryCode      string `json:"countryCode"`
	CardClass        string `json:"cardClass"`
	Prepaid          string `json:"prepaid"`
}

// APMDetails is the alternative payment method variant of the tokenized
// payment method.
type APMDetails struct {
	Type               string `json:"type"`
	Name               string `json:"name"`
	APMName            string `json:"apmName"`
	ShopperCountryCode string `json:"shopperCountryCode"`
}

// PaymentMethod holds the tokenized payment method variant: card details or
// an APM descriptor. The gateway tags the variant with its "type" field.
type PaymentMethod struct {
	union json.RawMessage
}

// Type returns the discriminator of the underlying variant ("Card" or "APM").
func (t PaymentMethod) Type() string {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(t.union, &tag); err != nil {
		return ""
	}
	return tag.Type
}

// AsCardDetails returns the union data inside the PaymentMethod as CardDetails.
func (t PaymentMethod) AsCardDetails() (CardDetails, error) {
	var body CardDetails
	err := json.Unmarshal(t.union, &body)
	return body, err
}

// FromCardDetails overwrites any union data inside the PaymentMethod with the provided CardDetails.
func (t *PaymentMethod) FromCardDetails(v CardDetails) error {
	b, err := json.Marshal(v)
	t.union = b
	return err
}

// MergeCardDetails performs a merge with any union data inside the PaymentMethod, using the provided CardDetails.
func (t *PaymentMethod) MergeCardDetails(v CardDetails) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	merged, err := runtime.JSONMerge(t.union, b)
	t.union = merged
	return err
}

// AsAPMDetails returns the union data inside the PaymentMethod as APMDetails.
func (t PaymentMethod) AsAPMDetails() (APMDetails, error) {
	var body APMDetails
	err := json.Unmarshal(t.union, &body)
	return body, err
}

// FromAPMDetails overwrites any union data inside the PaymentMethod with the provided APMDetails.
func (t *PaymentMethod) FromAPMDetails(v APMDetails) error {
	b, err := json.Marshal(v)
	t.union = b
	return err
}

// MergeAPMDetails performs a merge with any union data inside the PaymentMethod, using the provided APMDetails.
func (t *PaymentMethod) MergeAPMDetails(v APMDetails) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	merged, err := runtime.JSONMerge(t.union, b)
	t.union = merged
	return err
}

// MarshalJSON serializes the underlying union for PaymentMethod.
func (t PaymentMethod) MarshalJSON() ([]byte, error) {
	b, err := t.union.MarshalJSON()
	return b, err
}

// UnmarshalJSON loads union data for PaymentMethod.
func (t *PaymentMethod) UnmarshalJSON(b []byte) error {
	err := t.union.UnmarshalJSON(b)
	return err
}

// tokenRequest is the body of POST /tokens.
type tokenRequest struct {
	Reusable      bool            `json:"reusable"`
	ClientKey     string          `json:"clientKey" validate:"required"`
	PaymentMethod json.RawMessage `json:"paymentMethod" validate:"required"`
}

// reuseTokenRequest is the body of PUT /tokens/{token}, re-validating a
// reusable token with a fresh CVC before use.
type reuseTokenRequest struct {
	ClientKey string `json:"clientKey" validate:"required"`
	CVC       string `json:"cvc" validate:"required,numeric"`
}

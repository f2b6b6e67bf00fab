package worldpay

import (
	"regexp"
	"strings"
)

const payPalAPMName = "paypal"

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// AlternativePaymentMethod describes a non-card payment method such as
// PayPal. It is tokenized and processed analogously to a card.
type AlternativePaymentMethod struct {
	Name               string
	APMName            string
	ShopperCountryCode string
}

// NewPayPalAPM builds a PayPal payment method for the named shopper and their
// ISO 3166-1 alpha-2 country code.
func NewPayPalAPM(name, shopperCountryCode string) *AlternativePaymentMethod {
	return &AlternativePaymentMethod{
		Name:               name,
		APMName:            payPalAPMName,
		ShopperCountryCode: shopperCountryCode,
	}
}

// APMValidationError is a bitmask of APM fields that failed validation. The
// zero value means the payment method is valid.
type APMValidationError uint8

const (
	// ErrAPMShopperName is set when the shopper name is empty after trimming.
	ErrAPMShopperName APMValidationError = 1 << iota
	// ErrAPMName is set when the APM identifier is empty.
	ErrAPMName
	// ErrAPMCountryCode is set when the country code is not two uppercase
	// letters.
	ErrAPMCountryCode
)

// Has reports whether the given field bit is set.
func (e APMValidationError) Has(flag APMValidationError) bool {
	return e&flag != 0
}

// HasErrors reports whether any field failed.
func (e APMValidationError) HasErrors() bool {
	return e != 0
}

// Error makes APMValidationError satisfy the stdlib error interface.
func (e APMValidationError) Error() string {
	if e == 0 {
		return ""
	}
	fields := make([]string, 0, 3)
	if e.Has(ErrAPMShopperName) {
		fields = append(fields, "shopper name")
	}
	if e.Has(ErrAPMName) {
		fields = append(fields, "apm name")
	}
	if e.Has(ErrAPMCountryCode) {
		fields = append(fields, "country code")
	}
	return "worldpay: invalid payment method " + strings.Join(fields, ", ")
}

// Validate checks the payment method descriptor.
func (a *AlternativePaymentMethod) Validate() APMValidationError {
	var verr APMValidationError
	if strings.TrimSpace(a.Name) == "" {
		verr |= ErrAPMShopperName
	}
	if strings.TrimSpace(a.APMName) == "" {
		verr |= ErrAPMName
	}
	if !countryCodePattern.MatchString(a.ShopperCountryCode) {
		verr |= ErrAPMCountryCode
	}
	return verr
}

// apmPayload is the paymentMethod JSON sent to the tokens endpoint.
type apmPayload struct {
	Type               string `json:"type"`
	Name               string `json:"name"`
	APMName            string `json:"apmName"`
	ShopperCountryCode string `json:"shopperCountryCode"`
}

func (a *AlternativePaymentMethod) payload() apmPayload {
	return apmPayload{
		Type:               "APM",
		Name:               a.Name,
		APMName:            a.APMName,
		ShopperCountryCode: a.ShopperCountryCode,
	}
}

package worldpay

import "strings"

// ValidationType selects how strictly card numbers are checked.
type ValidationType int

const (
	// ValidationTypeAdvanced requires the number to pass a Luhn checksum and
	// be 12-19 digits long. This is the default.
	ValidationTypeAdvanced ValidationType = iota
	// ValidationTypeBasic only requires the number to be all digits.
	ValidationTypeBasic
)

// Card holds the details a shopper types in. It exists only long enough to be
// exchanged for a token; nothing in this package persists it.
type Card struct {
	HolderName  string
	ExpiryMonth string
	ExpiryYear  string
	CardNumber  string
	CVC         string
}

// cardPayload is the paymentMethod JSON sent to the tokens endpoint.
type cardPayload struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CardNumber  string `json:"cardNumber"`
	CVC         string `json:"cvc,omitempty"`
}

func (c *Card) payload() cardPayload {
	return cardPayload{
		Type:        "Card",
		Name:        c.HolderName,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		CardNumber:  normalizeCardNumber(c.CardNumber),
		CVC:         c.CVC,
	}
}

// normalizeCardNumber strips the spaces and dashes shoppers type between
// digit groups.
func normalizeCardNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
}

package worldpay

import (
	"strconv"
	"strings"
	"time"
)

// CardValidationError is a bitmask of the card fields that failed validation.
// The zero value means the card is valid.
type CardValidationError uint8

const (
	// ErrCardHolderName is set when the holder name is empty after trimming.
	ErrCardHolderName CardValidationError = 1 << iota
	// ErrCardCVC is set when a CVC is present but not all digits. An absent
	// CVC is valid.
	ErrCardCVC
	// ErrCardExpiry is set when the expiry is missing, malformed, out of
	// range, or strictly before the current month.
	ErrCardExpiry
	// ErrCardNumber is set when the card number fails the configured
	// validation type.
	ErrCardNumber
)

// Has reports whether the given field bit is set.
func (e CardValidationError) Has(flag CardValidationError) bool {
	return e&flag != 0
}

// HasErrors reports whether any field failed.
func (e CardValidationError) HasErrors() bool {
	return e != 0
}

// Error makes CardValidationError satisfy the stdlib error interface.
func (e CardValidationError) Error() string {
	if e == 0 {
		return ""
	}
	fields := make([]string, 0, 4)
	if e.Has(ErrCardHolderName) {
		fields = append(fields, "holder name")
	}
	if e.Has(ErrCardCVC) {
		fields = append(fields, "cvc")
	}
	if e.Has(ErrCardExpiry) {
		fields = append(fields, "expiry")
	}
	if e.Has(ErrCardNumber) {
		fields = append(fields, "card number")
	}
	return "worldpay: invalid card " + strings.Join(fields, ", ")
}

// Validate checks the card with advanced number validation against the
// current time. The zero result means every rule passed.
func (c *Card) Validate() CardValidationError {
	return c.validateAt(time.Now(), ValidationTypeAdvanced)
}

func (c *Card) validateAt(now time.Time, typ ValidationType) CardValidationError {
	var verr CardValidationError
	if strings.TrimSpace(c.HolderName) == "" {
		verr |= ErrCardHolderName
	}
	if !ValidateCVC(c.CVC) {
		verr |= ErrCardCVC
	}
	if !validExpiry(c.ExpiryMonth, c.ExpiryYear, now) {
		verr |= ErrCardExpiry
	}
	if !validCardNumber(c.CardNumber, typ) {
		verr |= ErrCardNumber
	}
	return verr
}

// ValidateCVC reports whether the CVC is acceptable. The CVC is optional: an
// empty value passes, anything present must be all digits.
func ValidateCVC(cvc string) bool {
	if cvc == "" {
		return true
	}
	return allDigits(cvc)
}

// validExpiry requires both fields, a month in 1-12, a 4-digit year, and a
// (year, month) pair no earlier than the current one.
func validExpiry(month, year string, now time.Time) bool {
	if month == "" || year == "" {
		return false
	}
	if len(month) > 2 || len(year) != 4 {
		return false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	if y != now.Year() {
		return y > now.Year()
	}
	return m >= int(now.Month())
}

func validCardNumber(number string, typ ValidationType) bool {
	if typ == ValidationTypeBasic {
		return number != "" && allDigits(number)
	}
	return validCardNumberAdvanced(number)
}

// validCardNumberAdvanced allows spaces and dashes between digit groups, then
// requires 12-19 digits passing the Luhn checksum.
func validCardNumberAdvanced(number string) bool {
	if number == "" {
		return false
	}
	for _, r := range number {
		if r != ' ' && r != '-' && (r < '0' || r > '9') {
			return false
		}
	}
	digits := normalizeCardNumber(number)
	if len(digits) < 12 || len(digits) > 19 {
		return false
	}
	return luhn(digits)
}

// luhn computes the standard mod-10 checksum over an all-digit string.
func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum > 0 && sum%10 == 0
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package sandbox

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	worldpay "github.com/worldpay/worldpay-go"
)

// tokenRequest mirrors the body of POST /tokens.
type tokenRequest struct {
	Reusable      bool            `json:"reusable"`
	ClientKey     string          `json:"clientKey"`
	PaymentMethod json.RawMessage `json:"paymentMethod"`
}

// reuseRequest mirrors the body of PUT /tokens/{token}.
type reuseRequest struct {
	ClientKey string `json:"clientKey"`
	CVC       string `json:"cvc"`
}

type cardPayload struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CardNumber  string `json:"cardNumber"`
	CVC         string `json:"cvc,omitempty"`
}

type apmPayload struct {
	Type               string `json:"type"`
	Name               string `json:"name"`
	APMName            string `json:"apmName"`
	ShopperCountryCode string `json:"shopperCountryCode"`
}

func (g *Gateway) createToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if !g.clientKeys[req.ClientKey] {
		writeError(w, http.StatusUnauthorized, "INVALID_CLIENT_KEY", "unknown client key")
		return
	}

	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(req.PaymentMethod, &tag); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "paymentMethod must be a JSON object")
		return
	}
	switch tag.Type {
	case "Card":
		g.tokenizeCard(w, req)
	case "APM":
		g.tokenizeAPM(w, req)
	default:
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_PAYMENT_METHOD", "paymentMethod.type must be Card or APM")
	}
}

func (g *Gateway) tokenizeCard(w http.ResponseWriter, req tokenRequest) {
	var card cardPayload
	if err := json.Unmarshal(req.PaymentMethod, &card); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed card payment method")
		return
	}
	if len(card.CardNumber) < 12 || len(card.CardNumber) > 19 {
		writeError(w, http.StatusBadRequest, "INVALID_CARD_NUMBER", "card number must be 12 to 19 digits")
		return
	}
	if card.ExpiryMonth == "" || card.ExpiryYear == "" {
		writeError(w, http.StatusBadRequest, "INVALID_EXPIRY", "expiry month and year are required")
		return
	}

	details := worldpay.CardDetails{
		Type:             "Card",
		Name:             card.Name,
		ExpiryMonth:      card.ExpiryMonth,
		ExpiryYear:       card.ExpiryYear,
		CardType:         cardScheme(card.CardNumber) + "_CREDIT",
		MaskedCardNumber: maskCardNumber(card.CardNumber),
		CardSchemeType:   "consumer",
		CardSchemeName:   cardScheme(card.CardNumber),
		CardIssuer:       "SANDBOX BANK",
		CountryCode:      "GB",
		CardClass:        "credit",
		Prepaid:          "false",
	}
	var method worldpay.PaymentMethod
	if err := method.FromCardDetails(details); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not tokenize card")
		return
	}
	g.issueToken(w, req.Reusable, "Card", method)
}

func (g *Gateway) tokenizeAPM(w http.ResponseWriter, req tokenRequest) {
	var apm apmPayload
	if err := json.Unmarshal(req.PaymentMethod, &apm); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed APM payment method")
		return
	}
	if apm.APMName == "" || apm.ShopperCountryCode == "" {
		writeError(w, http.StatusBadRequest, "INVALID_APM", "apmName and shopperCountryCode are required")
		return
	}

	var method worldpay.PaymentMethod
	if err := method.FromAPMDetails(worldpay.APMDetails(apm)); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not tokenize payment method")
		return
	}
	g.issueToken(w, req.Reusable, "APM", method)
}

func (g *Gateway) issueToken(w http.ResponseWriter, reusable bool, kind string, method worldpay.PaymentMethod) {
	record := &tokenRecord{
		token:         "TEST_" + uuid.NewString(),
		reusable:      reusable,
		kind:          kind,
		paymentMethod: method,
		created:       g.clock(),
	}
	g.mu.Lock()
	g.tokens[record.token] = record
	g.mu.Unlock()

	writeJSON(w, http.StatusOK, worldpay.TokenizedCard{
		Token:         record.token,
		Reusable:      record.reusable,
		PaymentMethod: record.paymentMethod,
	})
}

func (g *Gateway) reuseToken(w http.ResponseWriter, r *http.Request) {
	var req reuseRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if !g.clientKeys[req.ClientKey] {
		writeError(w, http.StatusUnauthorized, "INVALID_CLIENT_KEY", "unknown client key")
		return
	}
	if !allDigits(req.CVC) {
		writeError(w, http.StatusBadRequest, "INVALID_CVC", "cvc must contain digits only")
		return
	}

	token := chi.URLParam(r, "token")
	g.mu.Lock()
	record, ok := g.tokens[token]
	g.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "TKN_NOT_FOUND", "token could not be found")
		return
	}
	if !record.reusable {
		writeError(w, http.StatusBadRequest, "TKN_NOT_REUSABLE", "token was issued for a single use")
		return
	}

	writeJSON(w, http.StatusOK, worldpay.TokenizedCard{
		Token:         record.token,
		Reusable:      record.reusable,
		PaymentMethod: record.paymentMethod,
	})
}

// cardScheme guesses the display scheme off the leading digit, which is all
// the sandbox needs.
func cardScheme(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "VISA"
	case strings.HasPrefix(number, "5"):
		return "MASTERCARD"
	case strings.HasPrefix(number, "3"):
		return "AMEX"
	default:
		return "CARD"
	}
}

func maskCardNumber(number string) string {
	if len(number) < 8 {
		return number
	}
	return number[:4] + strings.Repeat("*", len(number)-8) + number[len(number)-4:]
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

package sandbox

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var errInvalidKey = errors.New("sandbox: invalid key")

// gatewayError mirrors the WorldPay error body the client parses into its
// ResponseError type.
type gatewayError struct {
	Message        string `json:"message"`
	Description    string `json:"description"`
	CustomCode     string `json:"customCode"`
	HTTPStatusCode int    `json:"httpStatusCode"`
	ErrorHelpURL   string `json:"errorHelpUrl,omitempty"`
}

func decodeJSON(body io.ReadCloser, v any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body required")
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, customCode, message string) {
	payload := gatewayError{
		Message:        message,
		Description:    message,
		CustomCode:     customCode,
		HTTPStatusCode: status,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// externalBase reconstructs the absolute URL prefix callers can reach this
// gateway on, so redirect URLs in responses resolve from outside.
func externalBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

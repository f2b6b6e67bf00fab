package worldpay

import (
	"encoding/json"
	"fmt"
)

// SDKErrorCode identifies a client-side or transport fault.
type SDKErrorCode int

const (
	ErrCodeUnexpected        SDKErrorCode = 1   // Unexpected library failure.
	ErrCodeNoNetwork         SDKErrorCode = 10  // Connectivity probe reported no network.
	ErrCodeCreatingRequest   SDKErrorCode = 100 // Request payload could not be built.
	ErrCodeUnknownResponse   SDKErrorCode = 200 // Empty or unrecognizable response.
	ErrCodeConnection        SDKErrorCode = 201 // Connection to the gateway failed.
	ErrCodeMalformedResponse SDKErrorCode = 202 // Response body could not be parsed.
)

// SDKError is a fault raised by the library itself rather than the gateway:
// no network, a request that could not be built, a connection failure, or a
// response that could not be understood. SDK errors are fatal to the current
// operation and never retried automatically.
type SDKError struct {
	Code    SDKErrorCode
	Message string

	cause error
}

// Error makes *SDKError satisfy the stdlib error interface.
func (e *SDKError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("worldpay: %s: %v", e.Message, e.cause)
	}
	return "worldpay: " + e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *SDKError) Unwrap() error {
	return e.cause
}

func newSDKError(code SDKErrorCode, message string) *SDKError {
	return &SDKError{Code: code, Message: message}
}

func wrapSDKError(code SDKErrorCode, message string, cause error) *SDKError {
	return &SDKError{Code: code, Message: message, cause: cause}
}

// ResponseError is a business error reported by the gateway: a non-200
// response with a structured body. Its fields are surfaced verbatim.
type ResponseError struct {
	Message         string `json:"message"`
	Description     string `json:"description"`
	CustomCode      string `json:"customCode"`
	HTTPStatusCode  int    `json:"httpStatusCode"`
	OriginalRequest string `json:"originalRequest,omitempty"`
	ErrorHelpURL    string `json:"errorHelpUrl,omitempty"`
}

// Error makes *ResponseError satisfy the stdlib error interface.
func (e *ResponseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("worldpay: gateway returned HTTP %d", e.HTTPStatusCode)
	}
	return fmt.Sprintf("worldpay: %s (HTTP %d)", e.Message, e.HTTPStatusCode)
}

// parseResponseError builds a ResponseError from a non-200 gateway response.
// An empty body yields an error carrying only the HTTP status; a body that is
// not the documented error JSON is a malformed-response SDKError instead.
func parseResponseError(status int, body []byte) error {
	if len(body) == 0 {
		return &ResponseError{HTTPStatusCode: status}
	}
	respErr := &ResponseError{}
	if err := json.Unmarshal(body, respErr); err != nil {
		return wrapSDKError(ErrCodeMalformedResponse, "json parsing failed", err)
	}
	if respErr.HTTPStatusCode == 0 {
		respErr.HTTPStatusCode = status
	}
	return respErr
}

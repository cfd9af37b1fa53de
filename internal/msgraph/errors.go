package msgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error kinds for classified Microsoft Graph failures.
var (
	// ErrAuthExpired indicates the access token is invalid or expired.
	ErrAuthExpired = errors.New("msgraph: authentication expired")

	// ErrInsufficientPermissions indicates the granted scopes do not cover
	// the attempted operation.
	ErrInsufficientPermissions = errors.New("msgraph: insufficient permissions")

	// ErrNotFound indicates the referenced mailbox, folder, message or
	// event does not exist or is inaccessible.
	ErrNotFound = errors.New("msgraph: resource not found")

	// ErrRetriesExhausted indicates the retry budget was spent without a
	// successful response.
	ErrRetriesExhausted = errors.New("msgraph: retry attempts exhausted")

	// ErrBatchTooLarge indicates a $batch call exceeded the sub-request
	// ceiling. It is raised before anything is dispatched.
	ErrBatchTooLarge = errors.New("msgraph: batch size exceeds limit")

	// ErrUnknown tags failures that match no known classification. The
	// original service message is preserved on the classified error.
	ErrUnknown = errors.New("msgraph: request failed")
)

// codeInvalidToken is the Graph error code returned when the access token
// is rejected. It classifies the same as a 401 status.
const codeInvalidToken = "InvalidAuthenticationToken"

// GraphError is a classified Microsoft Graph failure. It carries the
// diagnostic fields an operator needs to cross-reference a client-side log
// entry with a server-side record.
type GraphError struct {
	// Kind is the classification sentinel; errors.Is matches against it.
	Kind error
	// Message is the remediation-oriented description for the caller.
	Message string
	// StatusCode is the HTTP status of the failing response, if any.
	StatusCode int
	// Code is the Graph error code string, when the body carried one.
	Code string
	// CorrelationID is the client-request-id sent with the failing attempt.
	CorrelationID string
	// Timestamp records when the failure was classified.
	Timestamp time.Time
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.CorrelationID == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (correlation id %s)", e.Message, e.CorrelationID)
}

// Unwrap exposes the kind sentinel so errors.Is can match classified
// failures against the package error variables.
func (e *GraphError) Unwrap() error {
	return e.Kind
}

// graphErrorBody is the error envelope Microsoft Graph returns:
// {"error": {"code": "...", "message": "..."}}.
type graphErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Classify maps a raw Graph failure onto the error taxonomy. It is a pure
// mapping keyed on the normalised status code and Graph error code, so it
// stays independent of any transport library's error shapes. The returned
// error always carries the correlation id and a classification timestamp,
// unknown failures included.
func Classify(statusCode int, body []byte, correlationID string) *GraphError {
	var envelope graphErrorBody
	// Gateway failures sometimes return empty or non-JSON bodies; an
	// undecodable envelope simply leaves the code and message blank.
	_ = json.Unmarshal(body, &envelope)

	ge := &GraphError{
		StatusCode:    statusCode,
		Code:          envelope.Error.Code,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
	}

	switch {
	case envelope.Error.Code == codeInvalidToken:
		ge.Kind = ErrAuthExpired
		ge.Message = "access token rejected (InvalidAuthenticationToken): run 'outlook-mcp login' to re-authenticate"
	case statusCode == http.StatusUnauthorized:
		ge.Kind = ErrAuthExpired
		ge.Message = "authentication expired: run 'outlook-mcp login' to re-authenticate"
	case statusCode == http.StatusForbidden:
		ge.Kind = ErrInsufficientPermissions
		ge.Message = "insufficient permissions: review the scopes granted to the application in Azure"
	case statusCode == http.StatusNotFound:
		ge.Kind = ErrNotFound
		ge.Message = "resource not found: the referenced mailbox, folder, message or event does not exist"
	default:
		ge.Kind = ErrUnknown
		message := envelope.Error.Message
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", statusCode)
		}
		ge.Message = message
	}

	return ge
}

// IsRetryable reports whether a status code is transient and worth another
// attempt: throttling or a server-side failure.
func IsRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		(statusCode >= http.StatusInternalServerError && statusCode < 600)
}

// IsAuthExpired checks if an error classifies as an authentication failure.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}

// IsNotFound checks if an error classifies as a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

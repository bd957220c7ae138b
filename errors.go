package schemareg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Error codes carried by ErrorResponse.
const (
	CodePanic            = "panic"
	CodeInvalidPayload   = "invalid_payload"
	CodeUnknownOperation = "unknown_operation"
	CodeInternal         = "internal"
)

var (
	// ErrUnknownOperation is returned when no handler is registered under a name.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidPayload is returned when a payload fails input validation.
	ErrInvalidPayload = errors.New("invalid payload")
)

// ErrorResponse is the structured form of an operation failure.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// Is maps error codes onto the package sentinels.
func (e *ErrorResponse) Is(target error) bool {
	switch target {
	case ErrInvalidPayload:
		return e.Code == CodeInvalidPayload
	case ErrUnknownOperation:
		return e.Code == CodeUnknownOperation
	}
	return false
}

// ToJSON encodes the response. It never fails.
func (e *ErrorResponse) ToJSON() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"code":"internal","message":"failed to encode error"}`)
	}
	return b
}

// NewPanicError converts a recovered panic value.
func NewPanicError(r interface{}) *ErrorResponse {
	return &ErrorResponse{
		Code:    CodePanic,
		Message: fmt.Sprintf("operation panicked: %v", r),
	}
}

// NewInvalidPayloadError reports validation failures for an operation.
func NewInvalidPayloadError(operation string, details []string) *ErrorResponse {
	return &ErrorResponse{
		Code:    CodeInvalidPayload,
		Message: fmt.Sprintf("invalid arguments for %s", operation),
		Details: details,
	}
}

// NewUnknownOperationError reports a call to an unregistered operation.
func NewUnknownOperationError(operation string) *ErrorResponse {
	return &ErrorResponse{
		Code:    CodeUnknownOperation,
		Message: fmt.Sprintf("unknown operation %q", operation),
	}
}

// AsErrorResponse returns err as an ErrorResponse, wrapping foreign errors as internal.
func AsErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	var resp *ErrorResponse
	if errors.As(err, &resp) {
		return resp
	}
	return &ErrorResponse{Code: CodeInternal, Message: err.Error()}
}

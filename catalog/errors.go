package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a remote fetch failure
type ErrorKind int

const (
	// TransportFailure is a network or transport level failure
	TransportFailure ErrorKind = iota
	// HTTPStatusFailure is a non-success HTTP status code
	HTTPStatusFailure
	// DecodeFailure means the response body could not be decoded
	DecodeFailure
	// EmptyResponse means the response carried no usable data
	EmptyResponse
	// InvalidParameter means the request was rejected before being sent
	InvalidParameter
	// ImageDecodeFailure means image bytes could not be decoded
	ImageDecodeFailure
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case TransportFailure:
		return "transport failure"
	case HTTPStatusFailure:
		return "http status failure"
	case DecodeFailure:
		return "decode failure"
	case EmptyResponse:
		return "empty response"
	case InvalidParameter:
		return "invalid parameter"
	case ImageDecodeFailure:
		return "image decode failure"
	default:
		return "unknown failure"
	}
}

// FetchError is a classified failure of a remote fetch
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	switch {
	case e.Kind == HTTPStatusFailure:
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.StatusCode, e.Message)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a not found response
func (e *FetchError) IsNotFound() bool {
	return e.Kind == HTTPStatusFailure && e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *FetchError) IsUnauthorized() bool {
	return e.Kind == HTTPStatusFailure &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// NewFetchError builds a FetchError of the given kind
func NewFetchError(kind ErrorKind, message string, err error) *FetchError {
	return &FetchError{Kind: kind, Message: message, Err: err}
}

// StatusError builds an HTTPStatusFailure for a response code
func StatusError(code int, message string) *FetchError {
	return &FetchError{Kind: HTTPStatusFailure, StatusCode: code, Message: message}
}

// KindOf returns the kind of a FetchError anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

var statusPhrases = map[int]string{
	http.StatusBadRequest:          "Bad request",
	http.StatusUnauthorized:        "Unauthorized - check the API key",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not found",
	http.StatusTooManyRequests:     "Too many requests - try again later",
	http.StatusInternalServerError: "Server error",
	http.StatusServiceUnavailable:  "Service unavailable",
}

// UserMessage derives a human-readable message for an error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		return "Unexpected error: " + err.Error()
	}

	switch fe.Kind {
	case HTTPStatusFailure:
		msg := fmt.Sprintf("HTTP code (%d) error", fe.StatusCode)
		if phrase, ok := statusPhrases[fe.StatusCode]; ok {
			msg += " - " + phrase
		}
		return msg
	case TransportFailure:
		return "Network request failed: " + detail(fe)
	case DecodeFailure:
		return "Decoding error: " + detail(fe)
	case EmptyResponse:
		return "Unexpected error - the response was empty"
	case InvalidParameter:
		return "Invalid parameter error: " + detail(fe)
	case ImageDecodeFailure:
		return "Data conversion error. Data could not be converted to an image."
	default:
		return "Unexpected error: " + fe.Error()
	}
}

func detail(fe *FetchError) string {
	if fe.Message != "" {
		return fe.Message
	}
	if fe.Err != nil {
		return fe.Err.Error()
	}
	return fe.Kind.String()
}

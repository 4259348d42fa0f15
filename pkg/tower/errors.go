package tower

import (
	"errors"
	"fmt"
	"strings"

	pkgstrings "jettower/pkg/strings"
)

// maxErrorBodyLen bounds how much of an upstream body is echoed in Error().
// The full body stays available in RequestError.Body.
const maxErrorBodyLen = 200

var (
	// ErrEmptyResponse is returned when a GraphQL response carries neither
	// data nor errors.
	ErrEmptyResponse = errors.New("graphql response has neither data nor errors")

	// ErrEndpointNotResolved is returned when the OAuth API endpoint is read
	// before discovery stored it.
	ErrEndpointNotResolved = errors.New("OAuth API endpoint is absent")
)

// RequestError is returned when an upstream call answers with a non-2xx
// status. Body carries the raw response body for diagnostics.
type RequestError struct {
	// Op names the failed operation, e.g. "request" or "get user info".
	Op         string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	msg := fmt.Sprintf("failed to %s (status %d)", e.Op, e.StatusCode)
	if e.Op == opRequest {
		msg = fmt.Sprintf("request failed (status %d)", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + pkgstrings.Truncate(e.Body, maxErrorBodyLen)
	}
	return msg
}

// IsRequestError reports whether err is or wraps a *RequestError.
func IsRequestError(err error) bool {
	var requestErr *RequestError
	return errors.As(err, &requestErr)
}

// GraphQLError is one entry of the errors list of a GraphQL response.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLErrors is returned when a GraphQL response carries errors.
type GraphQLErrors []GraphQLError

// Error implements the error interface.
func (e GraphQLErrors) Error() string {
	if len(e) == 0 {
		return "graphql response error: empty errors list"
	}
	messages := make([]string, 0, len(e))
	for _, gqlErr := range e {
		messages = append(messages, gqlErr.Message)
	}
	return "graphql response error: " + strings.Join(messages, "; ")
}

// InvalidEndpointError is returned when discovery yields something that is
// not an absolute URL.
type InvalidEndpointError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *InvalidEndpointError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid OAuth API endpoint %q: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("invalid OAuth API endpoint %q: not an absolute URL", e.Endpoint)
}

// Unwrap returns the underlying parse error, if any.
func (e *InvalidEndpointError) Unwrap() error {
	return e.Err
}

package transport

import "fmt"

// ErrorKind classifies a failed exchange with the backend.
type ErrorKind string

const (
	// KindNetworkUnavailable means the request never produced an HTTP
	// response (DNS failure, refused connection, timeout).
	KindNetworkUnavailable ErrorKind = "network_unavailable"

	// KindServerError means the backend answered with a non-success status.
	KindServerError ErrorKind = "server_error"

	// KindSessionExpired means the backend no longer knows the session id
	// the request was issued against. The caller is expected to reset.
	KindSessionExpired ErrorKind = "session_expired"

	// KindUnexpected covers responses that cannot be interpreted at all,
	// e.g. a success status with an undecodable body.
	KindUnexpected ErrorKind = "unexpected"
)

// Error is the typed failure returned by the Client. Status is only set for
// KindServerError.
type Error struct {
	Kind   ErrorKind
	Status int
	cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServerError:
		return fmt.Sprintf("transport: server error (status %d)", e.Status)
	case KindSessionExpired:
		return "transport: session expired"
	case KindNetworkUnavailable:
		return fmt.Sprintf("transport: network unavailable: %v", e.cause)
	default:
		return fmt.Sprintf("transport: unexpected error: %v", e.cause)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Package client talks to the TaskKeeper REST API.
//
// HTTPClient wraps net/http with JSON encoding, bearer-token injection and
// mapping of failures to sentinel errors that callers match with errors.Is:
// ErrUnavailable when the server cannot be reached and ErrUnauthorized for
// any 401. Other non-2xx responses surface as *APIError.
package client

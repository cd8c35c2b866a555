package api

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when the backend answers 401. By the time a
// caller sees it the unauthorized hook has already cleared the session.
var ErrUnauthenticated = errors.New("authentication required")

// ErrAborted is the aborted-request sentinel. Cancellation is disabled in
// this transport (see [AbortHandle]), so the client never produces it, but
// legacy call sites still match on it.
var ErrAborted = errors.New("request aborted")

// Error is an application-level failure: either a non-success envelope code
// from a 2xx response, or a non-2xx HTTP status. Status is 0 for pure
// envelope failures.
type Error struct {
	Code    int
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: code %d: %s", e.Code, e.Message)
}

// AsError unwraps an [*Error] from err, if one is present.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// AbortHandle is the request-cancellation surface. It is intentionally a
// no-op: cancellation is disabled in the transport, and Abort must not be
// assumed to stop an in-flight request.
type AbortHandle struct{}

// Abort does nothing. Cancellation disabled.
func (h *AbortHandle) Abort() {}

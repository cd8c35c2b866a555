// Package api is the HTTP client for the code-review backend.
//
// # Interceptor pipeline
//
// Every outgoing request flows through a request-interceptor chain that
// stamps the bearer token, forces the JSON content type, and attaches a
// request id. Every incoming response is unwrapped from the uniform
// {code, message, data} envelope; a non-success envelope code is raised as an
// [*Error] and surfaced as a user notification unless the caller opted into
// silent mode. Transport failures branch on HTTP status, with 401 clearing
// the session through the unauthorized hook.
//
// # Cancellation
//
// The abort facility is intentionally inert: [AbortHandle.Abort] does
// nothing and in-flight requests cannot be stopped. [ErrAborted] stays
// exported because legacy call sites still match on it.
package api

// Package fetch loads boards from remote HTTP sources.
//
// A [Client] wraps an [net/http.Client] with the masonry User-Agent, a
// response cache, and retry with exponential backoff for transient failures.
// Status codes map onto structured errors from pkg/errors:
//
//	404       NOT_FOUND
//	429       RATE_LIMITED (Retry-After is honored by the caller)
//	5xx       NETWORK_ERROR, retried
//	transport NETWORK_ERROR or TIMEOUT, retried
//
// The body is decoded as TOML when the URL ends in .toml or the server
// reports a TOML content type, and as JSON otherwise.
package fetch

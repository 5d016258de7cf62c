// Package gateway builds and dispatches authenticated HTTP requests against
// the target API.
//
// A Gateway resolves a bearer credential for the calling identity through the
// injected token provider, attaches the identity-scoped headers (bearer
// token, subscription key, and the simulation headers under mock mode),
// encodes multipart bodies or query parameters, and returns the raw response.
// Streamed responses expose a lazy line-by-line SSE scanner.
//
// The gateway never retries: HTTP-level failures and business-rule 4xx
// responses are surfaced verbatim so the consuming test can assert on them.
// Only token acquisition retries, inside the auth package.
package gateway

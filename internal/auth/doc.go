// Package auth resolves bearer credentials for application identities.
//
// The Provider is the single owner of the token cache. It picks one of three
// strategies per identity:
//
//   - StrategyMock: the process-wide mock switch is on; the configured mock
//     token is returned without any network or cache interaction.
//   - StrategyUserToken: user-priority identities return a pre-provisioned
//     token looked up through a named environment reference, with a test-only
//     mock fallback reference.
//   - StrategyClientCredentials: application-priority identities run the
//     OAuth2 client-credentials flow against the tenant's token endpoint,
//     with per-(client id, scope) caching, a five-minute expiry safety margin
//     and exponential backoff on transient failures.
//
// The Provider holds its own state and is injected into whatever issues
// requests; there is no package-level singleton, so parallel suite runs stay
// isolated. Concurrent resolution for the same cache key is deduplicated with
// singleflight; a redundant acquisition under race is harmless and the cache
// update is last-writer-wins.
package auth

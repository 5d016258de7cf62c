package auth

import "chatcheck/internal/registry"

// Strategy is the credential-resolution strategy for one identity. It is a
// tagged variant over the identity's configuration and the process-wide mock
// switch, resolved once per identity rather than re-derived on every call.
type Strategy int

const (
	// StrategyClientCredentials runs the OAuth2 client-credentials flow.
	StrategyClientCredentials Strategy = iota

	// StrategyUserToken returns a pre-provisioned user token from a named
	// environment reference.
	StrategyUserToken

	// StrategyMock returns the configured mock token without any network or
	// cache interaction.
	StrategyMock
)

// String makes Strategy satisfy the fmt.Stringer interface.
func (s Strategy) String() string {
	switch s {
	case StrategyClientCredentials:
		return "client-credentials"
	case StrategyUserToken:
		return "user-token"
	case StrategyMock:
		return "mock"
	default:
		return "unknown"
	}
}

// resolveStrategy picks the strategy for an identity. The mock switch wins
// over everything; otherwise the identity's priority class decides.
func resolveStrategy(mockMode bool, identity *registry.ApplicationIdentity) Strategy {
	if mockMode {
		return StrategyMock
	}
	if identity.Priority == registry.PriorityUser {
		return StrategyUserToken
	}
	return StrategyClientCredentials
}

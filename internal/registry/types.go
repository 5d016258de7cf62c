package registry

// PriorityClass states whether an identity authenticates as a service
// principal or on behalf of an end user.
type PriorityClass string

const (
	// PriorityUser marks an identity that authenticates on behalf of an end
	// user with a pre-provisioned token.
	PriorityUser PriorityClass = "user"

	// PriorityApplication marks an identity that authenticates as a service
	// via the client-credentials flow.
	PriorityApplication PriorityClass = "application"
)

// Valid reports whether the priority class is one of the two allowed values.
func (p PriorityClass) Valid() bool {
	return p == PriorityUser || p == PriorityApplication
}

// OAuthConfig is the per-identity OAuth configuration block.
//
// Client id and secret are never stored in the identity source; the source
// carries the names of environment variables that hold them. The same applies
// to pre-provisioned user tokens.
type OAuthConfig struct {
	// TenantID identifies the authority tenant the token endpoint is derived from.
	TenantID string `yaml:"tenant_id"`

	// Scope is the OAuth scope string requested for this identity.
	Scope string `yaml:"scope"`

	// Authority optionally overrides the default login authority URL.
	Authority string `yaml:"authority,omitempty"`

	// ClientIDEnv names the environment variable holding the client id.
	ClientIDEnv string `yaml:"client_id_env,omitempty"`

	// ClientSecretEnv names the environment variable holding the client secret.
	ClientSecretEnv string `yaml:"client_secret_env,omitempty"`

	// UserTokenEnv names the environment variable holding a pre-provisioned
	// user token. Only meaningful for PriorityUser identities.
	UserTokenEnv string `yaml:"user_token_env,omitempty"`

	// MockUserTokenEnv names the environment variable holding a test-only
	// fallback user token, used when no pre-provisioned token is available.
	MockUserTokenEnv string `yaml:"mock_user_token_env,omitempty"`
}

// ApplicationIdentity represents one simulated API caller.
//
// Records are constructed once at suite start by the registry loader and are
// never mutated afterwards.
type ApplicationIdentity struct {
	// ID uniquely identifies the identity across the loaded set.
	ID string `yaml:"app_id"`

	// Name is the human-readable display name.
	Name string `yaml:"app_name"`

	// Priority is the identity's priority class (user or application).
	Priority PriorityClass `yaml:"role_priority"`

	// Roles lists the role names granted to this identity.
	Roles []string `yaml:"roles"`

	// RoleTests optionally maps a granted role to the parameters its test
	// scenario should run with.
	RoleTests map[string]map[string]interface{} `yaml:"roles_test,omitempty"`

	// SubscriptionKey is the API-management subscription secret sent with
	// every request.
	SubscriptionKey string `yaml:"subscription_key"`

	// OAuth is the OAuth configuration block.
	OAuth OAuthConfig `yaml:"oauth"`

	// Country, Lang and Catalog tag the identity with locale and catalog
	// defaults used by locale-sensitive probes.
	Country string `yaml:"country,omitempty"`
	Lang    string `yaml:"lang,omitempty"`
	Catalog string `yaml:"catalog,omitempty"`

	// UniqueName is the simulated user principal name injected under mock
	// mode for PriorityUser identities.
	UniqueName string `yaml:"unique_name,omitempty"`

	// FetchHistory grants access to the chat-history endpoints.
	FetchHistory bool `yaml:"fetch_history,omitempty"`

	// Mutualize enables conversational-state sharing for this identity.
	// MutualizeWith names the origin identity whose conversations this
	// identity is expected to observe.
	Mutualize     bool   `yaml:"mutualize,omitempty"`
	MutualizeWith string `yaml:"mutualize_with,omitempty"`
}

// HasRole reports whether the identity is granted the given role.
func (a *ApplicationIdentity) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleTest returns the test parameters configured for a role, or nil if the
// role has no test configuration.
func (a *ApplicationIdentity) RoleTest(role string) map[string]interface{} {
	if a.RoleTests == nil {
		return nil
	}
	return a.RoleTests[role]
}

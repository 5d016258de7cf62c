package registry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"chatcheck/pkg/logging"

	"gopkg.in/yaml.v3"
)

// DefaultSourceFile is the default identity source, relative to the working
// directory of the harness.
const DefaultSourceFile = "apps.yaml"

// Registry loads, validates and indexes the application identity set.
//
// A Registry is safe for concurrent use. The source is parsed at most once;
// the validated set is cached for the lifetime of the Registry.
type Registry struct {
	path string

	once       sync.Once
	identities []ApplicationIdentity
	loadErr    error
}

// New creates a Registry reading from the given source path. An empty path
// falls back to DefaultSourceFile.
func New(path string) *Registry {
	if path == "" {
		path = DefaultSourceFile
	}
	return &Registry{path: path}
}

// Load parses and validates the identity source. The first call does the
// work; subsequent calls return the cached, already-validated set.
//
// It returns a *ConfigurationError if the source is missing or unreadable,
// and a *ValidationError naming the offending record and field if any record
// violates the schema. A single bad record aborts the whole load.
func (r *Registry) Load() ([]ApplicationIdentity, error) {
	r.once.Do(func() {
		r.identities, r.loadErr = r.load()
	})
	return r.identities, r.loadErr
}

func (r *Registry) load() ([]ApplicationIdentity, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigurationError{
				Path:    r.path,
				Message: "not found; create it from apps.yaml.example",
				Err:     err,
			}
		}
		return nil, &ConfigurationError{Path: r.path, Message: "unreadable", Err: err}
	}

	var identities []ApplicationIdentity
	if err := yaml.Unmarshal(data, &identities); err != nil {
		return nil, &ConfigurationError{Path: r.path, Message: "malformed YAML", Err: err}
	}

	seen := make(map[string]int, len(identities))
	for i := range identities {
		id := &identities[i]
		if err := validateIdentity(i, id); err != nil {
			return nil, err
		}
		if prev, dup := seen[id.ID]; dup {
			return nil, newValidationError(i, id.Name, "app_id",
				fmt.Sprintf("duplicate id %q, already used at index %d", id.ID, prev))
		}
		seen[id.ID] = i
	}

	logging.Info("AppRegistry", "loaded %d identities from %s", len(identities), r.path)
	return identities, nil
}

// validateIdentity enforces the record schema from the data model: required
// fields, the priority-class enum, and the per-class OAuth constraints.
func validateIdentity(index int, id *ApplicationIdentity) error {
	if id.ID == "" {
		return newValidationError(index, id.Name, "app_id", "required")
	}
	if id.Name == "" {
		return newValidationError(index, id.Name, "app_name", "required")
	}
	if !id.Priority.Valid() {
		return newValidationError(index, id.Name, "role_priority",
			fmt.Sprintf("must be %q or %q, got %q", PriorityUser, PriorityApplication, id.Priority))
	}
	if len(id.Roles) == 0 {
		return newValidationError(index, id.Name, "roles", "at least one role is required")
	}
	if id.SubscriptionKey == "" {
		return newValidationError(index, id.Name, "subscription_key", "required")
	}
	if id.OAuth.TenantID == "" {
		return newValidationError(index, id.Name, "oauth.tenant_id", "required")
	}
	if id.OAuth.Scope == "" {
		return newValidationError(index, id.Name, "oauth.scope", "required")
	}

	switch id.Priority {
	case PriorityUser:
		// A user identity must be resolvable without the client-credentials
		// flow: either a pre-provisioned token or the mock fallback.
		if id.OAuth.UserTokenEnv == "" && id.OAuth.MockUserTokenEnv == "" {
			return newValidationError(index, id.Name, "oauth.user_token_env",
				"user identities need user_token_env or mock_user_token_env")
		}
	case PriorityApplication:
		if id.OAuth.ClientIDEnv == "" {
			return newValidationError(index, id.Name, "oauth.client_id_env", "required for application identities")
		}
		if id.OAuth.ClientSecretEnv == "" {
			return newValidationError(index, id.Name, "oauth.client_secret_env", "required for application identities")
		}
	}

	if id.Mutualize && id.MutualizeWith == "" {
		return newValidationError(index, id.Name, "mutualize_with",
			"required when mutualize is enabled")
	}

	return nil
}

// Get returns the identity with the given id, or nil if the set does not
// contain it.
func (r *Registry) Get(id string) (*ApplicationIdentity, error) {
	identities, err := r.Load()
	if err != nil {
		return nil, err
	}
	for i := range identities {
		if identities[i].ID == id {
			return &identities[i], nil
		}
	}
	return nil, nil
}

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"chatcheck/internal/registry"
	"chatcheck/pkg/logging"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultAuthorityBase is the login authority used when an identity does
	// not configure an explicit authority URL.
	DefaultAuthorityBase = "https://login.microsoftonline.com"

	// DefaultHTTPTimeout is the default timeout for token endpoint requests.
	DefaultHTTPTimeout = 30 * time.Second

	// expiryMargin is the safety margin applied when checking a cached
	// credential: entries within five minutes of expiry are treated as
	// expired and re-acquired.
	expiryMargin = 5 * time.Minute

	// defaultExpiresIn is assumed when the token endpoint omits expires_in.
	defaultExpiresIn = 3600
)

// Credential is an opaque bearer token plus its absolute expiry instant.
// A zero ExpiresAt means the credential does not expire within the test run
// (pre-provisioned and mock tokens).
type Credential struct {
	Token     RedactedToken
	ExpiresAt time.Time
}

// OAuth2Token converts the credential to an oauth2.Token for interop with
// golang.org/x/oauth2 consumers.
func (c Credential) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: c.Token.Value(),
		TokenType:   "Bearer",
		Expiry:      c.ExpiresAt,
	}
}

// cacheEntry is one cached credential. Entries are replaced wholesale, never
// partially updated.
type cacheEntry struct {
	token     string
	expiresAt time.Time
}

// tokenResponse is the token endpoint's success payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Provider resolves bearer credentials for application identities. It owns
// the token cache; construct one per suite run and inject it wherever
// requests are issued.
type Provider struct {
	httpClient    *http.Client
	env           func(string) string
	sleep         func(time.Duration)
	now           func() time.Time
	policy        RetryPolicy
	authorityBase string

	mockMode  bool
	mockToken string

	mu         sync.Mutex
	cache      map[string]cacheEntry
	strategies map[string]Strategy

	group singleflight.Group
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient sets the HTTP client used for token endpoint requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithEnv sets the environment lookup function. Tests inject a map-backed
// lookup instead of mutating the process environment.
func WithEnv(env func(string) string) Option {
	return func(p *Provider) { p.env = env }
}

// WithSleep sets the sleep function used between retry attempts.
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *Provider) { p.sleep = sleep }
}

// WithClock sets the time source used for cache expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithRetryPolicy sets the retry budget for token acquisition.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Provider) { p.policy = policy }
}

// WithAuthorityBase overrides the login authority base URL. Mainly used by
// tests pointing the provider at a local fake.
func WithAuthorityBase(base string) Option {
	return func(p *Provider) { p.authorityBase = strings.TrimSuffix(base, "/") }
}

// WithMockToken enables mock mode with the given token. Every resolution
// returns the token verbatim without touching the network or the cache.
func WithMockToken(token string) Option {
	return func(p *Provider) {
		p.mockMode = true
		p.mockToken = token
	}
}

// NewProvider creates a Provider with its own empty cache.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		httpClient:    &http.Client{Timeout: DefaultHTTPTimeout},
		env:           os.Getenv,
		sleep:         time.Sleep,
		now:           time.Now,
		policy:        DefaultRetryPolicy(),
		authorityBase: DefaultAuthorityBase,
		cache:         make(map[string]cacheEntry),
		strategies:    make(map[string]Strategy),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MockMode reports whether the provider short-circuits to the mock token.
func (p *Provider) MockMode() bool {
	return p.mockMode
}

// StrategyFor returns the resolution strategy for an identity. The strategy
// is computed once per identity id and memoized.
func (p *Provider) StrategyFor(identity *registry.ApplicationIdentity) Strategy {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.strategies[identity.ID]; ok {
		return s
	}
	s := resolveStrategy(p.mockMode, identity)
	p.strategies[identity.ID] = s
	return s
}

// Resolve produces a valid bearer credential for the identity.
//
// It returns an *AuthenticationError when required environment references are
// absent or when acquisition exhausts the retry budget.
func (p *Provider) Resolve(ctx context.Context, identity *registry.ApplicationIdentity) (Credential, error) {
	switch p.StrategyFor(identity) {
	case StrategyMock:
		return Credential{Token: NewRedactedToken(p.mockToken)}, nil
	case StrategyUserToken:
		return p.resolveUserToken(identity)
	default:
		return p.resolveClientCredentials(ctx, identity)
	}
}

// resolveUserToken returns a pre-provisioned user token. Pre-provisioned
// tokens carry no expiry tracking; they are assumed valid for the test run.
func (p *Provider) resolveUserToken(identity *registry.ApplicationIdentity) (Credential, error) {
	var checked []CheckedRef

	for _, ref := range []string{identity.OAuth.UserTokenEnv, identity.OAuth.MockUserTokenEnv} {
		if ref == "" {
			continue
		}
		value := p.env(ref)
		checked = append(checked, CheckedRef{Name: ref, Value: NewRedactedToken(value)})
		if value != "" {
			logging.Debug("TokenProvider", "using pre-provisioned token from %s for %s", ref, identity.ID)
			return Credential{Token: NewRedactedToken(value)}, nil
		}
	}

	return Credential{}, &AuthenticationError{
		Identity: identity.ID,
		Message:  "no pre-provisioned user token available",
		Refs:     checked,
	}
}

// resolveClientCredentials runs the client-credentials flow with caching.
func (p *Provider) resolveClientCredentials(ctx context.Context, identity *registry.ApplicationIdentity) (Credential, error) {
	clientID := p.env(identity.OAuth.ClientIDEnv)
	clientSecret := p.env(identity.OAuth.ClientSecretEnv)

	// Missing environment values fail fast; an empty credential is never
	// silently sent to the token endpoint.
	if clientID == "" || clientSecret == "" {
		return Credential{}, &AuthenticationError{
			Identity: identity.ID,
			Message:  "client credentials missing from environment",
			Refs: []CheckedRef{
				{Name: identity.OAuth.ClientIDEnv, Value: NewRedactedToken(clientID)},
				{Name: identity.OAuth.ClientSecretEnv, Value: NewRedactedToken(clientSecret)},
			},
		}
	}

	// The cache is keyed by client id and scope, not by identity id: two
	// identities sharing one underlying client share the credential.
	cacheKey := clientID + ":" + identity.OAuth.Scope

	if cred, ok := p.cachedCredential(cacheKey); ok {
		logging.Debug("TokenProvider", "cache hit for %s", identity.ID)
		return cred, nil
	}

	// singleflight deduplicates concurrent acquisition for the same key.
	// A redundant acquisition under race is tolerated; the cache write is
	// last-writer-wins.
	result, err, _ := p.group.Do(cacheKey, func() (interface{}, error) {
		if cred, ok := p.cachedCredential(cacheKey); ok {
			return cred, nil
		}

		token, err := p.acquireToken(ctx, identity, clientID, clientSecret)
		if err != nil {
			return Credential{}, err
		}

		expiresIn := token.ExpiresIn
		if expiresIn <= 0 {
			expiresIn = defaultExpiresIn
		}
		entry := cacheEntry{
			token:     token.AccessToken,
			expiresAt: p.now().Add(time.Duration(expiresIn) * time.Second),
		}

		p.mu.Lock()
		p.cache[cacheKey] = entry
		p.mu.Unlock()

		logging.Info("TokenProvider", "acquired token for %s (scope %s)", identity.ID, identity.OAuth.Scope)
		return Credential{Token: NewRedactedToken(entry.token), ExpiresAt: entry.expiresAt}, nil
	})
	if err != nil {
		return Credential{}, err
	}
	return result.(Credential), nil
}

// cachedCredential returns the cached credential for a key if it is still
// outside the expiry safety margin.
func (p *Provider) cachedCredential(key string) (Credential, bool) {
	p.mu.Lock()
	entry, ok := p.cache[key]
	p.mu.Unlock()

	if !ok || !p.now().Before(entry.expiresAt.Add(-expiryMargin)) {
		return Credential{}, false
	}
	return Credential{Token: NewRedactedToken(entry.token), ExpiresAt: entry.expiresAt}, true
}

// tokenEndpoint derives the token URL from the identity's authority or
// tenant reference.
func (p *Provider) tokenEndpoint(identity *registry.ApplicationIdentity) string {
	authority := identity.OAuth.Authority
	if authority == "" {
		authority = p.authorityBase + "/" + identity.OAuth.TenantID
	}
	return strings.TrimSuffix(authority, "/") + "/oauth2/v2.0/token"
}

// acquireToken posts the client-credentials grant to the token endpoint,
// retrying transient failures per the configured policy.
func (p *Provider) acquireToken(ctx context.Context, identity *registry.ApplicationIdentity, clientID, clientSecret string) (*tokenResponse, error) {
	endpoint := p.tokenEndpoint(identity)
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"scope":         {identity.OAuth.Scope},
	}

	var token *tokenResponse
	attempts := 0

	err := p.policy.Do(p.sleep, func(attempt int) (bool, error) {
		attempts = attempt

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return false, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			// Network-level failures are transient.
			logging.Warn("TokenProvider", "token request attempt %d for %s failed: %v", attempt, identity.ID, err)
			return true, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, err
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, string(body))
			if RetryableStatus(resp.StatusCode) {
				logging.Warn("TokenProvider", "token request attempt %d for %s: HTTP %d", attempt, identity.ID, resp.StatusCode)
				return true, statusErr
			}
			return false, statusErr
		}

		var tr tokenResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return false, fmt.Errorf("malformed token response: %w", err)
		}
		token = &tr
		return false, nil
	})
	if err != nil {
		return nil, &AuthenticationError{
			Identity: identity.ID,
			Message:  "token acquisition failed",
			Attempts: attempts,
			Err:      err,
		}
	}
	return token, nil
}

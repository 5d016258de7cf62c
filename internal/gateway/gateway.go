package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chatcheck/internal/auth"
	"chatcheck/internal/registry"
	"chatcheck/pkg/logging"

	"github.com/google/uuid"
)

// Header names used on every authenticated request.
const (
	HeaderAuthorization   = "Authorization"
	HeaderSubscriptionKey = "Ocp-Apim-Subscription-Key"
	HeaderAppID           = "App-Id"
	HeaderUniqueName      = "Unique-Name"
	HeaderRequestID       = "X-Request-Id"
)

// DefaultMockUniqueName is the simulated user principal injected under mock
// mode when a user identity does not configure its own unique name.
const DefaultMockUniqueName = "mock-user@example.com"

// File is one multipart file upload: the filename and its content.
type File struct {
	Name    string
	Content []byte
}

// Request describes one call against the target API.
type Request struct {
	// Method and Path address the endpoint; Path is joined to the gateway's
	// base URL and must start with "/".
	Method string
	Path   string

	// Identity is the simulated caller the request authenticates as.
	Identity *registry.ApplicationIdentity

	// Query carries URL query parameters.
	Query url.Values

	// Form and Files are encoded as a multipart/form-data body when either
	// is non-empty.
	Form  map[string]string
	Files map[string]File

	// Headers are caller-supplied extras; they win over gateway-derived
	// headers on conflict.
	Headers map[string]string

	// Stream leaves the response body unconsumed so it can be read as a
	// lazy SSE line sequence.
	Stream bool
}

// Gateway dispatches authenticated requests. Construct one per suite run and
// share it across scenarios; it holds no mutable state of its own beyond the
// token provider it delegates to.
type Gateway struct {
	baseURL    string
	provider   *auth.Provider
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// New creates a Gateway for the given API base URL, resolving credentials
// through the given provider.
func New(baseURL string, provider *auth.Provider, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		provider:   provider,
		httpClient: &http.Client{},
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	// The per-call timeout is terminal: a request either completes, times
	// out, or fails; there is no retry at this layer.
	if g.httpClient.Timeout == 0 {
		g.httpClient.Timeout = g.timeout
	}
	return g
}

// Send resolves a credential for the request's identity, dispatches the call
// and returns the raw response. The caller owns the response and must close
// it when streaming.
func (g *Gateway) Send(ctx context.Context, req Request) (*Response, error) {
	if req.Identity == nil {
		return nil, fmt.Errorf("request for %s %s has no identity", req.Method, req.Path)
	}

	cred, err := g.provider.Resolve(ctx, req.Identity)
	if err != nil {
		return nil, err
	}

	httpReq, err := g.buildRequest(ctx, req, cred)
	if err != nil {
		return nil, err
	}

	logging.Debug("Gateway", "%s %s as %s", req.Method, req.Path, req.Identity.ID)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s as %s: %w", req.Method, req.Path, req.Identity.ID, err)
	}

	if req.Stream {
		return newStreamingResponse(resp), nil
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response of %s %s: %w", req.Method, req.Path, err)
	}
	return newBufferedResponse(resp, body), nil
}

// Get is a convenience wrapper for query-parameter GET calls.
func (g *Gateway) Get(ctx context.Context, path string, identity *registry.ApplicationIdentity, query url.Values) (*Response, error) {
	return g.Send(ctx, Request{
		Method:   http.MethodGet,
		Path:     path,
		Identity: identity,
		Query:    query,
	})
}

// Post is a convenience wrapper for multipart POST calls.
func (g *Gateway) Post(ctx context.Context, path string, identity *registry.ApplicationIdentity, form map[string]string) (*Response, error) {
	return g.Send(ctx, Request{
		Method:   http.MethodPost,
		Path:     path,
		Identity: identity,
		Form:     form,
	})
}

// PostStream is a convenience wrapper for multipart POST calls consumed as
// an SSE stream.
func (g *Gateway) PostStream(ctx context.Context, path string, identity *registry.ApplicationIdentity, form map[string]string) (*Response, error) {
	return g.Send(ctx, Request{
		Method:   http.MethodPost,
		Path:     path,
		Identity: identity,
		Form:     form,
		Stream:   true,
	})
}

func (g *Gateway) buildRequest(ctx context.Context, req Request, cred auth.Credential) (*http.Request, error) {
	target := g.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	if len(req.Form) > 0 || len(req.Files) > 0 {
		encoded, ct, err := encodeMultipart(req.Form, req.Files)
		if err != nil {
			return nil, err
		}
		body = encoded
		contentType = ct
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", req.Method, req.Path, err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	httpReq.Header.Set(HeaderAuthorization, "Bearer "+cred.Token.Value())
	httpReq.Header.Set(HeaderSubscriptionKey, req.Identity.SubscriptionKey)
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())

	// Under mock mode the target system is driven by simulation headers:
	// the application id on every request, the unique user name only for
	// user-priority identities.
	if g.provider.MockMode() {
		httpReq.Header.Set(HeaderAppID, req.Identity.ID)
		if req.Identity.Priority == registry.PriorityUser {
			uniqueName := req.Identity.UniqueName
			if uniqueName == "" {
				uniqueName = DefaultMockUniqueName
			}
			httpReq.Header.Set(HeaderUniqueName, uniqueName)
		}
	}

	// Caller-supplied headers win on conflict.
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	return httpReq, nil
}

// encodeMultipart builds a multipart/form-data body from form fields and
// file uploads.
func encodeMultipart(form map[string]string, files map[string]File) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, value := range form {
		if err := writer.WriteField(field, value); err != nil {
			return nil, "", fmt.Errorf("encoding field %q: %w", field, err)
		}
	}
	for field, file := range files {
		part, err := writer.CreateFormFile(field, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("encoding file field %q: %w", field, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("writing file field %q: %w", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

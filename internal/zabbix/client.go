// Package zabbix implements the Zabbix JSON-RPC API client: the
// version-aware transport, the typed operations on Zabbix objects, and
// the in-memory group cache.
package zabbix

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kidoz/zabbix-cli-go/internal/compat"
	"github.com/kidoz/zabbix-cli-go/internal/config"
	"github.com/kidoz/zabbix-cli-go/internal/errs"
	"github.com/kidoz/zabbix-cli-go/internal/telemetry"
)

// Version is the application version reported in the User-Agent header.
const Version = "3.0.0"

const rpcEndpoint = "/api_jsonrpc.php"

// noAuthMethods never carry an auth token, neither in the body nor in
// the Authorization header.
var noAuthMethods = map[string]bool{
	"apiinfo.version":          true,
	"user.login":               true,
	"user.checkauthentication": true,
}

// Client is a Zabbix API client. One instance serves one server and is
// meant for sequential use; concurrent requests require one client per
// goroutine.
type Client struct {
	cfg        *config.Config
	log        *zap.Logger
	httpClient *http.Client
	url        string

	auth        string
	useAPIToken bool
	requestID   int64

	hasVersion bool
	version    compat.Version
	traits     compat.Traits

	cache *Cache
}

// NewClient creates a new Zabbix API client. No network traffic happens
// until the first call.
func NewClient(cfg *config.Config, log *zap.Logger) (*Client, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.API.VerifySSL, //nolint:gosec // G402: user-configurable option, defaults to VerifySSL=true
		},
	}

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(transport),
	}
	// Timeout 0 means no timeout at all.
	if cfg.API.Timeout > 0 {
		httpClient.Timeout = time.Duration(cfg.API.Timeout) * time.Second
	}

	c := &Client{
		cfg:        cfg,
		log:        log,
		httpClient: httpClient,
		url:        CanonicalURL(cfg.API.URL),
	}
	c.cache = NewCache(c)
	c.log.Debug("JSON-RPC server endpoint", zap.String("url", c.url))
	return c, nil
}

// CanonicalURL normalizes a base URL that may or may not already carry
// the /api_jsonrpc.php suffix.
func CanonicalURL(server string) string {
	server, _, _ = strings.Cut(server, rpcEndpoint)
	return strings.TrimRight(server, "/") + rpcEndpoint
}

// URL returns the canonical JSON-RPC endpoint URL.
func (c *Client) URL() string { return c.url }

// BaseURL returns the server URL without the JSON-RPC suffix. Used as
// the session store key.
func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.url, rpcEndpoint)
}

// Cache returns the client's group name/ID cache.
func (c *Client) Cache() *Cache { return c.cache }

// AuthToken returns the current session or API token. Empty when logged
// out.
func (c *Client) AuthToken() string { return c.auth }

// UsingAPIToken reports whether the current credential is a long-lived
// API token rather than a session ID.
func (c *Client) UsingAPIToken() bool { return c.useAPIToken }

// APIVersion returns the server version, fetching and caching it on
// first use. apiinfo.version requires no authentication.
func (c *Client) APIVersion(ctx context.Context) (compat.Version, error) {
	if c.hasVersion {
		return c.version, nil
	}
	raw, err := c.call(ctx, "apiinfo.version", Params{})
	if err != nil {
		return compat.Version{}, errs.Wrap(errs.ErrRequest, err, "failed to get Zabbix version from API")
	}
	var s string
	if err := bind(raw, &s); err != nil {
		return compat.Version{}, err
	}
	v, err := compat.ParseVersion(s)
	if err != nil {
		return compat.Version{}, errs.Wrap(errs.ErrResponseParsing, err, "got invalid Zabbix version from API")
	}
	c.version = v
	c.traits = compat.TraitsFor(v)
	c.hasVersion = true
	c.log.Debug("detected Zabbix API version", zap.String("version", v.String()))
	return v, nil
}

// Traits returns the version compatibility traits for the server,
// resolving the version first if needed.
func (c *Client) Traits(ctx context.Context) (compat.Traits, error) {
	if !c.hasVersion {
		if _, err := c.APIVersion(ctx); err != nil {
			return compat.Traits{}, err
		}
	}
	return c.traits, nil
}

// LoginOptions selects one authentication method for Login. Token wins
// over SessionID which wins over Username/Password.
type LoginOptions struct {
	Username  string
	Password  string
	Token     string
	SessionID string
}

// Login establishes an authenticated session. The credential is probed
// with a minimal host.get; on probe failure the previous auth state is
// restored and the probe error is returned.
func (c *Client) Login(ctx context.Context, opts LoginOptions) error {
	if _, err := c.APIVersion(ctx); err != nil {
		return errs.Wrap(errs.ErrRequest, err, "failed to connect to Zabbix API at %s", c.url)
	}

	prevAuth, prevToken := c.auth, c.useAPIToken

	switch {
	case opts.Token != "":
		c.log.Debug("using API token for authentication")
		c.auth = opts.Token
		c.useAPIToken = true
	case opts.SessionID != "":
		c.log.Debug("using session ID for authentication")
		c.auth = opts.SessionID
		c.useAPIToken = false
	case opts.Username != "" && opts.Password != "":
		c.log.Debug("using username and password for authentication",
			zap.String("username", opts.Username))
		params := Params{
			c.traits.LoginUserParam: opts.Username,
			"password":              opts.Password,
		}
		raw, err := c.call(ctx, "user.login", params)
		if err != nil {
			return errs.Wrap(errs.ErrLogin, err, "failed to log in to Zabbix")
		}
		var auth string
		if err := bind(raw, &auth); err != nil {
			return errs.Wrap(errs.ErrLogin, err, "unexpected user.login response")
		}
		c.auth = auth
		c.useAPIToken = false
	default:
		return errs.New(errs.ErrLogin,
			"no authentication method provided: need username/password, API token or session ID")
	}

	if err := c.ensureAuthenticated(ctx); err != nil {
		c.auth, c.useAPIToken = prevAuth, prevToken
		return err
	}
	return nil
}

// ensureAuthenticated probes the session with a minimal request.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	_, err := c.call(ctx, "host.get", Params{"output": []string{"hostid"}, "limit": 1})
	if err != nil {
		// Wrap with a neutral kind so the cause decides whether this
		// counts as an auth failure or a hard transport failure.
		return errs.Wrap(errs.ErrAPICall, err, "session probe failed")
	}
	return nil
}

// Logout ends the session. API-token auth is cleared locally without a
// server call. A token-expired error from user.logout is swallowed.
func (c *Client) Logout(ctx context.Context) error {
	if c.auth == "" {
		c.log.Debug("no auth token to log out with")
		return nil
	}
	if c.useAPIToken {
		c.log.Debug("clearing API token auth without server call")
		c.auth = ""
		c.useAPIToken = false
		return nil
	}

	_, err := c.call(ctx, "user.logout", []any{})
	c.auth = ""
	if err != nil {
		if errors.Is(err, errs.ErrTokenExpired) {
			c.log.Debug("logged out with already-expired token", zap.Error(err))
			return nil
		}
		return errs.Wrap(errs.ErrLogout, err, "failed to log out of Zabbix")
	}
	return nil
}

// RequestError is a server-reported or transport-level request failure.
// It carries the parsed API error body and the raw HTTP response for
// inspection; the message has credentials redacted.
type RequestError struct {
	Kind     error
	Message  string
	Method   string
	APIError *APIError
	Response *http.Response
	// Body is the raw response body. Populated for parsing errors so
	// callers can inspect what the server actually sent.
	Body []byte
}

func (e *RequestError) Error() string { return e.Message }

// Is matches the error's kind and all ancestor kinds.
func (e *RequestError) Is(target error) bool { return errs.KindIs(e.Kind, target) }

// Do sends one JSON-RPC request and returns the parsed response
// envelope. The request id increments by exactly one per call,
// regardless of outcome. Every request is recorded as a client span
// named after the API method.
func (c *Client) Do(ctx context.Context, method string, params any) (*APIResponse, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "zabbix.api/"+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", method),
		))
	defer span.End()

	resp, err := c.doRequest(ctx, method, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
	}
	return resp, err
}

func (c *Client) doRequest(ctx context.Context, method string, params any) (*APIResponse, error) {
	if params == nil {
		params = Params{}
	}
	id := atomic.AddInt64(&c.requestID, 1)

	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      id,
	}

	useHeader := false
	if c.auth != "" && !noAuthMethods[strings.ToLower(method)] {
		traits, err := c.Traits(ctx)
		if err != nil {
			return nil, err
		}
		if traits.AuthHeader {
			useHeader = true
		} else {
			reqBody["auth"] = c.auth
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errs.Wrap(errs.ErrRequest, err, "failed to marshal request for %s", method)
	}

	c.log.Debug("sending request",
		zap.String("method", method), zap.Int64("id", id))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrRequest, err, "failed to create request for %s", method)
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	req.Header.Set("User-Agent", "zabbix-cli/"+Version)
	req.Header.Set("Cache-Control", "no-cache")
	if useHeader {
		req.Header.Set("Authorization", "Bearer "+c.auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrRequest, err, "failed to send request to %s (%s)", c.url, method)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrRequest, err, "failed to read response for %s", method)
	}

	// A 412 means the request headers were rejected, typically a
	// missing or malformed Authorization header.
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &RequestError{
			Kind:     errs.ErrRequest,
			Message:  fmt.Sprintf("HTTP %d from %s (%s)", resp.StatusCode, c.url, method),
			Method:   method,
			Response: resp,
			Body:     respBody,
		}
	}

	if len(respBody) == 0 {
		return nil, &RequestError{
			Kind:     errs.ErrRequest,
			Message:  fmt.Sprintf("received empty response from %s (%s)", c.url, method),
			Method:   method,
			Response: resp,
		}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &RequestError{
			Kind:     errs.ErrResponseParsing,
			Message:  fmt.Sprintf("Zabbix API returned a malformed response (%d bytes)", len(respBody)),
			Method:   method,
			Response: resp,
			Body:     respBody,
		}
	}

	if apiResp.Error != nil {
		return nil, c.classifyError(method, params, apiResp.Error, resp)
	}
	return &apiResp, nil
}

// call is Do with the result unwrapped.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	resp, err := c.Do(ctx, method, params)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// classifyError maps a server-reported error to a kind and redacts
// credentials from the message before it can reach a log or terminal.
func (c *Client) classifyError(method string, params any, apiErr *APIError, resp *http.Response) error {
	// Some errors don't contain data (ZBX-9340).
	if apiErr.Data == "" {
		apiErr.Data = "No data"
	}

	msg := c.redact(fmt.Sprintf("Error: %s %s", apiErr.Message, apiErr.Data), params)

	kind := errs.ErrRequest
	switch lower := strings.ToLower(msg); {
	case strings.Contains(lower, "api token expired"):
		kind = errs.ErrTokenExpired
		c.log.Debug("API token has expired")
	case strings.Contains(lower, "re-login"):
		kind = errs.ErrSessionExpired
	case strings.Contains(lower, "not authorized"):
		kind = errs.ErrNotAuthorized
	}

	return &RequestError{
		Kind:     kind,
		Message:  msg,
		Method:   method,
		APIError: apiErr,
		Response: resp,
	}
}

// redact replaces the live auth token and any token/password params
// with placeholders.
func (c *Client) redact(msg string, params any) string {
	var pairs []string
	if c.auth != "" {
		pairs = append(pairs, c.auth, "<token>")
	}
	if p, ok := params.(Params); ok {
		if v, ok := p["token"].(string); ok && v != "" {
			pairs = append(pairs, v, "<token>")
		}
		if v, ok := p["password"].(string); ok && v != "" {
			pairs = append(pairs, v, "<password>")
		}
	}
	if len(pairs) == 0 {
		return msg
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

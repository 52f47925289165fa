// Package leanix provides a client for the LeanIX Pathfinder GraphQL API.
// It implements a deep module interface: each method hides the token
// exchange and maps whatever part of the response is present.
package leanix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/robby/leanix-mcp/internal/auth"
	"github.com/robby/leanix-mcp/internal/config"
	"github.com/robby/leanix-mcp/internal/lxerr"
)

// Host is the domain every LeanIX workspace is served from.
const Host = "leanix.net"

const (
	tokenPath   = "/services/mtm/v1/oauth2/token"
	graphQLPath = "/services/pathfinder/v1/graphql"
)

// Options configures a Client. Subdomain and APIToken are required.
type Options struct {
	Subdomain string
	APIToken  string
	// PageSize is the default "first" of paginated queries. 0 means config.DefaultPageSize.
	PageSize int
	// Timeout overrides the timeout of HTTPClient. 0 keeps it.
	Timeout time.Duration
	// HTTPClient carries the transport for both endpoints. nil means http.DefaultClient.
	HTTPClient *http.Client
	// TokenProvider replaces the client credentials exchange, mostly for tests.
	TokenProvider auth.TokenProvider
	Logger        *zap.Logger
}

// Client is a LeanIX GraphQL API client.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	subdomain string
	baseURL   string
	pageSize  int
	gql       *graphql.Client
	tokens    auth.TokenProvider
	logger    *zap.Logger
}

// New creates a client for https://{subdomain}.leanix.net.
// Blank credentials fail here, before any network call.
func New(opts Options) (*Client, error) {
	subdomain := strings.TrimSpace(opts.Subdomain)
	if subdomain == "" {
		return nil, lxerr.Configuration("leanix.New", "subdomain is required")
	}
	if strings.TrimSpace(opts.APIToken) == "" && opts.TokenProvider == nil {
		return nil, lxerr.Configuration("leanix.New", "API token is required")
	}

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = config.DefaultPageSize
	}
	if pageSize < 0 {
		return nil, lxerr.Configuration("leanix.New", "page size must be positive, got %d", pageSize)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	timeout := base.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	plain := &http.Client{Transport: transport, Timeout: timeout}

	baseURL := "https://" + subdomain + "." + Host

	tokens := opts.TokenProvider
	if tokens == nil {
		provider, err := auth.NewClientCredentialsProvider(baseURL+tokenPath, opts.APIToken, plain, logger)
		if err != nil {
			return nil, err
		}
		tokens = provider
	}

	gql := graphql.NewClient(baseURL+graphQLPath, graphql.WithHTTPClient(&http.Client{
		Transport: &recordingTransport{base: transport},
		Timeout:   timeout,
	}))
	gql.Log = func(s string) {
		// Headers carry the bearer token, variables carry caller input.
		if strings.HasPrefix(s, ">> headers") || strings.HasPrefix(s, ">> variables") {
			return
		}
		logger.Debug(s)
	}

	return &Client{
		subdomain: subdomain,
		baseURL:   baseURL,
		pageSize:  pageSize,
		gql:       gql,
		tokens:    tokens,
		logger:    logger,
	}, nil
}

// NewFromConfig creates a client from loaded configuration.
func NewFromConfig(cfg config.Config, logger *zap.Logger) (*Client, error) {
	return New(Options{
		Subdomain: cfg.Subdomain,
		APIToken:  cfg.APIToken,
		PageSize:  cfg.PageSize,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	})
}

// Subdomain returns the workspace subdomain.
func (c *Client) Subdomain() string { return c.subdomain }

// BaseURL returns https://{subdomain}.leanix.net.
func (c *Client) BaseURL() string { return c.baseURL }

// TokenEndpoint returns the OAuth2 token endpoint.
func (c *Client) TokenEndpoint() string { return c.baseURL + tokenPath }

// GraphQLEndpoint returns the Pathfinder GraphQL endpoint.
func (c *Client) GraphQLEndpoint() string { return c.baseURL + graphQLPath }

// PageSize returns the default page size of paginated queries.
func (c *Client) PageSize() int { return c.pageSize }

// Query executes a GraphQL query and returns the whole response document.
// A nil or empty variables map is sent as "variables": null.
//
// Non-2xx responses and bodies that are not JSON fail with a query error.
// GraphQL errors inside a 2xx response are logged and the document is
// returned unchanged; callers see them as missing data.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any) (gjson.Result, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return gjson.Result{}, err
	}

	req := graphql.NewRequest(query)
	for k, v := range variables {
		req.Var(k, v)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rec := &capture{}
	ctx = context.WithValue(ctx, captureKey{}, rec)

	var data json.RawMessage
	runErr := c.gql.Run(ctx, req, &data)

	if rec.status == 0 {
		if runErr == nil {
			runErr = errors.New("no response received")
		}
		c.logger.Error("graphql request failed", zap.Error(runErr))
		return gjson.Result{}, lxerr.Query("leanix.Query", 0, "", runErr)
	}
	if rec.status < 200 || rec.status > 299 {
		c.logger.Error("graphql endpoint returned an error status",
			zap.Int("status", rec.status),
			zap.String("endpoint", c.GraphQLEndpoint()),
		)
		return gjson.Result{}, lxerr.Query("leanix.Query", rec.status, string(rec.body), nil)
	}
	if !gjson.ValidBytes(rec.body) {
		return gjson.Result{}, lxerr.Query("leanix.Query", rec.status, string(rec.body), errors.New("response is not valid JSON"))
	}

	if runErr != nil {
		c.logger.Warn("graphql response carries errors", zap.String("error", runErr.Error()))
	}

	return gjson.ParseBytes(rec.body), nil
}

// captureKey is the context key of the capture of the current request.
type captureKey struct{}

// capture holds the raw response of one GraphQL round trip.
type capture struct {
	status int
	body   []byte
}

// recordingTransport buffers each response body and stores it, with the status,
// in the capture carried by the request context. The body is restored so the
// GraphQL client can still decode it.
type recordingTransport struct {
	base http.RoundTripper
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	res.Body = io.NopCloser(bytes.NewReader(body))

	if rec, ok := req.Context().Value(captureKey{}).(*capture); ok {
		rec.status = res.StatusCode
		rec.body = body
	}
	return res, nil
}

// Package auth obtains LeanIX bearer tokens.
// LeanIX exchanges a technical user's API token for a short-lived access token
// using the OAuth2 client credentials grant, with the fixed client ID "apitoken".
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/robby/leanix-mcp/internal/lxerr"
)

// ClientID is the OAuth2 client ID LeanIX expects for API token exchange.
const ClientID = "apitoken"

// TokenProvider obtains a bearer token for the GraphQL API.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// ClientCredentialsProvider exchanges the API token for an access token.
// It does not cache: every GetToken call is a fresh round trip to the token endpoint.
type ClientCredentialsProvider struct {
	config     clientcredentials.Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClientCredentialsProvider creates a provider for the given token endpoint.
// Returns a configuration error if tokenURL or secret is blank.
func NewClientCredentialsProvider(tokenURL, secret string, httpClient *http.Client, logger *zap.Logger) (*ClientCredentialsProvider, error) {
	if strings.TrimSpace(tokenURL) == "" {
		return nil, lxerr.Configuration("auth.NewClientCredentialsProvider", "token endpoint is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, lxerr.Configuration("auth.NewClientCredentialsProvider", "API token is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	transport := httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	// oauth2 query-escapes the credentials in the Basic header; LeanIX expects them verbatim.
	httpClient = &http.Client{
		Transport:     &basicAuthTransport{base: transport, username: ClientID, password: secret},
		CheckRedirect: httpClient.CheckRedirect,
		Jar:           httpClient.Jar,
		Timeout:       httpClient.Timeout,
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ClientCredentialsProvider{
		config: clientcredentials.Config{
			ClientID:     ClientID,
			ClientSecret: secret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// GetToken posts grant_type=client_credentials with HTTP Basic auth
// ("apitoken:<secret>") and returns the access_token of the response.
func (p *ClientCredentialsProvider) GetToken(ctx context.Context) (string, error) {
	p.logger.Debug("requesting access token", zap.String("endpoint", p.config.TokenURL))

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			p.logger.Error("token endpoint rejected request",
				zap.Int("status", retrieveErr.Response.StatusCode),
				zap.String("endpoint", p.config.TokenURL),
			)
			return "", lxerr.Auth("auth.GetToken", retrieveErr.Response.StatusCode, string(retrieveErr.Body), nil)
		}
		p.logger.Error("failed to get access token", zap.Error(err))
		return "", lxerr.Auth("auth.GetToken", 0, "", err)
	}

	if tok.AccessToken == "" {
		return "", lxerr.Auth("auth.GetToken", 0, "", errors.New("response has no access_token"))
	}

	p.logger.Debug("obtained access token", zap.Bool("present", true))
	return tok.AccessToken, nil
}

// TokenURL returns the token endpoint the provider posts to.
func (p *ClientCredentialsProvider) TokenURL() string {
	return p.config.TokenURL
}

// basicAuthTransport sets HTTP Basic credentials on every request, replacing
// any Authorization header already present.
type basicAuthTransport struct {
	base     http.RoundTripper
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(r)
}

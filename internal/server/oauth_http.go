package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	oauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers/dex"
	oauthserver "github.com/giantswarm/mcp-oauth/server"
	"github.com/giantswarm/mcp-oauth/storage/memory"
)

// OAuthProviderDex is the Dex OIDC provider, the only one supported.
const OAuthProviderDex = "dex"

// OAuthConfig configures OAuth 2.1 in front of the MCP endpoint.
type OAuthConfig struct {
	// BaseURL is the public URL of the server, e.g. https://bench.example.com.
	BaseURL string

	Provider string

	DexIssuerURL    string
	DexClientID     string
	DexClientSecret string
}

// ApplyEnv fills unset Dex settings from DEX_ISSUER_URL, DEX_CLIENT_ID and
// DEX_CLIENT_SECRET.
func (c *OAuthConfig) ApplyEnv() {
	if c.DexIssuerURL == "" {
		c.DexIssuerURL = os.Getenv("DEX_ISSUER_URL")
	}
	if c.DexClientID == "" {
		c.DexClientID = os.Getenv("DEX_CLIENT_ID")
	}
	if c.DexClientSecret == "" {
		c.DexClientSecret = os.Getenv("DEX_CLIENT_SECRET")
	}
}

// Validate reports every missing or invalid setting at once.
func (c OAuthConfig) Validate() error {
	var errs []error
	if c.Provider != "" && c.Provider != OAuthProviderDex {
		errs = append(errs, fmt.Errorf("unsupported OAuth provider %q (supported: %s)", c.Provider, OAuthProviderDex))
	}
	if err := validateHTTPSRequirement(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("OAuth base URL: %w", err))
	}
	if c.DexIssuerURL == "" {
		errs = append(errs, errors.New("dex issuer URL is required (--dex-issuer-url or DEX_ISSUER_URL)"))
	}
	if c.DexClientID == "" {
		errs = append(errs, errors.New("dex client ID is required (--dex-client-id or DEX_CLIENT_ID)"))
	}
	if c.DexClientSecret == "" {
		errs = append(errs, errors.New("dex client secret is required (--dex-client-secret or DEX_CLIENT_SECRET)"))
	}
	return errors.Join(errs...)
}

// OAuth guards the MCP endpoint with bearer tokens issued through Dex.
// Tokens, clients and flows are kept in memory, so one server instance
// holds all sessions.
type OAuth struct {
	server  *oauth.Server
	handler *oauth.Handler
}

// NewOAuth validates cfg and creates the OAuth server.
func NewOAuth(cfg OAuthConfig) (*OAuth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := dex.NewProvider(&dex.Config{
		IssuerURL:    cfg.DexIssuerURL,
		ClientID:     cfg.DexClientID,
		ClientSecret: cfg.DexClientSecret,
		RedirectURL:  cfg.BaseURL + "/oauth/callback",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Dex provider: %w", err)
	}

	store := memory.New()
	logger := slog.Default()

	srv, err := oauth.NewServer(
		provider,
		store,
		store,
		store,
		&oauthserver.Config{
			Issuer:                    cfg.BaseURL,
			AllowRefreshTokenRotation: true,
			MaxClientsPerIP:           10,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}

	return &OAuth{
		server:  srv,
		handler: oauth.NewHandler(srv, logger),
	}, nil
}

// register adds the metadata and flow endpoints to mux and returns the
// MCP handler wrapped in token validation.
func (o *OAuth) register(mux *http.ServeMux, mcpEndpoint string, mcpHandler http.Handler) http.Handler {
	o.handler.RegisterAuthorizationServerMetadataRoutes(mux)
	o.handler.RegisterProtectedResourceMetadataRoutes(mux, mcpEndpoint)
	mux.HandleFunc("/oauth/authorize", o.handler.ServeAuthorization)
	mux.HandleFunc("/oauth/token", o.handler.ServeToken)
	mux.HandleFunc("/oauth/callback", o.handler.ServeCallback)
	mux.HandleFunc("/oauth/register", o.handler.ServeClientRegistration)
	mux.HandleFunc("/oauth/revoke", o.handler.ServeTokenRevocation)
	mux.HandleFunc("/oauth/introspect", o.handler.ServeTokenIntrospection)
	return o.handler.ValidateToken(mcpHandler)
}

// Shutdown stops background token cleanup.
func (o *OAuth) Shutdown(ctx context.Context) error {
	return o.server.Shutdown(ctx)
}

// validateHTTPSRequirement allows plain HTTP only on loopback hosts.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		switch u.Hostname() {
		case "localhost", "127.0.0.1", "::1":
			return nil
		}
		return fmt.Errorf("OAuth 2.1 requires HTTPS (got: %s). Use HTTPS or localhost for development", baseURL)
	default:
		return fmt.Errorf("invalid URL scheme: %s (must be http for localhost or https)", u.Scheme)
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/giantswarm/creativity-bench/internal/config"
	mcptools "github.com/giantswarm/creativity-bench/internal/mcp"
	"github.com/giantswarm/creativity-bench/internal/server"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

func newServeCmd() *cobra.Command {
	var (
		configFile   string
		transport    string
		httpAddr     string
		httpEndpoint string
		outputDir    string
		corporaDir   string
		debug        bool

		enableOAuth bool
		oauthCfg    server.OAuthConfig
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose the benchmark via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default, for IDE integration)
  - streamable-http: HTTP with streaming support (for remote access)

Benchmark runs started through the server use --config as their base settings.

With streamable-http, --enable-oauth puts OAuth 2.1 (Dex) in front of the MCP
endpoint. Dex settings fall back to DEX_ISSUER_URL, DEX_CLIENT_ID and
DEX_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if cmd.Flags().Changed("corpora-dir") {
				cfg.CorporaDir = corporaDir
			}
			applyNamespaceFlag(cmd, cfg)

			sc := &server.ServerContext{Config: cfg}

			// KServe discovery is optional; without a cluster, runs need
			// explicit endpoints.
			resolver, err := newResolverFromFlags(cmd, cfg.Namespace)
			if err != nil {
				slog.Warn("KServe discovery not available", "error", err)
			} else {
				sc.Resolver = resolver
			}

			mcpSrv := mcpserver.NewMCPServer("creativity-bench", rootCmd.Version,
				mcpserver.WithToolCapabilities(true),
			)

			if err := mcptools.RegisterTools(mcpSrv, sc); err != nil {
				return fmt.Errorf("failed to register MCP tools: %w", err)
			}

			switch transport {
			case transportStdio:
				if enableOAuth {
					slog.Warn("--enable-oauth only applies to the streamable-http transport")
				}
				return runStdioServer(mcpSrv)
			case transportStreamableHTTP:
				var auth *server.OAuth
				if enableOAuth {
					oauthCfg.ApplyEnv()
					auth, err = server.NewOAuth(oauthCfg)
					if err != nil {
						return fmt.Errorf("failed to set up OAuth: %w", err)
					}
				}
				fmt.Printf("Starting creativity-bench MCP server with %s transport...\n", transport)
				return runHTTPServer(cmd.Context(), mcpSrv, httpAddr, httpEndpoint, auth)
			default:
				return fmt.Errorf("unsupported transport: %s (supported: stdio, streamable-http)", transport)
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML configuration file used as the base for runs")
	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http)")
	cmd.Flags().StringVar(&outputDir, "output-dir", config.DefaultOutputDir, "Directory for answer and evaluation logs")
	cmd.Flags().StringVar(&corporaDir, "corpora-dir", "", "External corpora directory (optional)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.Flags().BoolVar(&enableOAuth, "enable-oauth", false, "Require OAuth 2.1 bearer tokens on the MCP endpoint (streamable-http only)")
	cmd.Flags().StringVar(&oauthCfg.BaseURL, "oauth-base-url", "", "Public base URL of the server (e.g. https://bench.example.com)")
	cmd.Flags().StringVar(&oauthCfg.Provider, "oauth-provider", server.OAuthProviderDex, "OAuth provider: dex")
	cmd.Flags().StringVar(&oauthCfg.DexIssuerURL, "dex-issuer-url", "", "Dex OIDC issuer URL")
	cmd.Flags().StringVar(&oauthCfg.DexClientID, "dex-client-id", "", "Dex OAuth client ID")
	cmd.Flags().StringVar(&oauthCfg.DexClientSecret, "dex-client-secret", "", "Dex OAuth client secret")

	return cmd
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr, endpoint string, auth *server.OAuth) error {
	if ctx == nil {
		ctx = context.Background()
	}

	httpServer := server.NewHTTPServer(addr, server.NewHTTPHandler(mcpSrv, endpoint, auth))

	if auth != nil {
		fmt.Printf("  MCP endpoint: %s (requires OAuth Bearer token)\n", endpoint)
		fmt.Printf("  OAuth endpoints: /.well-known/oauth-authorization-server, /oauth/register, /oauth/authorize, /oauth/token, /oauth/callback\n")
	} else {
		fmt.Printf("  HTTP endpoint: %s\n", endpoint)
	}
	fmt.Printf("  Health: /healthz\n")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if auth != nil {
			if err := auth.Shutdown(shutdownCtx); err != nil {
				slog.Error("failed to shut down OAuth server", "error", err)
			}
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	fmt.Println("HTTP server stopped")
	return nil
}

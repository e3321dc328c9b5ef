package server

import (
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second
)

// NewHTTPHandler routes the streamable-http MCP endpoint and /healthz.
// With auth set, the OAuth endpoints are added and the MCP endpoint
// requires a bearer token; /healthz stays open.
func NewHTTPHandler(mcpSrv *mcpserver.MCPServer, endpoint string, auth *OAuth) http.Handler {
	mux := http.NewServeMux()

	var mcpHandler http.Handler = mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(endpoint),
	)
	if auth != nil {
		mcpHandler = auth.register(mux, endpoint, mcpHandler)
	}
	mux.Handle(endpoint, mcpHandler)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// NewHTTPServer returns a server for handler. There is no write timeout:
// a run_benchmark call lasts as long as the benchmark.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
}

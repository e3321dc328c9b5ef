package server

import (
	"sync"

	"github.com/giantswarm/creativity-bench/internal/bench"
	"github.com/giantswarm/creativity-bench/internal/config"
	"github.com/giantswarm/creativity-bench/internal/kserve"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	// Config is the base configuration every run_benchmark call starts from.
	Config *config.Config

	// Resolver is nil when no Kubernetes cluster is reachable.
	Resolver *kserve.Resolver

	// NewClient overrides how model clients are built (optional).
	NewClient bench.ClientFactory

	runMu sync.Mutex
}

// TryStartRun reserves the single run slot. Runs write to shared log files
// and are therefore never executed concurrently.
func (sc *ServerContext) TryStartRun() bool {
	return sc.runMu.TryLock()
}

// FinishRun releases the run slot taken by TryStartRun.
func (sc *ServerContext) FinishRun() {
	sc.runMu.Unlock()
}

// BenchOptions returns the options for bench.Prepare.
func (sc *ServerContext) BenchOptions() bench.Options {
	opts := bench.Options{NewClient: sc.NewClient}
	if sc.Resolver != nil {
		opts.Resolver = sc.Resolver
	}
	return opts
}

// OutputDir returns the configured results directory.
func (sc *ServerContext) OutputDir() string {
	if sc.Config == nil {
		return config.DefaultOutputDir
	}
	return sc.Config.OutputDir
}

// CorporaDir returns the external corpora directory, if any.
func (sc *ServerContext) CorporaDir() string {
	if sc.Config == nil {
		return ""
	}
	return sc.Config.CorporaDir
}

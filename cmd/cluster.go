package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/giantswarm/creativity-bench/internal/config"
	"github.com/giantswarm/creativity-bench/internal/kserve"
)

// applyNamespaceFlag lets an explicit --namespace override the config file.
func applyNamespaceFlag(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("namespace") {
		cfg.Namespace, _ = cmd.Flags().GetString("namespace")
	}
}

// newResolverFromFlags connects to Kubernetes using the persistent
// kubeconfig and in-cluster flags.
func newResolverFromFlags(cmd *cobra.Command, namespace string) (*kserve.Resolver, error) {
	kubeconfig, _ := cmd.Flags().GetString("kubeconfig")
	inCluster, _ := cmd.Flags().GetBool("in-cluster")

	r, err := kserve.NewResolver(namespace, kubeconfig, inCluster)
	if err != nil {
		return nil, err
	}
	slog.Debug("connected to Kubernetes", "namespace", namespace, "in_cluster", inCluster)
	return r, nil
}

func usesInferenceServices(cfg *config.Config) bool {
	return (cfg.Generator.Endpoint == "" && cfg.Generator.InferenceService != "") ||
		(cfg.Judge.Endpoint == "" && cfg.Judge.InferenceService != "")
}

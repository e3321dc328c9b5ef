// Package kserve discovers the OpenAI-compatible endpoints of models served
// by KServe InferenceServices.
package kserve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

var isvcGVR = schema.GroupVersionResource{
	Group:    "serving.kserve.io",
	Version:  "v1beta1",
	Resource: "inferenceservices",
}

// Resolver looks up InferenceServices in a single namespace.
type Resolver struct {
	client    dynamic.Interface
	namespace string
}

// NewResolver creates a Resolver from a kubeconfig, or from the in-cluster
// service account when inCluster is set.
func NewResolver(namespace string, kubeconfig string, inCluster bool) (*Resolver, error) {
	var config *rest.Config
	var err error

	if inCluster {
		config, err = rest.InClusterConfig()
	} else {
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		if kubeconfig != "" {
			loadingRules.ExplicitPath = kubeconfig
		}
		config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			loadingRules, &clientcmd.ConfigOverrides{},
		).ClientConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes config: %w", err)
	}

	client, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return NewResolverWithClient(client, namespace), nil
}

// NewResolverWithClient creates a Resolver with an existing dynamic client.
func NewResolverWithClient(client dynamic.Interface, namespace string) *Resolver {
	return &Resolver{client: client, namespace: namespace}
}

// Namespace returns the namespace the resolver searches.
func (r *Resolver) Namespace() string {
	return r.namespace
}

// List returns every InferenceService in the namespace.
func (r *Resolver) List(ctx context.Context) ([]Endpoint, error) {
	list, err := r.client.Resource(isvcGVR).Namespace(r.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list InferenceServices: %w", err)
	}

	endpoints := make([]Endpoint, 0, len(list.Items))
	for i := range list.Items {
		isvc, err := fromUnstructured(&list.Items[i])
		if err != nil {
			slog.Warn("failed to convert InferenceService", "name", list.Items[i].GetName(), "error", err)
			continue
		}
		endpoints = append(endpoints, r.endpoint(isvc))
	}
	return endpoints, nil
}

// Resolve returns the OpenAI-compatible base URL of a ready InferenceService.
// The name is sanitized the same way model names are.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	sanitized := SanitizeName(name)
	item, err := r.client.Resource(isvcGVR).Namespace(r.namespace).Get(ctx, sanitized, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get InferenceService %s: %w", sanitized, err)
	}

	isvc, err := fromUnstructured(item)
	if err != nil {
		return "", err
	}

	ep := r.endpoint(isvc)
	if !ep.Ready {
		nr := &NotReadyError{Name: sanitized}
		if c := isvc.Status.readyCondition(); c != nil {
			nr.Reason, nr.Message = c.Reason, c.Message
		}
		return "", nr
	}

	slog.Debug("resolved InferenceService endpoint", "name", sanitized, "url", ep.URL)
	return ep.URL, nil
}

// WaitForReady blocks until the named InferenceService is ready or the
// timeout expires, then returns its endpoint URL.
func (r *Resolver) WaitForReady(ctx context.Context, name string, timeout time.Duration) (string, error) {
	if url, err := r.Resolve(ctx, name); err == nil {
		return url, nil
	}

	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sanitized := SanitizeName(name)
	watcher, err := r.client.Resource(isvcGVR).Namespace(r.namespace).Watch(ctx, metav1.ListOptions{
		FieldSelector: "metadata.name=" + sanitized,
	})
	if err != nil {
		return "", fmt.Errorf("failed to watch InferenceService: %w", err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timeout waiting for InferenceService %s to become ready", sanitized)
		case event, ok := <-watcher.ResultChan():
			if !ok {
				return "", fmt.Errorf("watch channel closed for InferenceService %s", sanitized)
			}
			if event.Type != watch.Modified && event.Type != watch.Added {
				continue
			}
			obj, ok := event.Object.(*unstructured.Unstructured)
			if !ok {
				continue
			}
			isvc, err := fromUnstructured(obj)
			if err != nil {
				slog.Warn("failed to convert watch event", "error", err)
				continue
			}
			if isvc.Status.isReady() {
				slog.Info("InferenceService ready", "name", sanitized)
				return r.endpoint(isvc).URL, nil
			}
			if c := isvc.Status.readyCondition(); c != nil {
				slog.Debug("InferenceService not ready yet",
					"name", sanitized,
					"reason", c.Reason,
					"message", c.Message,
				)
			}
		}
	}
}

func (r *Resolver) endpoint(isvc *inferenceService) Endpoint {
	ep := Endpoint{Name: isvc.Name}
	if isvc.Status.isReady() {
		ep.Ready = true
		ep.URL = openAIBaseURL(isvc.Status.URL, isvc.Name, r.namespace)
	} else {
		ep.Message = "pending"
		if c := isvc.Status.readyCondition(); c != nil && c.Message != "" {
			ep.Message = c.Message
		}
	}
	return ep
}

// openAIBaseURL returns the status URL with the /v1 suffix the OpenAI
// client expects, or the in-cluster service URL when none is reported.
func openAIBaseURL(statusURL, name, namespace string) string {
	if statusURL == "" {
		return EndpointURL(name, namespace)
	}
	u := strings.TrimRight(statusURL, "/")
	if !strings.HasSuffix(u, "/v1") {
		u += "/v1"
	}
	return u
}

// SanitizeName converts a model name to a valid Kubernetes resource name.
func SanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
			result = append(result, byte(c))
		case c >= 'A' && c <= 'Z':
			result = append(result, byte(c-'A'+'a'))
		case c == '_', c == '.', c == '/', c == '@':
			result = append(result, '-')
		}
	}

	// Must start with a letter.
	if len(result) > 0 && (result[0] < 'a' || result[0] > 'z') {
		result = append([]byte("m-"), result...)
	}

	if len(result) > 63 {
		result = result[:63]
	}

	return strings.TrimRight(string(result), "-")
}

// EndpointURL returns the in-cluster URL for an InferenceService.
func EndpointURL(name, namespace string) string {
	return fmt.Sprintf("http://%s.%s.svc.cluster.local/v1", SanitizeName(name), namespace)
}

package kserve

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// inferenceService is the subset of a serving.kserve.io/v1beta1
// InferenceService needed to find where a model is served.
type inferenceService struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Status inferenceServiceStatus `json:"status,omitempty"`
}

type inferenceServiceStatus struct {
	Conditions []statusCondition `json:"conditions,omitempty"`
	URL        string            `json:"url,omitempty"`
}

type statusCondition struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *inferenceServiceStatus) readyCondition() *statusCondition {
	for i := range s.Conditions {
		if s.Conditions[i].Type == "Ready" {
			return &s.Conditions[i]
		}
	}
	return nil
}

func (s *inferenceServiceStatus) isReady() bool {
	c := s.readyCondition()
	return c != nil && c.Status == "True"
}

func fromUnstructured(obj *unstructured.Unstructured) (*inferenceService, error) {
	isvc := &inferenceService{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, isvc); err != nil {
		return nil, fmt.Errorf("failed to convert unstructured to InferenceService: %w", err)
	}
	return isvc, nil
}

// Endpoint is a served model as seen by the benchmark.
type Endpoint struct {
	Name    string `json:"name"`
	Ready   bool   `json:"ready"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// NotReadyError is returned when an InferenceService exists but does not
// report Ready=True.
type NotReadyError struct {
	Name    string
	Reason  string
	Message string
}

func (e *NotReadyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("InferenceService %s is not ready", e.Name)
	}
	return fmt.Sprintf("InferenceService %s is not ready: %s: %s", e.Name, e.Reason, e.Message)
}

// Package config loads the YAML run configuration. Command-line flags are
// applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/creativity-bench/internal/judge"
	"github.com/giantswarm/creativity-bench/internal/prompt"
	"github.com/giantswarm/creativity-bench/internal/runner"
)

// Defaults.
const (
	DefaultGeneratorModel = "gpt-4o-mini"
	DefaultCorpus         = "sample"
	DefaultOutputDir      = "results"
	DefaultNamespace      = "creativity-bench"
)

// ModelConfig describes one OpenAI-compatible model endpoint.
type ModelConfig struct {
	Model       string  `yaml:"model"`
	Endpoint    string  `yaml:"endpoint,omitempty"`
	APIKey      string  `yaml:"api_key,omitempty"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// InferenceService names a KServe InferenceService whose URL is used
	// when Endpoint is empty.
	InferenceService string `yaml:"inference_service,omitempty"`
}

// ResolveAPIKey returns the configured key, falling back to OPENAI_API_KEY.
func (m ModelConfig) ResolveAPIKey() string {
	if m.APIKey != "" {
		return m.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

// Config is a complete benchmark run configuration.
type Config struct {
	Generator ModelConfig `yaml:"generator"`
	Judge     ModelConfig `yaml:"judge"`

	Corpus     string `yaml:"corpus"`
	CorporaDir string `yaml:"corpora_dir,omitempty"`
	OutputDir  string `yaml:"output_dir"`

	PromptStyle   string        `yaml:"prompt_style"`
	StartQuestion int           `yaml:"start_question"`
	Resume        bool          `yaml:"resume,omitempty"`
	Throttle      time.Duration `yaml:"throttle"`

	// Namespace is where InferenceServices are looked up.
	Namespace string `yaml:"namespace,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Generator: ModelConfig{
			Model:       DefaultGeneratorModel,
			Temperature: runner.DefaultGeneratorTemperature,
			MaxTokens:   runner.DefaultGeneratorMaxTokens,
		},
		Judge: ModelConfig{
			Model:     judge.DefaultModel,
			MaxTokens: judge.DefaultMaxTokens,
		},
		Corpus:        DefaultCorpus,
		OutputDir:     DefaultOutputDir,
		PromptStyle:   string(prompt.StyleDynamic),
		StartQuestion: 1,
		Throttle:      runner.DefaultThrottle,
		Namespace:     DefaultNamespace,
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.Generator.validate("generator")...)
	errs = append(errs, c.Judge.validate("judge")...)

	if c.Corpus == "" {
		errs = append(errs, errors.New("corpus must be set"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must be set"))
	}
	if _, err := prompt.ParseStyle(c.PromptStyle); err != nil {
		errs = append(errs, err)
	}
	if c.StartQuestion < 1 {
		errs = append(errs, fmt.Errorf("start_question must be at least 1, got %d", c.StartQuestion))
	}
	if c.Resume && c.StartQuestion > 1 {
		errs = append(errs, fmt.Errorf("resume and start_question %d are mutually exclusive", c.StartQuestion))
	}
	if c.Throttle < 0 {
		errs = append(errs, fmt.Errorf("throttle must not be negative, got %s", c.Throttle))
	}

	return errors.Join(errs...)
}

func (m ModelConfig) validate(name string) []error {
	var errs []error
	if m.Model == "" {
		errs = append(errs, fmt.Errorf("%s.model must be set", name))
	}
	if m.Temperature < 0 || m.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%s.temperature must be within [0, 2], got %g", name, m.Temperature))
	}
	if m.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%s.max_tokens must be positive, got %d", name, m.MaxTokens))
	}
	if m.Endpoint != "" && m.InferenceService != "" {
		errs = append(errs, fmt.Errorf("%s: endpoint and inference_service are mutually exclusive", name))
	}
	return errs
}

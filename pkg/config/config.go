package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces every environment variable consumed by the
// advisor, e.g. ADVISOR_LLM_API_KEY.
const envPrefix = "ADVISOR_"

// Config is the full runtime configuration. Defaults are merged first,
// then environment variables override field by field.
type Config struct {
	Log         LogConfig         `koanf:"log"`
	LLM         LLMConfig         `koanf:"llm"`
	Store       StoreConfig       `koanf:"store"`
	Embedder    EmbedderConfig    `koanf:"embedder"`
	Retrieval   RetrievalConfig   `koanf:"retrieval"`
	Concurrency ConcurrencyConfig `koanf:"concurrency"`
	Documents   DocumentsConfig   `koanf:"documents"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

// LLMConfig selects the provider and per-role model names.
type LLMConfig struct {
	Provider         string `koanf:"provider" validate:"oneof=openai anthropic google ollama mock"`
	APIKey           string `koanf:"api_key"`
	APIURL           string `koanf:"api_url"`
	RouterModel      string `koanf:"router_model"      validate:"required"`
	SpecialistModel  string `koanf:"specialist_model"  validate:"required"`
	SynthesizerModel string `koanf:"synthesizer_model" validate:"required"`
}

type StoreConfig struct {
	Provider string `koanf:"provider" validate:"oneof=weaviate redis memory"`
	Endpoint string `koanf:"endpoint"`
	APIKey   string `koanf:"api_key"`
	// Dimension of stored vectors; the redis backend requires it.
	Dimension int `koanf:"dimension" validate:"gte=0"`
}

type EmbedderConfig struct {
	Provider  string `koanf:"provider" validate:"oneof=openai google"`
	Model     string `koanf:"model" validate:"required"`
	CacheSize int    `koanf:"cache_size" validate:"gte=0"`
}

type RetrievalConfig struct {
	NumResults    int `koanf:"num_results"    validate:"gt=0"`
	SnippetLength int `koanf:"snippet_length" validate:"gt=0"`
}

type ConcurrencyConfig struct {
	Specialists int `koanf:"specialists" validate:"gt=0"`
	Synthesizer int `koanf:"synthesizer" validate:"gt=0"`
}

type DocumentsConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// Default returns the baseline configuration before any environment
// overrides are applied.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		LLM: LLMConfig{
			Provider:         "google",
			RouterModel:      "gemini-2.5-flash",
			SpecialistModel:  "gemini-2.5-pro",
			SynthesizerModel: "gemini-2.5-pro",
		},
		Store: StoreConfig{
			Provider: "weaviate",
			Endpoint: "http://localhost:8080",
		},
		Embedder: EmbedderConfig{
			Provider:  "google",
			Model:     "text-embedding-004",
			CacheSize: 512,
		},
		Retrieval: RetrievalConfig{
			NumResults:    5,
			SnippetLength: 1000,
		},
		Concurrency: ConcurrencyConfig{
			Specialists: 3,
			Synthesizer: 1,
		},
		Documents: DocumentsConfig{Dir: "./aml_documents"},
	}
}

// Load builds the configuration from defaults plus ADVISOR_* environment
// variables and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key string, value string) (string, any) {
			return transformEnvKey(key), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

// transformEnvKey maps ADVISOR_LLM_API_KEY to llm.api_key. The first
// underscore separates the section; the rest keep underscores so keys
// like snippet_length survive.
func transformEnvKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Lllllllleong/studycardflow/internal/extract"
	"github.com/Lllllllleong/studycardflow/internal/generation"
	"github.com/Lllllllleong/studycardflow/internal/pipeline"
)

const (
	backendREST   = "rest"
	backendVertex = "vertex"
)

// Config holds all configuration for the CLI.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Extract   extract.Config  `yaml:"extract"`
	Pipeline  pipeline.Config `yaml:"pipeline"`
}

// GeneratorConfig selects and configures the generation backend.
type GeneratorConfig struct {
	Backend   string `yaml:"backend"` // rest or vertex
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	ProjectID string `yaml:"project_id"`
	Region    string `yaml:"region"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Backend: backendREST,
			Model:   generation.DefaultModel,
			Region:  "us-central1",
		},
	}
}

// LoadConfig reads an optional YAML file, then applies environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Generator.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Generator.Model = v
	}
	if v := os.Getenv("GENERATOR_BACKEND"); v != "" {
		cfg.Generator.Backend = v
	}
	if v := os.Getenv("PROJECT_ID"); v != "" {
		cfg.Generator.ProjectID = v
	}
	if v := os.Getenv("VERTEX_AI_REGION"); v != "" {
		cfg.Generator.Region = v
	}
}

// Validate checks that the configuration is internally consistent. Missing
// credentials are reported when a command needs them, not here.
func (c *Config) Validate() error {
	c.Generator.Backend = strings.ToLower(strings.TrimSpace(c.Generator.Backend))
	switch c.Generator.Backend {
	case backendREST, backendVertex:
	default:
		return fmt.Errorf("generator.backend must be %q or %q, got %q", backendREST, backendVertex, c.Generator.Backend)
	}
	if c.Pipeline.ChunkCount < 0 {
		return fmt.Errorf("pipeline.chunk_count must not be negative")
	}
	if c.Pipeline.RenderScale < 0 {
		return fmt.Errorf("pipeline.render_scale must not be negative")
	}
	return nil
}

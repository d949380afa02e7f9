package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jobforge/internal/config"
	"jobforge/internal/latex"
	"jobforge/internal/llm"
	"jobforge/internal/llm/keyring"
	"jobforge/internal/output"
	"jobforge/pkg/models"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:          "jobforge",
		Short:        "Tailor resumes to job descriptions with an LLM pipeline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "path to config file")

	root.AddCommand(newTailorCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared LLM client with its
// persisted key-rotation state.
func setup(ctx context.Context) (*config.Config, *llm.Client, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var store keyring.StateStore
	switch cfg.KeyState.Backend {
	case "redis":
		rs, err := keyring.NewRedisStore(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set up redis key state: %w", err)
		}
		store = rs
	default:
		store = keyring.NewFileStore(cfg.KeyState.File)
	}

	client, err := llm.NewClient(ctx, cfg, store, keyring.NewResetGate())
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

// loadResume parses the candidate's base resume YAML.
func loadResume(path string) (models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume %s: %w", path, err)
	}
	var doc models.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse resume %s: %w", path, err)
	}
	return doc, nil
}

func loadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// newWriter builds the output writer, with the PDF compiler attached when
// enabled in configuration.
func newWriter(cfg *config.Config) *output.Writer {
	var compiler *latex.Compiler
	if cfg.Compiler.Enabled {
		compiler = latex.NewCompiler(cfg.Compiler.Command, cfg.Compiler.Timeout)
	}
	return output.NewWriter(cfg.Paths.OutputDir, cfg.Paths.CacheDir, cfg.UserName, compiler)
}

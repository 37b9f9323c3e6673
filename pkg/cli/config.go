package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/policy"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values
type config struct {
	// Storage
	bucket string
	user   string

	// Adapters
	geminiProject      string
	geminiLocation     string
	embeddingDimension int64

	// Policy
	policyDir string

	logLevel   string
	configFile string
}

// fileConfig is the optional YAML config file. It fills values that
// flags and environment variables left unset; for gemini_location and
// log_level, which have flag defaults, a non-empty file value wins.
type fileConfig struct {
	Bucket             string `yaml:"bucket"`
	User               string `yaml:"user"`
	GeminiProject      string `yaml:"gemini_project"`
	GeminiLocation     string `yaml:"gemini_location"`
	EmbeddingDimension int64  `yaml:"embedding_dimension"`
	PolicyDir          string `yaml:"policy_dir"`
	LogLevel           string `yaml:"log_level"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Aliases:     []string{"b"},
			Usage:       "Cloud Storage bucket for memory collections",
			Sources:     cli.EnvVars("ENGRAM_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User namespace that owns the memory collection",
			Sources:     cli.EnvVars("ENGRAM_USER"),
			Destination: &cfg.user,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("ENGRAM_GEMINI_PROJECT"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("ENGRAM_GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding output dimension (0 = model default)",
			Sources:     cli.EnvVars("ENGRAM_EMBEDDING_DIMENSION"),
			Destination: &cfg.embeddingDimension,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego policies gating memory storage",
			Sources:     cli.EnvVars("ENGRAM_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ENGRAM_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("ENGRAM_CONFIG"),
			Destination: &cfg.configFile,
		},
	}
}

// setup applies the optional config file and initializes logging. Call
// it at the top of every command action.
func (cfg *config) setup() error {
	if cfg.configFile != "" {
		raw, err := os.ReadFile(cfg.configFile)
		if err != nil {
			return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configFile))
		}

		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configFile))
		}

		if cfg.bucket == "" {
			cfg.bucket = fc.Bucket
		}
		if cfg.user == "" {
			cfg.user = fc.User
		}
		if cfg.geminiProject == "" {
			cfg.geminiProject = fc.GeminiProject
		}
		if fc.GeminiLocation != "" {
			cfg.geminiLocation = fc.GeminiLocation
		}
		if cfg.embeddingDimension == 0 {
			cfg.embeddingDimension = fc.EmbeddingDimension
		}
		if cfg.policyDir == "" {
			cfg.policyDir = fc.PolicyDir
		}
		if fc.LogLevel != "" {
			cfg.logLevel = fc.LogLevel
		}
	}

	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
	return nil
}

// newUseCase creates the memory UseCase with all adapters wired
func (cfg *config) newUseCase(ctx context.Context) (*memory.UseCase, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required")
	}
	if cfg.user == "" {
		return nil, goerr.New("user is required")
	}
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}

	geminiOpts := []adapter.GeminiOption{}
	if cfg.embeddingDimension > 0 {
		geminiOpts = append(geminiOpts, adapter.WithEmbeddingDimension(int32(cfg.embeddingDimension)))
	}
	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, geminiOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	gate, err := policy.New(ctx, cfg.policyDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load policy")
	}

	return memory.New(storage, gemini, memory.WithPolicy(gate)), nil
}

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ModelConfig identifies one model/credential pair. KeyEnv names the
// environment variable holding the primary API key; BackupKeyEnvs are
// additional variables rotated through when the primary is exhausted.
type ModelConfig struct {
	Provider      string   `yaml:"provider" validate:"required"`
	Model         string   `yaml:"model" validate:"required"`
	KeyEnv        string   `yaml:"key_env" validate:"required"`
	BackupKeyEnvs []string `yaml:"backup_key_envs"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	LLM struct {
		Primary     ModelConfig   `yaml:"primary"`
		Fallback    ModelConfig   `yaml:"fallback"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float32       `yaml:"temperature"`
		MaxRetries  int           `yaml:"max_retries"` // rate-limit retries per key slot
		RetryDelay  time.Duration `yaml:"retry_delay"` // backoff base
		RateLimit   int           `yaml:"rate_limit"`  // requests per minute, 0 disables
	} `yaml:"llm"`

	Pipeline struct {
		SectionPaths         []string `yaml:"section_paths"`
		MaxValidationRetries int      `yaml:"max_validation_retries"`
		DishonestyThreshold  int      `yaml:"dishonesty_threshold"`
	} `yaml:"pipeline"`

	Paths struct {
		Resume      string `yaml:"resume"`
		Experiences string `yaml:"experiences"`
		OutputDir   string `yaml:"output_dir"`
		CacheDir    string `yaml:"cache_dir"`
	} `yaml:"paths"`

	Compiler struct {
		Command string        `yaml:"command"`
		Timeout time.Duration `yaml:"timeout"`
		Enabled bool          `yaml:"enabled"`
	} `yaml:"compiler"`

	KeyState struct {
		Backend string `yaml:"backend"` // "file" or "redis"
		File    string `yaml:"file"`
	} `yaml:"key_state"`

	Batch struct {
		MatchScoreThreshold int    `yaml:"match_score_threshold"`
		MaxResumes          int    `yaml:"max_resumes"`
		JobsCSV             string `yaml:"jobs_csv"`
	} `yaml:"batch"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	UserName string `yaml:"user_name"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second

	config.LLM.Primary = ModelConfig{Provider: "gemini", Model: "gemini-2.0-flash", KeyEnv: "GOOGLE_API_KEY"}
	config.LLM.Fallback = ModelConfig{Provider: "claude", Model: "claude-3-5-haiku-latest", KeyEnv: "ANTHROPIC_API_KEY"}
	config.LLM.MaxTokens = 8192
	config.LLM.Temperature = 0.3
	config.LLM.MaxRetries = 3
	config.LLM.RetryDelay = 1 * time.Second
	config.LLM.RateLimit = 60

	config.Pipeline.MaxValidationRetries = 5
	config.Pipeline.DishonestyThreshold = 20

	config.Paths.OutputDir = "output"
	config.Paths.CacheDir = ".cache"

	config.Compiler.Command = "compile_resume"
	config.Compiler.Timeout = 10 * time.Second
	config.Compiler.Enabled = true

	config.KeyState.Backend = "file"
	config.KeyState.File = ".cache/api_key_state.json"

	config.Batch.MatchScoreThreshold = 60
	config.Batch.MaxResumes = 5
	config.Batch.JobsCSV = "jobs.csv"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "text"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// Validate checks that the configuration is usable for a pipeline run.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.LLM.Primary); err != nil {
		return fmt.Errorf("invalid primary model config: %w", err)
	}
	if err := v.Struct(c.LLM.Fallback); err != nil {
		return fmt.Errorf("invalid fallback model config: %w", err)
	}
	if c.Pipeline.MaxValidationRetries < 1 {
		return fmt.Errorf("pipeline.max_validation_retries must be >= 1, got %d", c.Pipeline.MaxValidationRetries)
	}
	if c.Pipeline.DishonestyThreshold < 0 || c.Pipeline.DishonestyThreshold > 100 {
		return fmt.Errorf("pipeline.dishonesty_threshold must be within [0,100], got %d", c.Pipeline.DishonestyThreshold)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Primary.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Primary.Model = model
	}

	if keyEnv := os.Getenv("LLM_KEY_ENV"); keyEnv != "" {
		c.LLM.Primary.KeyEnv = keyEnv
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if outputDir := os.Getenv("OUTPUT_DIR"); outputDir != "" {
		c.Paths.OutputDir = outputDir
	}

	if resume := os.Getenv("RESUME_PATH"); resume != "" {
		c.Paths.Resume = resume
	}

	if experiences := os.Getenv("EXPERIENCES_PATH"); experiences != "" {
		c.Paths.Experiences = experiences
	}

	if backend := os.Getenv("KEY_STATE_BACKEND"); backend != "" {
		c.KeyState.Backend = backend
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if timeout := os.Getenv("COMPILER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Compiler.Timeout = d
		}
	}

	if enabled := os.Getenv("COMPILER_ENABLED"); enabled != "" {
		c.Compiler.Enabled = enabled == "true" || enabled == "1"
	}

	if name := os.Getenv("USER_NAME"); name != "" {
		c.UserName = name
	}
}

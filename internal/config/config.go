package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBleve  = "bleve"
)

// Config holds the boostlab configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Backend    BackendConfig    `yaml:"backend"`
	Schema     SchemaConfig     `yaml:"schema"`
	Search     SearchConfig     `yaml:"search"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Optimizer  OptimizerConfig  `yaml:"optimizer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings. Only used by the redis backend.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	Collection       string   `yaml:"collection"`
	IngestBatchSize  int      `yaml:"ingest_batch_size"`
}

// BackendConfig selects the search backend.
type BackendConfig struct {
	Name string `yaml:"name"` // memory (default), redis, bleve
	// ConstantFilter is ANDed into every query of the redis and bleve backends.
	ConstantFilter map[string]string `yaml:"constant_filter"`
}

// SchemaConfig declares the document fields.
type SchemaConfig struct {
	TextFields    []string `yaml:"text_fields"`
	KeywordFields []string `yaml:"keyword_fields"`
	Presence      string   `yaml:"presence"` // optional (default), required
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	Limit  int                `yaml:"limit"`
	Boosts map[string]float64 `yaml:"boosts"`
}

// EvaluationConfig holds dataset and harness settings.
type EvaluationConfig struct {
	Documents      string `yaml:"documents"`
	GroundTruth    string `yaml:"ground_truth"`
	ValidationSize int    `yaml:"validation_size"`
	Workers        int    `yaml:"workers"`
}

// OptimizerConfig holds TPE settings.
type OptimizerConfig struct {
	Trials        int          `yaml:"trials"`
	Seed          uint64       `yaml:"seed"`
	StartupTrials int          `yaml:"startup_trials"`
	Candidates    int          `yaml:"candidates"`
	Ranges        boost.Ranges `yaml:"ranges"`
	Profile       string       `yaml:"profile"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "faq"
	}
	if c.Database.IngestBatchSize <= 0 {
		c.Database.IngestBatchSize = 500
	}
	if c.Backend.Name == "" {
		c.Backend.Name = BackendMemory
	}
	if c.Schema.Presence == "" {
		c.Schema.Presence = string(schema.Optional)
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = request.DefaultLimit
	}
	if c.Evaluation.ValidationSize <= 0 {
		c.Evaluation.ValidationSize = 100
	}
	if c.Evaluation.Workers <= 0 {
		c.Evaluation.Workers = 1
	}
	if c.Optimizer.Trials <= 0 {
		c.Optimizer.Trials = 20
	}
	if c.Optimizer.Seed == 0 {
		c.Optimizer.Seed = 42
	}
	if c.Optimizer.StartupTrials <= 0 {
		c.Optimizer.StartupTrials = 10
	}
	if c.Optimizer.Candidates <= 0 {
		c.Optimizer.Candidates = 24
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Backend.Name {
	case BackendMemory, BackendBleve:
	case BackendRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis backend")
		}
	default:
		return fmt.Errorf("backend.name must be one of memory, redis, bleve, got %q", c.Backend.Name)
	}
	if _, err := c.BuildSchema(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if c.Search.Limit > request.MaxLimit {
		return fmt.Errorf("search.limit must be at most %d, got %d", request.MaxLimit, c.Search.Limit)
	}
	if _, err := boost.New(c.Search.Boosts); err != nil {
		return fmt.Errorf("search.boosts: %w", err)
	}
	if len(c.Optimizer.Ranges) > 0 {
		if err := c.Optimizer.Ranges.Validate(); err != nil {
			return fmt.Errorf("optimizer.ranges: %w", err)
		}
	}
	return nil
}

// BuildSchema converts the schema section into a domain schema.
func (c *Config) BuildSchema() (schema.Schema, error) {
	presence := schema.Presence(c.Schema.Presence)
	if !presence.IsValid() {
		return schema.Schema{}, fmt.Errorf("presence must be optional or required, got %q", c.Schema.Presence)
	}
	return schema.FromNames(c.Schema.TextFields, c.Schema.KeywordFields, presence)
}

// WithBackend returns a copy using the named backend, revalidated.
func (c Config) WithBackend(name string) (Config, error) {
	if name == "" {
		return c, nil
	}
	c.Backend.Name = name
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendMemory, BackendRedis, BackendBleve}
}

// PathEnv names the variable that overrides the config file location.
const PathEnv = "BOOSTLAB_CONFIG"

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	if path := os.Getenv(PathEnv); path != "" {
		return path
	}

	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

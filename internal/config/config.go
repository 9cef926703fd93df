// Package config loads the eventstorm configuration.
//
// Values are layered from lowest to highest priority: built-in defaults, an
// optional YAML or JSON file, EVENTSTORM_* environment variables. Command
// line flags are applied on top by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/query"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EVENTSTORM_"

// DefaultCharacterLimit caps markdown responses.
const DefaultCharacterLimit = 25000

// Config is the full application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Flow    FlowConfig    `yaml:"flow" json:"flow"`
	Query   QueryConfig   `yaml:"query" json:"query"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	MCP     MCPConfig     `yaml:"mcp" json:"mcp"`
}

// StorageConfig selects and locates the workshop store.
type StorageConfig struct {
	Driver     string `yaml:"driver" json:"driver" validate:"oneof=file memory redis sqlite"`
	Dir        string `yaml:"dir" json:"dir"`
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

// RedisConfig configures the redis store and its lock.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	// Lock enables the distributed workshop lock.
	Lock bool `yaml:"lock" json:"lock"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// FlowConfig holds the default traversal limits.
type FlowConfig struct {
	MaxDepth    int `yaml:"max_depth" json:"max_depth" validate:"gte=1,lte=20"`
	MaxElements int `yaml:"max_elements" json:"max_elements" validate:"gte=1,lte=500"`
}

// QueryConfig tunes pagination and context balance.
type QueryConfig struct {
	PageSize      int     `yaml:"page_size" json:"page_size" validate:"gte=1,lte=200"`
	BalanceFactor float64 `yaml:"balance_factor" json:"balance_factor" validate:"gt=1"`
}

// OutputConfig bounds markdown tool responses.
type OutputConfig struct {
	CharacterLimit int `yaml:"character_limit" json:"character_limit" validate:"gte=1000"`
}

// HTTPConfig configures the REST server.
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr" validate:"required"`
}

// MCPConfig configures the MCP transport.
type MCPConfig struct {
	Transport string `yaml:"transport" json:"transport" validate:"oneof=stdio sse"`
	Port      int    `yaml:"port" json:"port" validate:"gte=1,lte=65535"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:     "file",
			Dir:        defaultDir(),
			SQLitePath: filepath.Join(defaultDir(), "workshops.db"),
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "eventstorm:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Flow: FlowConfig{
			MaxDepth:    flow.DefaultMaxDepth,
			MaxElements: flow.DefaultMaxElements,
		},
		Query: QueryConfig{
			PageSize:      query.DefaultPageSize,
			BalanceFactor: query.DefaultBalanceFactor,
		},
		Output: OutputConfig{
			CharacterLimit: DefaultCharacterLimit,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      8080,
		},
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eventstorming_workshops"
	}
	return filepath.Join(home, ".eventstorming_workshops")
}

// Load builds the configuration. An empty path skips the file layer; a
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

type envBinding struct {
	key string
	set func(string) error
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	bindings := []envBinding{
		{"STORAGE_DRIVER", setString(&cfg.Storage.Driver)},
		{"STORAGE_DIR", setString(&cfg.Storage.Dir)},
		{"STORAGE_SQLITE_PATH", setString(&cfg.Storage.SQLitePath)},
		{"REDIS_ADDR", setString(&cfg.Redis.Addr)},
		{"REDIS_PASSWORD", setString(&cfg.Redis.Password)},
		{"REDIS_DB", setInt(&cfg.Redis.DB)},
		{"REDIS_PREFIX", setString(&cfg.Redis.Prefix)},
		{"REDIS_LOCK", setBool(&cfg.Redis.Lock)},
		{"LOG_LEVEL", setString(&cfg.Log.Level)},
		{"LOG_FORMAT", setString(&cfg.Log.Format)},
		{"FLOW_MAX_DEPTH", setInt(&cfg.Flow.MaxDepth)},
		{"FLOW_MAX_ELEMENTS", setInt(&cfg.Flow.MaxElements)},
		{"QUERY_PAGE_SIZE", setInt(&cfg.Query.PageSize)},
		{"QUERY_BALANCE_FACTOR", setFloat(&cfg.Query.BalanceFactor)},
		{"OUTPUT_CHARACTER_LIMIT", setInt(&cfg.Output.CharacterLimit)},
		{"HTTP_ADDR", setString(&cfg.HTTP.Addr)},
		{"MCP_TRANSPORT", setString(&cfg.MCP.Transport)},
		{"MCP_PORT", setInt(&cfg.MCP.Port)},
	}

	var errs []error
	for _, b := range bindings {
		val, ok := lookup(EnvPrefix + b.key)
		if !ok {
			continue
		}
		if err := b.set(val); err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err))
		}
	}
	return errors.Join(errs...)
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setFloat(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

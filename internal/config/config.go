// Package config loads the gateway configuration from defaults, an optional YAML file
// and SCOPES_* environment variables, in that order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SCOPES_"

type Config struct {
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Gateway     GatewayConfig     `mapstructure:"gateway" yaml:"gateway"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency" yaml:"idempotency"`
	Redis       RedisConfig       `mapstructure:"redis" yaml:"redis"`
	HTTP        HTTPConfig        `mapstructure:"http" yaml:"http"`
	MCP         MCPConfig         `mapstructure:"mcp" yaml:"mcp"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

type GatewayConfig struct {
	// MaxArgumentBytes caps the canonical size of call arguments; zero disables the cap.
	MaxArgumentBytes int  `mapstructure:"max_argument_bytes" yaml:"max_argument_bytes" validate:"gte=0"`
	ReadOnly         bool `mapstructure:"read_only" yaml:"read_only"`
}

type IdempotencyConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend" validate:"oneof=memory redis"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gt=0"`
	// MaxEntries bounds the result count after every sweep.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries" validate:"min=1"`
	// SweepInterval enables a periodic sweep; zero relies on the sweep done by every call.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval" validate:"gte=0"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address" yaml:"address"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix" validate:"required"`
	// Lock serializes store access across replicas with a redis lock.
	Lock bool `mapstructure:"lock" yaml:"lock"`
}

type HTTPConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr" validate:"required"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
	Events  bool   `mapstructure:"events" yaml:"events"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport" validate:"oneof=stdio sse"`
	Port      int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Gateway: GatewayConfig{MaxArgumentBytes: 64 << 10},
		Idempotency: IdempotencyConfig{
			Backend:    "memory",
			TTL:        10 * time.Minute,
			MaxEntries: 10000,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			Prefix:  "scopes:idempotency:",
		},
		HTTP: HTTPConfig{Addr: ":8080", Metrics: true},
		MCP:  MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// envBindings maps environment variable suffixes to config paths.
var envBindings = map[string][]string{
	"LOG_LEVEL":                  {"log", "level"},
	"LOG_FORMAT":                 {"log", "format"},
	"GATEWAY_MAX_ARGUMENT_BYTES": {"gateway", "max_argument_bytes"},
	"GATEWAY_READ_ONLY":          {"gateway", "read_only"},
	"IDEMPOTENCY_BACKEND":        {"idempotency", "backend"},
	"IDEMPOTENCY_TTL":            {"idempotency", "ttl"},
	"IDEMPOTENCY_MAX_ENTRIES":    {"idempotency", "max_entries"},
	"IDEMPOTENCY_SWEEP_INTERVAL": {"idempotency", "sweep_interval"},
	"REDIS_ADDRESS":              {"redis", "address"},
	"REDIS_PASSWORD":             {"redis", "password"},
	"REDIS_DB":                   {"redis", "db"},
	"REDIS_PREFIX":               {"redis", "prefix"},
	"REDIS_LOCK":                 {"redis", "lock"},
	"HTTP_ADDR":                  {"http", "addr"},
	"HTTP_METRICS":               {"http", "metrics"},
	"HTTP_EVENTS":                {"http", "events"},
	"MCP_TRANSPORT":              {"mcp", "transport"},
	"MCP_PORT":                   {"mcp", "port"},
}

// Load reads config from an optional YAML file and an env map. For production use LoadFromEnv.
func Load(path string, env map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "parsing config file")
		}
		if err := decode(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding config file %s", path)
		}
	}

	if err := decode(fromEnv(env), cfg); err != nil {
		return nil, errors.Wrap(err, "decoding environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads config from path and the process environment.
func LoadFromEnv(path string) (*Config, error) {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return Load(path, env)
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if c.Idempotency.Backend == "redis" && c.Redis.Address == "" {
		return errors.New("invalid config: redis.address required when idempotency.backend is redis")
	}
	if c.Redis.Lock && c.Idempotency.Backend != "redis" {
		return errors.Errorf("invalid config: redis.lock needs the redis backend, got %s", c.Idempotency.Backend)
	}
	return nil
}

func fromEnv(env map[string]string) map[string]any {
	out := make(map[string]any)
	for suffix, path := range envBindings {
		v, ok := env[EnvPrefix+suffix]
		if !ok {
			continue
		}
		section, _ := out[path[0]].(map[string]any)
		if section == nil {
			section = make(map[string]any)
			out[path[0]] = section
		}
		section[path[1]] = v
	}
	return out
}

func decode(raw map[string]any, cfg *Config) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

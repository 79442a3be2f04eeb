package nethttp

import (
	"github.com/dmitrymomot/requestmapper/core/binder"
	"github.com/dmitrymomot/requestmapper/core/config"
)

// Config holds request parsing limits. Fields are loaded from the environment
// by NewFromConfig, or from a TOML file with config.LoadFile.
type Config struct {
	MaxJSONSize     int64  `env:"MAPPER_MAX_JSON_SIZE" envDefault:"1048576" toml:"max_json_size"`
	MaxMemory       int64  `env:"MAPPER_MAX_MEMORY" envDefault:"10485760" toml:"max_memory"`
	RequestIDHeader string `env:"MAPPER_REQUEST_ID_HEADER" envDefault:"X-Request-ID" toml:"request_id_header"`
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxJSONSize:     binder.DefaultMaxJSONSize,
		MaxMemory:       binder.DefaultMaxMemory,
		RequestIDHeader: "X-Request-ID",
	}
}

// NewFromConfig loads Config from the environment and builds an Integration.
func NewFromConfig(opts ...Option) (*Integration, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return New(cfg, opts...), nil
}

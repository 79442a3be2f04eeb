package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when environment variables cannot be parsed into the target.
var ErrParsingConfig = errors.New("failed to parse config")

// ErrReadingConfigFile is returned when a configuration file cannot be read or decoded.
var ErrReadingConfigFile = errors.New("failed to read config file")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> loaded value
	mu         sync.Mutex
)

// Load populates cfg from the environment. The first call for a type parses the
// environment (after loading a .env file if present); later calls copy the
// cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil target", ErrParsingConfig)
	}

	typ := reflect.TypeFor[T]()
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal case in production
		_ = godotenv.Load()
	})

	mu.Lock()
	defer mu.Unlock()

	// Another goroutine may have loaded it while we waited
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return fmt.Errorf("%w: %w", ErrParsingConfig, err)
	}
	cache.Store(typ, loaded)
	*cfg = loaded
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// LoadFile populates cfg from the environment like Load, then applies the keys
// defined in the TOML file at path on top. Keys missing from the file keep their
// environment or default values. Results are not cached.
func LoadFile[T any](path string, cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil target", ErrParsingConfig)
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return fmt.Errorf("%w: %w", ErrParsingConfig, err)
	}
	if _, err := toml.DecodeFile(path, &loaded); err != nil {
		return fmt.Errorf("%w (%s): %w", ErrReadingConfigFile, path, err)
	}
	*cfg = loaded
	return nil
}

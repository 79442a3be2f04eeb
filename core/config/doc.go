// Package config fills configuration structs from the environment.
//
// Struct fields are described with caarlos0/env tags. A .env file in the
// working directory, if there is one, is loaded into the environment the first
// time any loader runs.
//
//	type Limits struct {
//		MaxJSONSize int64 `env:"MAPPER_MAX_JSON_SIZE" envDefault:"1048576"`
//		MaxMemory   int64 `env:"MAPPER_MAX_MEMORY" envDefault:"10485760"`
//	}
//
//	var limits Limits
//	if err := config.Load(&limits); err != nil {
//		return err
//	}
//
// Load parses a type once. Every later Load of the same type copies the first
// result, even if the environment has changed since, so adapters can call it
// freely during wiring. MustLoad panics instead of returning the error.
//
// LoadFile parses the environment and then decodes a TOML file over the result.
// Keys present in the file win; the result is not cached:
//
//	type Limits struct {
//		MaxJSONSize int64 `env:"MAPPER_MAX_JSON_SIZE" envDefault:"1048576" toml:"max_json_size"`
//	}
//
//	err := config.LoadFile("/etc/app/config.toml", &limits)
//
// Parse failures wrap ErrParsingConfig; unreadable or malformed files wrap
// ErrReadingConfigFile.
package config

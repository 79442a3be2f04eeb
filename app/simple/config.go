package simple

import "github.com/dmitrymomot/requestmapper/integration/nethttp"

type Config struct {
	Mapper nethttp.Config `toml:"mapper"`

	// ConfigFile optionally names a TOML file applied on top of the environment.
	ConfigFile string `env:"APP_CONFIG_FILE" toml:"-"`

	AppName  string `env:"APP_NAME" envDefault:"simple-notes" toml:"app_name"`
	Env      string `env:"APP_ENV" envDefault:"development" toml:"env"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" toml:"log_level"`
	HttpHost string `env:"HTTP_HOST" envDefault:"localhost" toml:"http_host"`
	HttpPort string `env:"HTTP_PORT" envDefault:"8080" toml:"http_port"`
}

// Package config loads process configuration from flags, environment (SKILLS_*) and an
// optional config file through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. SKILLS_AMADEUS_CLIENT_ID.
const EnvPrefix = "SKILLS"

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Amadeus struct {
	// Hostname selects the environment: "test" or "production".
	Hostname     string `mapstructure:"hostname"`
	BaseURL      string `mapstructure:"base_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type ViaCEP struct {
	BaseURL string `mapstructure:"base_url"`
}

type OpenMeteo struct {
	GeocodingURL string `mapstructure:"geocoding_url"`
	ForecastURL  string `mapstructure:"forecast_url"`
}

type Upstream struct {
	// Timeout of zero keeps the transport default.
	Timeout time.Duration `mapstructure:"timeout"`
}

type Database struct {
	URL string `mapstructure:"url"`
}

type OTel struct {
	Stdout bool `mapstructure:"stdout"`
}

type Skills struct {
	// AllowedPermissions restricts tool permissions; empty allows everything registered tools declare.
	AllowedPermissions []string `mapstructure:"allowed_permissions"`
}

// Config is the typed view over viper.
type Config struct {
	HTTP      HTTP      `mapstructure:"http"`
	Log       Log       `mapstructure:"log"`
	Amadeus   Amadeus   `mapstructure:"amadeus"`
	ViaCEP    ViaCEP    `mapstructure:"viacep"`
	OpenMeteo OpenMeteo `mapstructure:"openmeteo"`
	Upstream  Upstream  `mapstructure:"upstream"`
	Database  Database  `mapstructure:"database"`
	OTel      OTel      `mapstructure:"otel"`
	Skills    Skills    `mapstructure:"skills"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("amadeus.hostname", "test")
	v.SetDefault("amadeus.base_url", "")
	v.SetDefault("amadeus.client_id", "")
	v.SetDefault("amadeus.client_secret", "")
	v.SetDefault("viacep.base_url", "https://viacep.com.br")
	v.SetDefault("openmeteo.geocoding_url", "https://geocoding-api.open-meteo.com/v1/search")
	v.SetDefault("openmeteo.forecast_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("upstream.timeout", time.Duration(0))
	v.SetDefault("database.url", "")
	v.SetDefault("otel.stdout", false)
	v.SetDefault("skills.allowed_permissions", []string{})
}

// BindFlags registers the global flags on fs and binds them into v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "text", "log format (text, json)")
	fs.String("database-url", "", "invocation journal DSN (sqlite:... or postgres://...)")
	fs.Bool("otel-stdout", false, "export spans to stderr")
	bindings := map[string]string{
		"log.level":    "log-level",
		"log.format":   "log-format",
		"database.url": "database-url",
		"otel.stdout":  "otel-stdout",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind %s: %w", flag, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment binding configured.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and unmarshals v into a Config.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Amadeus.BaseURL == "" {
		cfg.Amadeus.BaseURL = AmadeusBaseURL(cfg.Amadeus.Hostname)
	}
	return cfg, nil
}

// AmadeusBaseURL maps the hostname selector to the API base URL.
func AmadeusBaseURL(hostname string) string {
	if strings.EqualFold(hostname, "production") {
		return "https://api.amadeus.com"
	}
	return "https://test.api.amadeus.com"
}

// Package config resolves the process configuration from flags, the
// environment, an optional .env file and an optional YAML fault profile.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/jcmexdev/foodme/internal/api/core/faults"
)

const (
	DefaultPort           = 3000
	DefaultServiceName    = "foodme-api"
	DefaultServiceVersion = "1.0.0"
	DefaultCacheTTL       = 5 * time.Minute
)

// Config is everything main needs to build the server.
type Config struct {
	Port      int
	StaticDir string
	TestDir   string
	DataFile  string
	MenusFile string

	RedisAddr string
	CacheTTL  time.Duration

	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	LogLevel       string

	Seed   uint64
	Faults faults.Policy
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// LoadDotEnv loads .env into the environment unless ENV is production.
// Variables already set win over the file. A missing file is not an error.
func LoadDotEnv(path string) error {
	if os.Getenv("ENV") == "production" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Flags returns the CLI flags. Each flag falls back to the environment
// variable named in its EnvVars.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP listen port", Value: DefaultPort, EnvVars: []string{"PORT"}},
		&cli.StringFlag{Name: "static-dir", Usage: "directory served at /", Value: "app", EnvVars: []string{"STATIC_DIR"}},
		&cli.StringFlag{Name: "test-dir", Usage: "directory served at /test/", Value: "test", EnvVars: []string{"TEST_DIR"}},
		&cli.StringFlag{Name: "data-file", Usage: "restaurants JSON file", Value: "data/restaurants.json", EnvVars: []string{"DATA_FILE"}},
		&cli.StringFlag{Name: "menus-file", Usage: "menu CSV file", Value: "data/menus.csv", EnvVars: []string{"MENUS_FILE"}},
		&cli.StringFlag{Name: "faults-file", Usage: "YAML fault profile overriding the default rates", EnvVars: []string{"FAULTS_FILE"}},
		&cli.StringFlag{Name: "latency-mode", Usage: "cooperative or global", EnvVars: []string{"LATENCY_MODE"}},
		&cli.Uint64Flag{Name: "seed", Usage: "fault source seed, 0 for random", EnvVars: []string{"FAULTS_SEED"}},
		&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for the restaurant cache, empty to disable", EnvVars: []string{"REDIS_ADDR"}},
		&cli.DurationFlag{Name: "cache-ttl", Usage: "restaurant cache TTL", Value: DefaultCacheTTL, EnvVars: []string{"CACHE_TTL"}},
		&cli.StringFlag{Name: "otlp-endpoint", Usage: "OTLP gRPC collector, empty to keep telemetry in process", EnvVars: []string{"OTEL_EXPORTER_OTLP_ENDPOINT"}},
		&cli.StringFlag{Name: "service-name", Value: DefaultServiceName, EnvVars: []string{"OTEL_SERVICE_NAME"}},
		&cli.StringFlag{Name: "service-version", Value: DefaultServiceVersion, EnvVars: []string{"SERVICE_VERSION"}},
		&cli.StringFlag{Name: "environment", Value: "development", EnvVars: []string{"ENV"}},
		&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
	}
}

// FromCLI builds a validated Config from parsed flags.
func FromCLI(c *cli.Context) (Config, error) {
	cfg := Config{
		Port:           c.Int("port"),
		StaticDir:      c.String("static-dir"),
		TestDir:        c.String("test-dir"),
		DataFile:       c.String("data-file"),
		MenusFile:      c.String("menus-file"),
		RedisAddr:      c.String("redis-addr"),
		CacheTTL:       c.Duration("cache-ttl"),
		ServiceName:    c.String("service-name"),
		ServiceVersion: c.String("service-version"),
		Environment:    c.String("environment"),
		OTLPEndpoint:   c.String("otlp-endpoint"),
		LogLevel:       c.String("log-level"),
		Seed:           c.Uint64("seed"),
		Faults:         faults.DefaultPolicy(),
	}

	if path := c.String("faults-file"); path != "" {
		policy, err := LoadFaultProfile(path, cfg.Faults)
		if err != nil {
			return Config{}, err
		}
		cfg.Faults = policy
	}
	if mode := c.String("latency-mode"); mode != "" {
		cfg.Faults.LatencyMode = faults.LatencyMode(mode)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: port out of range: %d", c.Port))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("config: cache ttl must not be negative: %s", c.CacheTTL))
	}
	if err := c.Faults.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

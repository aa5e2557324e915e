package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	PostgresAddress  string `yaml:"postgres_address"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresDB       string `yaml:"postgres_db"`
	PostgresUsername string `yaml:"postgres_username"`
	PostgresPassword string `yaml:"postgres_password"`

	StorageBackend  string        `yaml:"storage_backend"`
	RunMigrations   bool          `yaml:"run_migrations"`
	HTTPPort        string        `yaml:"http_port"`
	OperatorWorkers int           `yaml:"operator_workers"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`

	SchedulerEnabled    bool          `yaml:"scheduler_enabled"`
	SchedulerInterval   time.Duration `yaml:"scheduler_interval"`
	SchedulerCatchUp    bool          `yaml:"scheduler_catch_up"`
	SchedulerMaxCatchUp int           `yaml:"scheduler_max_catch_up"`
	SchedulerTimezone   string        `yaml:"scheduler_timezone"`
	ReconcileAfterRun   bool          `yaml:"reconcile_after_run"`

	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration for the docker compose setup.
func Defaults() Config {
	return Config{
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",

		StorageBackend:  BackendPostgres,
		RunMigrations:   true,
		HTTPPort:        "9446",
		OperatorWorkers: 4,
		RequestTimeout:  10 * time.Second,

		SchedulerEnabled:    true,
		SchedulerInterval:   time.Hour,
		SchedulerCatchUp:    false,
		SchedulerMaxCatchUp: 366,
		SchedulerTimezone:   "UTC",
		ReconcileAfterRun:   true,

		AMQPExchange: "allowance",
		AMQPQueue:    "ledger_events",

		LogLevel: "info",
	}
}

// ProcessEnvironmentVariables loads .env, then the optional CONFIG_FILE,
// then the process environment. Later sources win.
func ProcessEnvironmentVariables() (*Config, error) {
	_ = godotenv.Load()
	return Load(os.Getenv)
}

// Load builds a validated Config using getenv as the environment.
func Load(getenv func(string) string) (*Config, error) {
	env := Defaults()

	if path := getenv("CONFIG_FILE"); path != "" {
		if err := env.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.applyEnvironment(getenv); err != nil {
		return nil, err
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}

	return &env, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironment(getenv func(string) string) error {
	p := envParser{getenv: getenv}

	p.str("POSTGRES_ADDRESS", &c.PostgresAddress)
	p.str("POSTGRES_PORT", &c.PostgresPort)
	p.str("POSTGRES_DB", &c.PostgresDB)
	p.str("POSTGRES_USERNAME", &c.PostgresUsername)
	p.str("POSTGRES_PASSWORD", &c.PostgresPassword)

	p.str("STORAGE_BACKEND", &c.StorageBackend)
	p.boolean("RUN_MIGRATIONS", &c.RunMigrations)
	p.str("HTTP_PORT", &c.HTTPPort)
	p.integer("OPERATOR_WORKERS", &c.OperatorWorkers)
	p.duration("REQUEST_TIMEOUT", &c.RequestTimeout)

	p.boolean("SCHEDULER_ENABLED", &c.SchedulerEnabled)
	p.duration("SCHEDULER_INTERVAL", &c.SchedulerInterval)
	p.boolean("SCHEDULER_CATCH_UP", &c.SchedulerCatchUp)
	p.integer("SCHEDULER_MAX_CATCH_UP", &c.SchedulerMaxCatchUp)
	p.str("SCHEDULER_TIMEZONE", &c.SchedulerTimezone)
	p.boolean("RECONCILE_AFTER_RUN", &c.ReconcileAfterRun)

	p.str("AMQP_URL", &c.AMQPURL)
	p.str("AMQP_EXCHANGE", &c.AMQPExchange)
	p.str("AMQP_QUEUE", &c.AMQPQueue)

	p.str("LOG_LEVEL", &c.LogLevel)

	if len(p.errors) > 0 {
		return fmt.Errorf("config: %s", strings.Join(p.errors, "; "))
	}
	return nil
}

// Validate reports every invalid setting in a single error.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.HTTPPort); err != nil {
		errors = append(errors, fmt.Sprintf("invalid http port '%s': must be a number", c.HTTPPort))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid http port %d: must be between 1 and 65535", port))
	}

	switch c.StorageBackend {
	case BackendPostgres:
		if c.PostgresAddress == "" || c.PostgresDB == "" {
			errors = append(errors, "postgres address and database are required for the postgres backend")
		}
	case BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of [%s %s]", c.StorageBackend, BackendPostgres, BackendMemory))
	}

	if c.OperatorWorkers < 1 {
		errors = append(errors, fmt.Sprintf("invalid operator workers %d: must be at least 1", c.OperatorWorkers))
	}
	if c.RequestTimeout <= 0 {
		errors = append(errors, "request timeout must be positive")
	}

	if c.SchedulerEnabled && c.SchedulerInterval <= 0 {
		errors = append(errors, "scheduler interval must be positive when the scheduler is enabled")
	}
	if c.SchedulerMaxCatchUp < 1 {
		errors = append(errors, fmt.Sprintf("invalid scheduler max catch up %d: must be at least 1", c.SchedulerMaxCatchUp))
	}
	if _, err := time.LoadLocation(c.SchedulerTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid scheduler timezone '%s': %v", c.SchedulerTimezone, err))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

// Location returns the timezone used to decide which calendar day it is.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SchedulerTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type envParser struct {
	getenv func(string) string
	errors []string
}

func (p *envParser) str(key string, dst *string) {
	if v := p.getenv(key); len(v) != 0 {
		*dst = v
	}
}

func (p *envParser) integer(key string, dst *int) {
	v := p.getenv(key)
	if len(v) == 0 {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid integer '%s'", key, v))
		return
	}
	*dst = n
}

func (p *envParser) boolean(key string, dst *bool) {
	v := p.getenv(key)
	if len(v) == 0 {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid boolean '%s'", key, v))
		return
	}
	*dst = b
}

func (p *envParser) duration(key string, dst *time.Duration) {
	v := p.getenv(key)
	if len(v) == 0 {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration '%s'", key, v))
		return
	}
	*dst = d
}

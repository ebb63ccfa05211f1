package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesd/internal/storage"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Notes   NotesConfig       `yaml:"notes"`
	Metrics MetricsConfig     `yaml:"metrics"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// NotesConfig holds the location and naming of note files.
type NotesConfig struct {
	Dir    string `yaml:"dir"`
	Suffix string `yaml:"suffix"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Suffix, validation.Required, validation.Length(1, storage.MaxSuffixBytes), validation.By(noSeparator)),
	)
}

func noSeparator(value interface{}) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("must not contain path separators")
	}
	return nil
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required, validation.By(absolutePath))),
	)
}

func absolutePath(value interface{}) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "/") {
		return fmt.Errorf("must start with /")
	}
	return nil
}

// WatchConfig controls the notes directory watcher and event stream.
type WatchConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Heartbeat, validation.When(c.Enabled, validation.Required, validation.Min(time.Millisecond))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            3001,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Notes: NotesConfig{
			Dir:    "./notes",
			Suffix: ".txt",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Watch: WatchConfig{
			Enabled:   true,
			Heartbeat: 15 * time.Second,
		},
	}
}

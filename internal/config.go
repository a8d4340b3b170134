package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// pinPattern is the only accepted shape for any role PIN.
var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Drafts DraftsConfig      `yaml:"drafts"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Drafts.Validate()
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
	Port int `yaml:"port"`
}

// Address returns the HTTP server listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds the first-boot credential values and session settings.
//
// The PINs and label here only seed the credential store when the database
// has no credential row yet; after the first rotation the persisted values
// win across restarts.
type AuthConfig struct {
	AuthorPIN   string        `yaml:"author_pin"`
	ViewerPIN   string        `yaml:"viewer_pin"`
	ViewerLabel string        `yaml:"viewer_label"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.AuthorPIN, validation.Required, validation.Match(pinPattern)),
		validation.Field(&c.ViewerPIN, validation.Required, validation.Match(pinPattern)),
		validation.Field(&c.ViewerLabel, validation.Required, validation.Length(1, 20)),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Minute)),
	); err != nil {
		return err
	}
	if c.AuthorPIN == c.ViewerPIN {
		return fmt.Errorf("auth: author_pin and viewer_pin must differ")
	}
	return nil
}

// DraftsConfig holds the optional drafts-import directory.
//
// When Path is empty the importer is disabled.
type DraftsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the drafts configuration.
func (c *DraftsConfig) Validate() error {
	return nil
}

// Enabled reports whether the drafts importer should run.
func (c *DraftsConfig) Enabled() bool {
	return c.Path != ""
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./journal.db",
		},
		Auth: AuthConfig{
			AuthorPIN:   "6278",
			ViewerPIN:   "1234",
			ViewerLabel: "Her",
			SessionTTL:  12 * time.Hour,
		},
	}
}

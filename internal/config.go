package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/folio/internal/ledger"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Ledger  LedgerConfig      `yaml:"ledger"`
	Auth    AuthConfig        `yaml:"auth"`
	Spotify SpotifyConfig     `yaml:"spotify"`
	Phone   PhoneConfig       `yaml:"phone"`
	Assets  AssetsConfig      `yaml:"assets"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Spotify.Validate(); err != nil {
		return err
	}
	if err := c.Phone.Validate(); err != nil {
		return err
	}
	return c.Assets.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile receives a copy of every log record when set. It is the only
	// log sink of the phone, which owns the terminal.
	LogFile string     `yaml:"log_file"`
	HTTP    HTTPConfig `yaml:"http"`
	// EventThrottle bounds how often content.updated is pushed to clients.
	EventThrottle time.Duration `yaml:"event_throttle"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.EventThrottle, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig points at the content catalog. An empty path serves the
// built-in catalog and disables hot reload.
type ContentConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig selects where viewed ledgers are kept.
//
// Driver is one of:
//   - "sqlite" (default): Path is the database file.
//   - "file": Path is a directory holding one JSON document per profile.
type LedgerConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = ledger.DriverSQLite
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(ledger.DriverSQLite, ledger.DriverFile)),
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds the cookie session configuration.
type AuthConfig struct {
	// SessionSecret derives the cookie signing and encryption keys. Only
	// serve needs it.
	SessionSecret string        `yaml:"session_secret"`
	SecureCookies bool          `yaml:"secure_cookies"`
	SessionMaxAge time.Duration `yaml:"session_max_age"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SessionSecret, validation.Length(16, 0)),
		validation.Field(&c.SessionMaxAge, validation.Min(time.Duration(0))),
	)
}

// SpotifyConfig holds the music provider client registration. Sign-in is
// disabled while ClientID is empty.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	// AuthURL, TokenURL and APIURL override the provider endpoints.
	AuthURL  string `yaml:"auth_url"`
	TokenURL string `yaml:"token_url"`
	APIURL   string `yaml:"api_url"`
}

// Enabled reports whether the provider is configured.
func (c *SpotifyConfig) Enabled() bool {
	return c.ClientID != ""
}

// Validate validates the provider configuration.
func (c *SpotifyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ClientSecret, validation.When(c.Enabled(), validation.Required)),
		validation.Field(&c.RedirectURL, validation.When(c.Enabled(), validation.Required), is.URL),
		validation.Field(&c.AuthURL, is.URL),
		validation.Field(&c.TokenURL, is.URL),
		validation.Field(&c.APIURL, is.URL),
	)
}

// PhoneConfig tunes the terminal phone.
type PhoneConfig struct {
	Profile         string        `yaml:"profile"`
	CellWidth       int           `yaml:"cell_width"`
	LatchThreshold  int           `yaml:"latch_threshold"`
	CommitThreshold int           `yaml:"commit_threshold"`
	CommitDelay     time.Duration `yaml:"commit_delay"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	WidgetInterval  time.Duration `yaml:"widget_interval"`
}

// Validate validates the phone configuration.
func (c *PhoneConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Profile, validation.Required, validation.Match(ledger.ProfilePattern)),
		validation.Field(&c.CellWidth, validation.Min(1)),
		validation.Field(&c.LatchThreshold, validation.Min(1)),
		validation.Field(&c.CommitThreshold, validation.Min(1)),
	)
}

// AssetsConfig locates the optimized background image.
type AssetsConfig struct {
	Dir      string `yaml:"dir"`
	Name     string `yaml:"name"`
	MaxWidth int    `yaml:"max_width"`
	Quality  int    `yaml:"quality"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.MaxWidth, validation.Min(1)),
		validation.Field(&c.Quality, validation.Min(1), validation.Max(100)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			EventThrottle: 2 * time.Second,
		},
		Ledger: LedgerConfig{
			Driver: ledger.DriverSQLite,
			Path:   "./folio.db",
		},
		Auth: AuthConfig{
			SessionMaxAge: 30 * 24 * time.Hour,
		},
		Phone: PhoneConfig{
			Profile:         "local",
			CellWidth:       8,
			LatchThreshold:  10,
			CommitThreshold: 50,
			CommitDelay:     200 * time.Millisecond,
			SettleDelay:     300 * time.Millisecond,
			WidgetInterval:  5 * time.Second,
		},
		Assets: AssetsConfig{
			Dir:      "./public/images",
			Name:     "background",
			MaxWidth: 1920,
			Quality:  80,
		},
	}
}

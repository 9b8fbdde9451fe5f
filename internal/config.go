package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sngforge/internal/chartservice"
	"github.com/starford/sngforge/internal/sng"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Arrangement overrides accepted by the compiler section.
const (
	ArrangementAuto   = "auto"
	ArrangementGuitar = "guitar"
	ArrangementBass   = "bass"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Songs    SongsConfig       `yaml:"songs"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Compiler CompilerConfig    `yaml:"compiler"`
	CORS     CORSConfig        `yaml:"cors"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.App, &c.Songs, &c.SQLite, &c.Auth, &c.Compiler, &c.CORS,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
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

// SongsConfig locates notation documents and compiled output.
type SongsConfig struct {
	Dir       string `yaml:"dir"`
	OutputDir string `yaml:"output_dir"`
}

// Validate validates the songs configuration.
func (c *SongsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
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

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// CompilerConfig tunes chart compilation.
type CompilerConfig struct {
	// Arrangement is "auto" to derive bass from the document, or a forced
	// "guitar" or "bass".
	Arrangement   string `yaml:"arrangement"`
	ChordFretMode string `yaml:"chord_fret_mode"`
	Workers       int    `yaml:"workers"`
	MIDIPreview   bool   `yaml:"midi_preview"`
	// FoldNames writes "Cafe" for "Café" instead of "Caf?".
	FoldNames bool `yaml:"fold_names"`
}

// Validate validates the compiler configuration.
func (c *CompilerConfig) Validate() error {
	if c.Arrangement == "" {
		c.Arrangement = ArrangementAuto
	}
	if c.ChordFretMode == "" {
		c.ChordFretMode = string(sng.ChordFretObserved)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Arrangement, validation.In(ArrangementAuto, ArrangementGuitar, ArrangementBass)),
		validation.Field(&c.ChordFretMode, validation.In(string(sng.ChordFretObserved), string(sng.ChordFretLowest))),
		validation.Field(&c.Workers, validation.Min(1), validation.Max(64)),
	)
}

// Service converts the section into chart service settings.
func (c *CompilerConfig) Service() chartservice.Config {
	cfg := chartservice.Config{
		Workers:       c.Workers,
		MIDIPreview:   c.MIDIPreview,
		ChordFretMode: sng.ChordFretMode(c.ChordFretMode),
		FoldNames:     c.FoldNames,
	}
	switch c.Arrangement {
	case ArrangementGuitar:
		cfg.Bass = new(bool)
	case ArrangementBass:
		bass := true
		cfg.Bass = &bass
	}
	return cfg
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Validate validates the CORS configuration.
func (c *CORSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AllowedOrigins, validation.Each(validation.Required)),
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
		},
		Songs: SongsConfig{
			Dir:       "./songs",
			OutputDir: "./charts",
		},
		SQLite: SQLiteConfig{
			Path: "./sngforge.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Compiler: CompilerConfig{
			Arrangement:   ArrangementAuto,
			ChordFretMode: string(sng.ChordFretObserved),
			Workers:       4,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

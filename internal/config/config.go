package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/mindstorm/internal/config/loader"
	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MINDSTORM_"

// Config holds every mindstorm setting.
type Config struct {
	Layout  LayoutConfig  `toml:"layout"`
	Editor  EditorConfig  `toml:"editor"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
	Watch   WatchConfig   `toml:"watch"`
	Script  ScriptConfig  `toml:"script"`

	// Keymap binds key names to viewer actions, overriding the defaults.
	Keymap map[string]string `toml:"keymap"`

	// Source is the file the settings were read from, if any.
	Source string `toml:"-"`
}

// LayoutConfig controls box layout.
type LayoutConfig struct {
	Direction layout.Direction `toml:"direction"`
	HGap      int              `toml:"hGap"`
	VGap      int              `toml:"vGap"`
	PaddingX  int              `toml:"paddingX"`
	PaddingY  int              `toml:"paddingY"`
}

// EditorConfig controls editing behaviour.
type EditorConfig struct {
	NewTopicName string `toml:"newTopicName"`
	AllowUndo    bool   `toml:"allowUndo"`
	// MaxUndo caps the undo log. Zero leaves it unbounded.
	MaxUndo int `toml:"maxUndo"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level logging.Level `toml:"level"`
	// File receives log output instead of stderr when set.
	File string `toml:"file"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// WatchConfig controls file watching.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// ScriptConfig controls Lua scripts.
type ScriptConfig struct {
	Timeout Duration `toml:"timeout"`
}

// Duration is a time.Duration written as text, such as "250ms".
type Duration time.Duration

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Direction: layout.Both,
			HGap:      4,
			VGap:      1,
			PaddingX:  2,
			PaddingY:  1,
		},
		Editor: EditorConfig{
			NewTopicName: "new node",
			AllowUndo:    true,
		},
		Logging: LoggingConfig{Level: logging.LevelWarn},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9464"},
		Watch:   WatchConfig{Debounce: Duration(200 * time.Millisecond)},
		Script:  ScriptConfig{Timeout: Duration(5 * time.Second)},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mindstorm/config.toml or the
// platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mindstorm", "config.toml")
}

type options struct {
	path   string
	fs     loader.FileSystem
	useEnv bool
}

// Option configures Load.
type Option func(*options)

// WithPath reads settings from path instead of DefaultPath.
func WithPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.path = path
		}
	}
}

// WithFS reads the settings file through fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithoutEnv ignores MINDSTORM_* environment overrides.
func WithoutEnv() Option {
	return func(o *options) {
		o.useEnv = false
	}
}

// Load builds the settings: defaults, overridden by the TOML file, then by
// MINDSTORM_* environment variables. A missing file is not an error. The
// result is validated.
func Load(opts ...Option) (*Config, error) {
	o := options{path: os.Getenv(EnvPrefix + "CONFIG"), fs: loader.DefaultFS(), useEnv: true}
	if o.path == "" {
		o.path = DefaultPath()
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	source := ""
	if o.path != "" {
		fileMap, err := loader.NewTOMLLoaderWithFS(o.fs, o.path).Load()
		if err != nil {
			return nil, err
		}
		if fileMap != nil {
			source = o.path
			merged = loader.DeepMerge(merged, fileMap)
		}
	}

	if o.useEnv {
		envMap, err := loader.NewEnvLoader(EnvPrefix).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, envMap)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, err
	}
	cfg.Source = source
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return m, nil
}

// fromMap decodes a merged map. Unknown keys are rejected.
func fromMap(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg := &Config{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: unknown settings:\n%s", ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, path, msg string, value any) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
		}
	}
	check(c.Layout.HGap >= 0, "layout.hGap", "must not be negative", c.Layout.HGap)
	check(c.Layout.VGap >= 0, "layout.vGap", "must not be negative", c.Layout.VGap)
	check(c.Layout.PaddingX >= 0, "layout.paddingX", "must not be negative", c.Layout.PaddingX)
	check(c.Layout.PaddingY >= 0, "layout.paddingY", "must not be negative", c.Layout.PaddingY)
	check(c.Editor.NewTopicName != "", "editor.newTopicName", "must not be empty", c.Editor.NewTopicName)
	check(c.Editor.MaxUndo >= 0, "editor.maxUndo", "must not be negative", c.Editor.MaxUndo)
	check(c.Watch.Debounce >= 0, "watch.debounce", "must not be negative", c.Watch.Debounce.Std())
	check(c.Script.Timeout >= 0, "script.timeout", "must not be negative", c.Script.Timeout.Std())
	check(!c.Metrics.Enabled || c.Metrics.Addr != "", "metrics.addr", "required when metrics are enabled", c.Metrics.Addr)
	return errors.Join(errs...)
}

// LayoutConfig returns the layout spacing and measurement settings.
func (c *Config) LayoutConfig() layout.Config {
	return layout.Config{
		HGap:    c.Layout.HGap,
		VGap:    c.Layout.VGap,
		Measure: layout.TextMeasurer{PaddingX: c.Layout.PaddingX, PaddingY: c.Layout.PaddingY},
	}
}

// NewLogger builds the configured logger. Close the returned closer when
// logging to a file.
func (c *Config) NewLogger() (*logging.Logger, func() error, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	if c.Logging.File == "" {
		return logging.New(cfg), func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	cfg.Output = f
	return logging.New(cfg), f.Close, nil
}

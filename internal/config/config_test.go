package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/logging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(WithPath(filepath.Join(t.TempDir(), "none.toml")), WithoutEnv())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
	if cfg.Layout != Default().Layout || cfg.Editor != Default().Editor {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[layout]
direction = "left"
hGap = 6

[editor]
newTopicName = "idea"

[logging]
level = "debug"

[watch]
debounce = "50ms"

[keymap]
"ctrl+n" = "add-child"
`)
	cfg, err := Load(WithPath(path), WithoutEnv())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q", cfg.Source)
	}
	if cfg.Layout.Direction != layout.Left || cfg.Layout.HGap != 6 || cfg.Layout.VGap != 1 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Editor.NewTopicName != "idea" || !cfg.Editor.AllowUndo {
		t.Errorf("Editor = %+v", cfg.Editor)
	}
	if cfg.Logging.Level != logging.LevelDebug {
		t.Errorf("Level = %v", cfg.Logging.Level)
	}
	if cfg.Watch.Debounce.Std() != 50*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce.Std())
	}
	if cfg.Keymap["ctrl+n"] != "add-child" {
		t.Errorf("Keymap = %v", cfg.Keymap)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[layout]\nhGap = 6\ndirection = \"left\"\n")
	t.Setenv("MINDSTORM_DIRECTION", "right")
	t.Setenv("MINDSTORM_LAYOUT_V_GAP", "3")
	t.Setenv("MINDSTORM_UNDO", "false")

	cfg, err := Load(WithPath(path))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.Direction != layout.Right || cfg.Layout.HGap != 6 || cfg.Layout.VGap != 3 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Editor.AllowUndo {
		t.Error("MINDSTORM_UNDO ignored")
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	path := writeConfig(t, "[editor]\nmaxUndo = 5\n")
	t.Setenv("MINDSTORM_CONFIG", path)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Editor.MaxUndo != 5 || cfg.Source != path {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		parse   bool
	}{
		{"syntax", "[layout\n", true},
		{"unknown key", "[layout]\nzoom = 2\n", false},
		{"bad direction", "[layout]\ndirection = \"up\"\n", false},
		{"negative gap", "[layout]\nhGap = -1\n", false},
		{"empty topic", "[editor]\nnewTopicName = \"\"\n", false},
		{"metrics without addr", "[metrics]\nenabled = true\naddr = \"\"\n", false},
		{"bad duration", "[watch]\ndebounce = \"soon\"\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(WithPath(writeConfig(t, tt.content)), WithoutEnv())
			if err == nil {
				t.Fatal("Load succeeded")
			}
			var perr *ParseError
			if tt.parse != errors.As(err, &perr) {
				t.Errorf("err = %v, parse error expected: %v", err, tt.parse)
			}
			if !tt.parse && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Layout.HGap = -1
	cfg.Editor.MaxUndo = -2
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, path := range []string{"layout.hGap", "editor.maxUndo"} {
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error %q does not mention %s", err, path)
		}
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Error("error is not a ValidationError")
	}
}

func TestLayoutConfig(t *testing.T) {
	cfg := Default()
	cfg.Layout.PaddingX = 0
	lc := cfg.LayoutConfig()
	if lc.HGap != 4 || lc.VGap != 1 {
		t.Errorf("LayoutConfig = %+v", lc)
	}
	if w, h := lc.Measure.Measure("abc"); w != 3 || h != 3 {
		t.Errorf("Measure = %d x %d, want 3 x 3", w, h)
	}
}

func TestNewLoggerToFile(t *testing.T) {
	cfg := Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "mindstorm.log")
	cfg.Logging.Level = logging.LevelInfo
	logger, closeLog, err := cfg.NewLogger()
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[INFO] mindstorm: hello") {
		t.Errorf("log file = %q", data)
	}
}

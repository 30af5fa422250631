package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/node"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// execute runs the command line with args and no configuration file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// writeSample writes Root{A{A1}, B} to dir/name.
func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	root := node.New("Root", node.AsRoot(), node.WithID("root"), node.WithChildren(
		node.New("A", node.WithID("a"), node.WithChildren(
			node.New("A1", node.WithID("a1")),
		)),
		node.New("B", node.WithID("b")),
	))
	path := filepath.Join(dir, name)
	if err := snapshot.Save(path, &snapshot.Data{NodeData: root, Direction: layout.Right}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func TestNewCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	if _, err := execute(t, "new", path, "--label", "Plans", "--direction", "left"); err != nil {
		t.Fatalf("new: %v", err)
	}
	data, err := snapshot.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data.NodeData.Label != "Plans" || !data.NodeData.Root {
		t.Errorf("root = %+v", data.NodeData)
	}
	if data.Direction != layout.Left {
		t.Errorf("Direction = %v, want left", data.Direction)
	}

	if _, err := execute(t, "new", path); err == nil {
		t.Error("new overwrote an existing file without --force")
	}
	if _, err := execute(t, "new", path, "--force"); err != nil {
		t.Errorf("new --force: %v", err)
	}
}

func TestNewRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.txt")
	_, err := execute(t, "new", path)
	if !errors.Is(err, snapshot.ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestPrintCommand(t *testing.T) {
	path := writeSample(t, t.TempDir(), "map.json")
	out, err := execute(t, "print", path)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	want := "Root\n  A\n    A1\n  B\n"
	if out != want {
		t.Errorf("print = %q, want %q", out, want)
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "map.json")

	out, err := execute(t, "export", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if want := "# Root\n\n## A\n\n### A1\n\n## B\n\n"; out != want {
		t.Errorf("markdown = %q, want %q", out, want)
	}

	yamlPath := filepath.Join(dir, "copy.yaml")
	if _, err := execute(t, "export", path, "-o", yamlPath); err != nil {
		t.Fatalf("export -o: %v", err)
	}
	data, err := snapshot.Load(yamlPath)
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}
	if node.Count(data.NodeData) != 4 || data.Direction != layout.Right {
		t.Errorf("yaml export = %d nodes, direction %v", node.Count(data.NodeData), data.Direction)
	}

	out, err = execute(t, "export", path, "--format", "json")
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	if !strings.Contains(out, `"nodeData"`) {
		t.Errorf("json export = %q", out)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag, out string
		want      exportFormat
		wantErr   bool
	}{
		{"", "", formatMarkdown, false},
		{"", "out.yml", formatYAML, false},
		{"", "out.json", formatJSON, false},
		{"", "out.md", formatMarkdown, false},
		{"json", "out.md", formatJSON, false},
		{"Markdown", "", formatMarkdown, false},
		{"pdf", "", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.flag, tt.out)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveFormat(%q, %q) error = %v", tt.flag, tt.out, err)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, want %q", tt.flag, tt.out, got, tt.want)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	path := writeSample(t, t.TempDir(), "map.json")
	out, err := execute(t, "layout", path)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("layout printed %d lines, want header and 4 boxes:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "# direction=right") {
		t.Errorf("header = %q", lines[0])
	}
	wantIDs := []string{"root", "a", "a1", "b"}
	for i, id := range wantIDs {
		fields := strings.Split(lines[i+1], "\t")
		if fields[0] != id {
			t.Errorf("line %d id = %q, want %q", i+1, fields[0], id)
		}
	}
	if !strings.HasSuffix(lines[1], "\troot\tRoot") {
		t.Errorf("root line = %q", lines[1])
	}

	out, err = execute(t, "layout", path, "--direction", "left")
	if err != nil {
		t.Fatalf("layout --direction: %v", err)
	}
	if !strings.Contains(out, "\tleft\tA\n") {
		t.Errorf("left layout did not place A on the left:\n%s", out)
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "map.json")
	script := filepath.Join(dir, "grow.lua")
	code := `local id = mm.add_child("b", "B1")
print(mm.node(id).label)
`
	if err := os.WriteFile(script, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "run", script, "--map", path, "--save", "--print")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "B1\n") || !strings.Contains(out, "### B1") {
		t.Errorf("output = %q", out)
	}
	data, err := snapshot.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if node.Count(data.NodeData) != 5 {
		t.Errorf("saved map has %d nodes, want 5", node.Count(data.NodeData))
	}
}

func TestRunCommandBlankMap(t *testing.T) {
	script := filepath.Join(t.TempDir(), "root.lua")
	if err := os.WriteFile(script, []byte(`print(mm.root().label)`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "run", script)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "Central Topic\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunCommandScriptError(t *testing.T) {
	script := filepath.Join(t.TempDir(), "bad.lua")
	if err := os.WriteFile(script, []byte(`mm.remove(mm.root().id)`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "run", script); err == nil {
		t.Error("run succeeded although the script raised an error")
	}
}

func TestGlobalFlagErrors(t *testing.T) {
	path := writeSample(t, t.TempDir(), "map.json")
	if _, err := execute(t, "print", path, "--log-level", "loud"); err == nil {
		t.Error("accepted an unknown log level")
	}
	if _, err := execute(t, "print", path, "--direction", "up"); err == nil {
		t.Error("accepted an unknown direction")
	}
}

func TestConfigFileApplies(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[layout]\ndirection = \"left\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "map.json")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "new", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("new: %v", err)
	}
	data, err := snapshot.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if data.Direction != layout.Left {
		t.Errorf("Direction = %v, want left from the config file", data.Direction)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "mindstorm dev") {
		t.Errorf("version = %q", out)
	}
}

func TestWatchCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "map.json")
	out := filepath.Join(dir, "map.md")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "none.toml"), "watch", path, "-o", out})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	waitFor := func(want string) bool {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if b, err := os.ReadFile(out); err == nil && strings.Contains(string(b), want) {
				return true
			}
			time.Sleep(20 * time.Millisecond)
		}
		return false
	}
	if !waitFor("# Root") {
		t.Fatal("initial export not written")
	}

	// Keep saving until the watcher is up and picks a change.
	data, err := snapshot.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	data.NodeData.Label = "Changed"
	deadline := time.Now().Add(5 * time.Second)
	changed := false
	for !changed && time.Now().Before(deadline) {
		if err := snapshot.Save(path, data); err != nil {
			t.Fatal(err)
		}
		changed = waitForShort(out, "# Changed")
	}
	if !changed {
		t.Fatal("export not refreshed after the map changed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func waitForShort(path, want string) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if b, err := os.ReadFile(path); err == nil && strings.Contains(string(b), want) {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

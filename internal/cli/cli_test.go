package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/masonry/pkg/board"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg, PNG ,json", []string{"svg", "png", "json"}},
		{"pdf,,", []string{"pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInputBase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"board.json", "board"},
		{"boards/gallery.toml", "boards/gallery"},
		{"gallery.layout.json", "gallery"},
		{"https://example.com/boards/photos.json", "photos"},
		{"https://example.com/", "board"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := inputBase(tt.in); got != tt.want {
				t.Errorf("inputBase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "board.json", "board"},
		{"out.svg", "board.json", "out"},
		{"out.PNG", "board.json", "out"},
		{"out.txt", "board.json", "out.txt"},
		{"renders/wall", "board.json", "renders/wall"},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestLayoutFlagsSettings(t *testing.T) {
	f := layoutFlags{columnWidth: 180, stretch: "fill", rowSpacing: 8}
	want := board.Settings{DesiredColumnWidth: 180, Stretch: "fill", RowSpacing: 8}
	if got := f.settings(); got != want {
		t.Errorf("settings() = %+v, want %+v", got, want)
	}
}

func TestStatsLine(t *testing.T) {
	line := statsLine(12, 3, 640, true)
	for _, want := range []string{"12 tiles", "3 columns", "640px tall", iconCached} {
		if !strings.Contains(line, want) {
			t.Errorf("statsLine missing %q: %s", want, line)
		}
	}
	if line := statsLine(1, 1, 0, false); !strings.Contains(line, iconFresh) {
		t.Errorf("statsLine missing %q: %s", iconFresh, line)
	}
}

func TestColumnsTable(t *testing.T) {
	l := board.Layout{
		Columns: 2,
		Placements: []board.Placement{
			{ID: "a", Index: 0, Column: 0, Y: 0, Height: 100},
			{ID: "b", Index: 1, Column: 1, Y: 0, Height: 250},
			{ID: "c", Index: 2, Column: 0, Y: 100, Height: 120},
		},
	}
	out := columnsTable(l)
	for _, want := range []string{"Column", "Tiles", "220", "250"} {
		if !strings.Contains(out, want) {
			t.Errorf("columns table missing %q:\n%s", want, out)
		}
	}
}

// runCLI executes the root command with args and returns what it wrote to
// the command's output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "path", "--config", path)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}

	if _, err := runCLI(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := runCLI(t, "config", "init", "--config", path); err == nil {
		t.Error("second init without --force succeeded")
	}
	if _, err := runCLI(t, "config", "init", "--force", "--config", path); err != nil {
		t.Errorf("init --force: %v", err)
	}

	out, err = runCLI(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, section := range []string{"[layout]", "[cache]", "[server]"} {
		if !strings.Contains(out, section) {
			t.Errorf("config show missing %s:\n%s", section, out)
		}
	}
}

func TestGenerateAndLayoutCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	boardPath := filepath.Join(dir, "board.json")
	layoutPath := filepath.Join(dir, "wall.layout.json")

	if _, err := runCLI(t, "generate", "-o", boardPath, "-n", "25", "--seed", "7", "--config", cfgPath); err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := board.ReadBoardFile(boardPath)
	if err != nil {
		t.Fatalf("read generated board: %v", err)
	}
	if len(b.Tiles) != 25 {
		t.Fatalf("generated %d tiles, want 25", len(b.Tiles))
	}

	_, err = runCLI(t, "layout", boardPath, "-o", layoutPath, "--no-cache",
		"--column-width", "100", "--width", "432", "--config", cfgPath)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := board.ReadLayoutFile(layoutPath)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if l.Columns != 4 {
		t.Errorf("columns = %d, want 4", l.Columns)
	}
	if len(l.Placements) != 25 {
		t.Errorf("placements = %d, want 25", len(l.Placements))
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	if _, err := runCLI(t, "layout", filepath.Join(dir, "missing.json"), "--no-cache", "--config", cfgPath); err == nil {
		t.Error("layout of a missing file succeeded")
	}
	if _, err := runCLI(t, "layout", "--config", cfgPath); err == nil {
		t.Error("layout without an argument succeeded")
	}
}

package sink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/masonry/pkg/board"
)

func sampleLayout() board.Layout {
	return board.Layout{
		Board: "sample", Width: 300, Height: 100,
		ColumnWidth: 100, Columns: 3,
		Placements: []board.Placement{
			{ID: "a", Index: 0, Column: 0, X: 0, Y: 0, Width: 100, Height: 40, Title: "A & B"},
			{ID: "b", Index: 1, Column: 1, X: 100, Y: 0, Width: 100, Height: 100, Color: "#ff0000", Caption: "Beta"},
			{ID: "c", Index: 2, Column: 2, X: 200, Y: 0, Width: 100, Height: 60, URL: "https://example.com/?a=1&b=2"},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(), Options{Labels: true, Guides: true}))

	checks := []struct {
		name string
		want string
	}{
		{"viewBox includes margins", `viewBox="0 0 332.0 132.0"`},
		{"tile group", `id="tile-a"`},
		{"explicit color", `fill="#ff0000"`},
		{"theme fill", `fill="#e8eef7"`},
		{"escaped label", "A &amp; B"},
		{"caption", ">Beta</text>"},
		{"link", `href="https://example.com/?a=1&amp;b=2"`},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if !strings.Contains(svg, c.want) {
				t.Errorf("SVG missing %s", c.want)
			}
		})
	}
	if n := strings.Count(svg, `class="guide"`); n != 3 {
		t.Errorf("%d column guides, want 3", n)
	}
	if n := strings.Count(svg, `class="tile"`); n != 3 {
		t.Errorf("%d tiles, want 3", n)
	}
}

func TestRenderSVGWithoutLabels(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(), Options{Theme: "dark"}))
	if strings.Contains(svg, "A &amp; B") {
		t.Error("labels rendered although disabled")
	}
	if strings.Contains(svg, `class="guide"`) {
		t.Error("guides rendered although disabled")
	}
	if !strings.Contains(svg, `fill="#16161a"`) {
		t.Error("dark background missing")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{Scale: 1})
	for _, want := range []string{
		`"tile-a" [pos="66.00,96.00!", width=1.3889, height=0.5556`,
		`"_corner" [shape=point, style=invis, width=0, height=0, pos="332.00,132.00!"]`,
		"dpi=72",
		`label=""`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}

	labeled := ToDOT(sampleLayout(), Options{Labels: true})
	if !strings.Contains(labeled, `label="A & B"`) || !strings.Contains(labeled, "dpi=144") {
		t.Errorf("labeled DOT:\n%s", labeled)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	l := sampleLayout()

	data, err := Render(ctx, l, "JSON", Options{})
	if err != nil {
		t.Fatalf("Render json: %v", err)
	}
	back, err := board.UnmarshalLayout(data)
	if err != nil || len(back.Placements) != 3 {
		t.Errorf("json round trip: %v, %d placements", err, len(back.Placements))
	}

	if _, err := Render(ctx, l, "gif", Options{}); err == nil {
		t.Error("unknown format should fail")
	}
	if _, err := Render(ctx, l, FormatSVG, Options{Theme: "neon"}); err == nil {
		t.Error("unknown theme should fail")
	}
}

func TestContentWidth(t *testing.T) {
	tests := []struct {
		name string
		l    board.Layout
		want float64
	}{
		{"layout width", board.Layout{Width: 500, Columns: 2, ColumnWidth: 100}, 500},
		{"unset width", board.Layout{Columns: 2, ColumnWidth: 100, ColumnSpacing: 10}, 210},
		{"empty", board.Layout{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentWidth(tt.l); got != tt.want {
				t.Errorf("contentWidth = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTheme(t *testing.T) {
	if th, err := LookupTheme(""); err != nil || th.Name != DefaultTheme {
		t.Errorf("LookupTheme(\"\") = %q, %v", th.Name, err)
	}
	if th, err := LookupTheme("DARK"); err != nil || th.Name != "dark" {
		t.Errorf("LookupTheme(DARK) = %q, %v", th.Name, err)
	}
	th, _ := LookupTheme("light")
	if th.fill(6, "") != th.Fills[1] || th.fill(0, "#000") != "#000" {
		t.Error("fill should cycle by index and prefer the tile color")
	}
}

func TestTruncateLabel(t *testing.T) {
	if got := truncateLabel("short", 200, 10); got != "short" {
		t.Errorf("truncateLabel = %q", got)
	}
	got := truncateLabel("a very long tile title indeed", 50, 10)
	if !strings.HasSuffix(got, "..") || len(got) >= len("a very long tile title indeed") {
		t.Errorf("truncateLabel = %q", got)
	}
}

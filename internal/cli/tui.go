package cli

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// Viewer styles
var (
	viewerTileStyle   = lipgloss.NewStyle().Foreground(colorGray)
	viewerStatusStyle = lipgloss.NewStyle().Foreground(colorDim)
	viewerErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	// cellAspect is the height of a terminal cell in units of its width.
	cellAspect = 2.0

	// chromeRows are the rows above and below the tile area.
	chromeRows = 3

	columnWidthStep = 1.25
	minColumnWidth  = 20.0
)

// =============================================================================
// Key bindings
// =============================================================================

type viewerKeys struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Wider    key.Binding
	Narrower key.Binding
	Insert   key.Binding
	Remove   key.Binding
	Stats    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k viewerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Wider, k.Narrower, k.Help, k.Quit}
}

func (k viewerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Wider, k.Narrower, k.Insert, k.Remove},
		{k.Stats, k.Help, k.Quit},
	}
}

var defaultViewerKeys = viewerKeys{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup/b", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", " ", "f"), key.WithHelp("pgdn/f", "page down")),
	Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Wider:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "wider columns")),
	Narrower: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrower columns")),
	Insert:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert tile")),
	Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove tile")),
	Stats:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "pass stats")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// =============================================================================
// viewerModel - terminal viewer over a virtual.Host
// =============================================================================

// viewerModel draws the tiles the host realized as boxes on a character
// grid. The host works in layout units; contentWidth units span the
// terminal width and a cell is cellAspect times as tall as it is wide.
type viewerModel struct {
	host         *virtual.Host
	name         string
	contentWidth float64

	keys      viewerKeys
	help      help.Model
	cols      int
	rows      int
	last      virtual.PassResult
	showStats bool
	inserted  int
	err       error
}

func newViewerModel(h *virtual.Host, name string, contentWidth float64) viewerModel {
	return viewerModel{
		host:         h,
		name:         name,
		contentWidth: contentWidth,
		keys:         defaultViewerKeys,
		help:         help.New(),
	}
}

func (m viewerModel) Init() tea.Cmd { return nil }

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.cols = max(1, msg.Width)
		m.rows = max(1, msg.Height-chromeRows)
		m.err = m.host.Resize(m.contentWidth, float64(m.rows)*m.cellHeight())
		m.pass()

	case tea.KeyMsg:
		m.err = nil
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.host.ScrollBy(-m.cellHeight() * 2)
		case key.Matches(msg, m.keys.Down):
			m.host.ScrollBy(m.cellHeight() * 2)
		case key.Matches(msg, m.keys.PageUp):
			m.host.ScrollBy(-m.host.Viewport().Height)
		case key.Matches(msg, m.keys.PageDown):
			m.host.ScrollBy(m.host.Viewport().Height)
		case key.Matches(msg, m.keys.Top):
			m.host.Scroll(0)
		case key.Matches(msg, m.keys.Bottom):
			m.host.Scroll(m.host.Desired().Height)
		case key.Matches(msg, m.keys.Wider):
			m.err = m.scaleColumns(columnWidthStep)
		case key.Matches(msg, m.keys.Narrower):
			m.err = m.scaleColumns(1 / columnWidthStep)
		case key.Matches(msg, m.keys.Insert):
			m.err = m.insertTile()
		case key.Matches(msg, m.keys.Remove):
			m.err = m.removeTile()
		case key.Matches(msg, m.keys.Stats):
			m.showStats = !m.showStats
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		default:
			return m, nil
		}
		if m.cols > 0 {
			m.pass()
		}
	}
	return m, nil
}

func (m *viewerModel) pass() {
	m.last = m.host.Pass(context.Background())
}

func (m viewerModel) cellWidth() float64  { return m.contentWidth / float64(max(1, m.cols)) }
func (m viewerModel) cellHeight() float64 { return m.cellWidth() * cellAspect }

func (m *viewerModel) scaleColumns(factor float64) error {
	o := m.host.Options()
	if math.IsNaN(o.DesiredColumnWidth) {
		return fmt.Errorf("full-width layout has no column width to change")
	}
	o.DesiredColumnWidth = math.Max(minColumnWidth, math.Min(m.contentWidth, o.DesiredColumnWidth*factor))
	return m.host.SetOptions(o)
}

// insertTile adds a tile in front of the first visible one.
func (m *viewerModel) insertTile() error {
	at := 0
	if vis := m.visible(); len(vis) > 0 {
		at = vis[0].Index
	}
	m.inserted++
	t := board.Tile{
		ID:    fmt.Sprintf("inserted-%d", m.inserted),
		Title: fmt.Sprintf("New %d", m.inserted),
		// Cycle through a few heights so inserts visibly reshuffle columns.
		Height: 80 + float64(m.inserted%4)*40,
	}
	return m.host.Insert(at, t)
}

// removeTile drops the first visible tile.
func (m *viewerModel) removeTile() error {
	vis := m.visible()
	if len(vis) == 0 {
		return fmt.Errorf("no visible tile to remove")
	}
	return m.host.Remove(vis[0].Index, 1)
}

// visible returns the arranged tiles that intersect the viewport, by index.
func (m viewerModel) visible() []virtual.Arranged {
	vp := m.host.Viewport()
	var out []virtual.Arranged
	for _, a := range m.last.Arranged {
		if a.Bounds.Y+a.Bounds.Height > vp.Offset && a.Bounds.Y < vp.Offset+vp.Height {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (m viewerModel) View() string {
	if m.cols == 0 {
		return "loading..."
	}

	var b strings.Builder
	vp := m.host.Viewport()
	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString(viewerStatusStyle.Render(fmt.Sprintf("  %d tiles · %d columns · %.0f/%.0f",
		m.host.Len(), m.last.Geometry.ColumnCount, vp.Offset, m.last.Desired.Height)))
	b.WriteString("\n")

	b.WriteString(viewerTileStyle.Render(m.grid()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(viewerErrorStyle.Render(m.err.Error()))
	case m.showStats:
		s := m.last.Stats
		b.WriteString(viewerStatusStyle.Render(fmt.Sprintf(
			"visited %d · measured %d · realized %d · recycled %d · pool %d live/%d free · %s",
			s.Visited, s.Measured, s.Realized, s.Recycled,
			m.last.Pool.Live, m.last.Pool.Free, m.last.Duration.Round(time.Microsecond))))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// grid draws every tile arranged by the last pass, clipped to the viewport.
func (m viewerModel) grid() string {
	cells := make([][]rune, m.rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", m.cols))
	}
	set := func(r, c int, ch rune) {
		if r >= 0 && r < m.rows && c >= 0 && c < m.cols {
			cells[r][c] = ch
		}
	}

	cw, ch := m.cellWidth(), m.cellHeight()
	offset := m.host.Viewport().Offset
	for _, a := range m.last.Arranged {
		x0 := int(math.Round(a.Bounds.X / cw))
		x1 := max(x0+1, int(math.Round((a.Bounds.X+a.Bounds.Width)/cw))-1)
		y0 := int(math.Round((a.Bounds.Y - offset) / ch))
		y1 := max(y0+1, int(math.Round((a.Bounds.Y+a.Bounds.Height-offset)/ch))-1)
		if y1 < 0 || y0 >= m.rows {
			continue
		}

		for c := x0 + 1; c < x1; c++ {
			set(y0, c, '─')
			set(y1, c, '─')
		}
		for r := y0 + 1; r < y1; r++ {
			set(r, x0, '│')
			set(r, x1, '│')
		}
		set(y0, x0, '╭')
		set(y0, x1, '╮')
		set(y1, x0, '╰')
		set(y1, x1, '╯')

		if y1-y0 < 2 {
			continue
		}
		label := []rune(m.host.Tile(a.Index).Label())
		if room := x1 - x0 - 1; len(label) > room {
			label = label[:max(0, room)]
		}
		for i, r := range label {
			set(y0+1, x0+1+i, r)
		}
	}

	lines := make([]string, m.rows)
	for i, row := range cells {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

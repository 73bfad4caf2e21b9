package draw

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Cell is what a board cell shows.
type Cell int

const (
	CellEmpty Cell = iota
	CellMole
	CellHit  // Just whacked
	CellMiss // Just escaped
)

// Cell art, one line each.
const (
	holeArt = "_____"
	moleArt = "(o.o)"
	hitArt  = "\\(x)/"
	missArt = " ~~~ "
)

// Cell dimensions, excluding the border.
const (
	CellWidth  = 9
	CellHeight = 3
)

// Theme holds the lipgloss styles for one output. Each SSH session gets its
// own renderer so color detection never leaks between terminals.
type Theme struct {
	r *lipgloss.Renderer

	cell  lipgloss.Style
	mole  lipgloss.Style
	hit   lipgloss.Style
	miss  lipgloss.Style
	key   lipgloss.Style
	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Dim   lipgloss.Style
	Alert lipgloss.Style
}

// NewTheme creates a theme rendering for w with the given color profile.
// The background is assumed dark, so no terminal query is made.
func NewTheme(w io.Writer, profile termenv.Profile) *Theme {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(true)

	cell := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(CellWidth).
		Height(CellHeight).
		Align(lipgloss.Center)

	return &Theme{
		r:     r,
		cell:  cell,
		mole:  cell.BorderForeground(lipgloss.Color("214")).Foreground(lipgloss.Color("214")).Bold(true),
		hit:   cell.BorderForeground(lipgloss.Color("42")).Foreground(lipgloss.Color("42")),
		miss:  cell.BorderForeground(lipgloss.Color("196")).Foreground(lipgloss.Color("196")),
		key:   r.NewStyle().Foreground(lipgloss.Color("245")),
		Title: r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Label: r.NewStyle().Foreground(lipgloss.Color("245")),
		Value: r.NewStyle().Foreground(lipgloss.Color("231")).Bold(true),
		Dim:   r.NewStyle().Foreground(lipgloss.Color("240")),
		Alert: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// BoardColumns returns the columns of the most square layout for n cells.
func BoardColumns(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Board renders cells in rows of columns. keys labels each cell.
func (t *Theme) Board(cells []Cell, columns int, keys func(i int) byte) string {
	if columns < 1 {
		columns = 1
	}

	var rows []string
	for start := 0; start < len(cells); start += columns {
		end := min(start+columns, len(cells))
		row := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, t.renderCell(cells[i], keys(i)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (t *Theme) renderCell(c Cell, key byte) string {
	label := t.key.Render(string(key))

	switch c {
	case CellMole:
		return t.mole.Render(label + "\n" + moleArt)
	case CellHit:
		return t.hit.Render(label + "\n" + hitArt)
	case CellMiss:
		return t.miss.Render(label + "\n" + missArt)
	default:
		return t.cell.Render(label + "\n" + t.Dim.Render(holeArt))
	}
}

// Stat renders "label value" for the HUD.
func (t *Theme) Stat(label, value string) string {
	return t.Label.Render(label+" ") + t.Value.Render(value)
}

// Lives renders the remaining misses as hearts, or as a count on long games.
func (t *Theme) Lives(misses, maxMisses int) string {
	if maxMisses > 10 {
		return t.Value.Render(fmt.Sprintf("%d/%d", misses, maxMisses))
	}
	left := max(maxMisses-misses, 0)
	return t.Alert.Render(strings.Repeat("♥", left)) + t.Dim.Render(strings.Repeat("♡", maxMisses-left))
}

// BlockWidth returns the display width of the widest line in block.
func BlockWidth(block string) int {
	return lipgloss.Width(block)
}

// BlockHeight returns the number of lines in block.
func BlockHeight(block string) int {
	return lipgloss.Height(block)
}

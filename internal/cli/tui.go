package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pipgrid/pkg/board"
)

var (
	boardCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Reverse(true)
	boardSourceStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	boardDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// transferSteps are the amounts + and - cycle through.
var transferSteps = []int{1, 5, 10, 25, 100}

// =============================================================================
// BoardModel - Interactive distribution editor
// =============================================================================

// BoardModel is the bubbletea model for editing a board. Pips move between
// cells by marking a source cell and transferring into the cursor cell, or
// by shifting the cursor cell's pips a whole cell at a time.
type BoardModel struct {
	Board  *board.Board
	Cursor board.Bucket
	Source *board.Bucket
	Step   int

	// Message is the status line shown under the grid.
	Message string

	// Done is set when the user quits; Token is the board's final token.
	Done  bool
	Token string
}

// NewBoardModel creates a model over b with the cursor on the first cell.
func NewBoardModel(b *board.Board) BoardModel {
	m := BoardModel{Board: b, Step: 1}
	m.Token = m.token()
	return m
}

func (m BoardModel) Init() tea.Cmd {
	return nil
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch s := key.String(); s {
	case "q", "ctrl+c":
		m.Done = true
		return m, tea.Quit
	case "up", "k":
		m.Cursor.Row = max(m.Cursor.Row-1, 0)
	case "down", "j":
		m.Cursor.Row = min(m.Cursor.Row+1, board.Rows-1)
	case "left", "h":
		m.Cursor.Col = max(m.Cursor.Col-1, 0)
	case "right", "l":
		m.Cursor.Col = min(m.Cursor.Col+1, board.Cols-1)
	case "enter", " ":
		m = m.mark()
	case "esc":
		m.Source = nil
		m.Message = ""
	case "+", "=":
		m.Step = stepAfter(m.Step)
	case "-", "_":
		m.Step = stepBefore(m.Step)
	case "K", "shift+up":
		m = m.shift(-1, 0)
	case "J", "shift+down":
		m = m.shift(1, 0)
	case "H", "shift+left":
		m = m.shift(0, -1)
	case "L", "shift+right":
		m = m.shift(0, 1)
	case "p":
		m = m.pack()
	case "u":
		if m.Board.Undo() {
			m.Message = "undone"
		} else {
			m.Message = "nothing to undo"
		}
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			m.Step = int(s[0] - '0')
		}
	}
	m.Token = m.token()
	return m, nil
}

// mark sets the source cell, or transfers from it into the cursor cell.
func (m BoardModel) mark() BoardModel {
	if m.Source == nil {
		src := m.Cursor
		m.Source = &src
		m.Message = "moving from " + src.String()
		return m
	}
	if *m.Source == m.Cursor {
		m.Source = nil
		m.Message = ""
		return m
	}

	moved, err := m.Board.Transfer(*m.Source, m.Cursor, m.Step)
	switch {
	case err != nil:
		m.Message = err.Error()
	case moved == 0:
		m.Message = "nothing moved"
	case moved < m.Step:
		m.Message = fmt.Sprintf("moved %d of %d to %s", moved, m.Step, m.Cursor)
	default:
		m.Message = fmt.Sprintf("moved %d to %s", moved, m.Cursor)
	}
	return m
}

// shift moves every pip in the cursor cell by one cell and lets the cursor
// follow. Pips keep their offsets, so a shift into a cell that already
// holds pips is usually blocked.
func (m BoardModel) shift(dRow, dCol int) BoardModel {
	to := board.Bucket{Row: m.Cursor.Row + dRow, Col: m.Cursor.Col + dCol}
	if !to.Valid() {
		m.Message = "edge of the grid"
		return m
	}
	geom := m.Board.Geometry()
	n := m.Board.SelectBox(geom.Cell(m.Cursor), false)
	defer m.Board.ClearSelection()
	switch {
	case n == 0:
		m.Message = "nothing to shift"
	case !m.Board.Move(float64(dCol)*geom.CellWidth, float64(dRow)*geom.CellHeight):
		m.Message = "blocked by " + to.String()
	default:
		m.Message = fmt.Sprintf("shifted %d to %s", n, to)
		m.Cursor = to
	}
	return m
}

// pack snaps the cursor cell's pips onto the free sites nearest their
// centroid.
func (m BoardModel) pack() BoardModel {
	if m.Board.SelectBox(m.Board.Geometry().Cell(m.Cursor), false) == 0 {
		m.Message = "nothing to pack"
		return m
	}
	n := m.Board.Pack()
	m.Board.ClearSelection()
	m.Message = fmt.Sprintf("packed %d in %s", n, m.Cursor)
	return m
}

func (m BoardModel) token() string {
	tok, err := m.Board.Token()
	if err != nil {
		return ""
	}
	return tok
}

func (m BoardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("pipgrid board"))
	b.WriteString("\n")
	b.WriteString(boardDimStyle.Render("←↑↓→ move  ⏎ mark/transfer  HJKL shift  p pack  +/- step  u undo  esc clear  q quit"))
	b.WriteString("\n\n")

	tally := m.Board.Tally()
	t := gridTable(tally.Grid, func(bk board.Bucket) (lipgloss.Style, bool) {
		switch {
		case bk == m.Cursor:
			return boardCursorStyle, true
		case m.Source != nil && bk == *m.Source:
			return boardSourceStyle, true
		}
		return lipgloss.Style{}, false
	})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  token %s   step %s", StyleHighlight.Render(m.Token), StyleNumber.Render(fmt.Sprint(m.Step))))
	if tally.Outside > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("   %d outside the grid", tally.Outside)))
	}
	b.WriteString("\n")
	if m.Message != "" {
		b.WriteString("  " + boardDimStyle.Render(m.Message) + "\n")
	}
	return b.String()
}

func stepAfter(n int) int {
	for _, s := range transferSteps {
		if s > n {
			return s
		}
	}
	return transferSteps[len(transferSteps)-1]
}

func stepBefore(n int) int {
	for i := len(transferSteps) - 1; i >= 0; i-- {
		if transferSteps[i] < n {
			return transferSteps[i]
		}
	}
	return transferSteps[0]
}

package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pipgrid/pkg/board"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableLabelStyle  = lipgloss.NewStyle().Foreground(colorGray)
	tableTotalStyle  = lipgloss.NewStyle().Foreground(colorDim)
	tableCellStyle   = lipgloss.NewStyle().Foreground(colorWhite).Align(lipgloss.Right)
	tableEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim).Align(lipgloss.Right)
)

// cellStyler overrides the style of a grid cell. Returning false keeps the
// default style.
type cellStyler func(b board.Bucket) (lipgloss.Style, bool)

// gridTable lays grid out with impact columns, likelihood rows, and totals
// along the bottom and right edges.
func gridTable(grid board.Grid, style cellStyler) *table.Table {
	headers := make([]string, 0, board.Cols+2)
	headers = append(headers, "")
	headers = append(headers, board.ColLabels[:]...)
	headers = append(headers, "total")

	rowTotals, colTotals := grid.RowTotals(), grid.ColTotals()
	rows := make([][]string, 0, board.Rows+1)
	for r := 0; r < board.Rows; r++ {
		row := []string{board.RowLabels[r]}
		for c := 0; c < board.Cols; c++ {
			row = append(row, strconv.Itoa(grid[r][c]))
		}
		rows = append(rows, append(row, strconv.Itoa(rowTotals[r])))
	}
	totals := []string{"total"}
	for c := 0; c < board.Cols; c++ {
		totals = append(totals, strconv.Itoa(colTotals[c]))
	}
	rows = append(rows, append(totals, strconv.Itoa(grid.Total())))

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tableLabelStyle
			case row == board.Rows || col == board.Cols+1:
				return tableTotalStyle.Align(lipgloss.Right)
			}
			b := board.Bucket{Row: row, Col: col - 1}
			if style != nil {
				if s, ok := style(b); ok {
					return s.Align(lipgloss.Right)
				}
			}
			if grid[b.Row][b.Col] == 0 {
				return tableEmptyStyle
			}
			return tableCellStyle
		})
}

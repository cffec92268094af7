package viz

import (
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/mat"
)

// zeroCell is the magnitude below which a cell renders as zero.
const zeroCell = 1e-12

// RenderMatrix renders m as a table with row labels and column headers.
// Missing labels default to the index.
func RenderMatrix(m mat.Matrix, rowLabels, colLabels []string, precision int) string {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return Subtle.Render("(empty)")
	}

	headers := make([]string, c+1)
	for j := 0; j < c; j++ {
		headers[j+1] = label(colLabels, j)
	}
	rows := make([][]string, r)
	for i := 0; i < r; i++ {
		row := make([]string, c+1)
		row[0] = label(rowLabels, i)
		for j := 0; j < c; j++ {
			row[j+1] = FormatValue(m.At(i, j), precision)
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
			if row == table.HeaderRow || col == 0 {
				return base.Inherit(MetricLabel)
			}
			v := m.At(row, col-1)
			switch {
			case math.Abs(v) <= zeroCell:
				return base.Inherit(CellZero)
			case v > 0:
				return base.Inherit(CellPositive)
			default:
				return base.Inherit(CellNegative)
			}
		})
	return t.Render()
}

// FormatValue prints v with the given number of decimals, collapsing
// negligible values to zero.
func FormatValue(v float64, precision int) string {
	if math.Abs(v) <= zeroCell {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return strconv.Itoa(i)
}

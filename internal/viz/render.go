package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/isingsim/internal/lattice"
)

const (
	upGlyph   = "██"
	downGlyph = "░░"
)

// RenderLattice draws each spin as two coloured characters. Lattices wider
// than maxCells are reduced by majority vote over square blocks (ties draw
// as up); maxCells <= 0 disables the reduction.
func RenderLattice(lat *lattice.Lattice, theme Theme, maxCells int) string {
	cells := downsample(lat, maxCells)
	up := lipgloss.NewStyle().Foreground(theme.Up)
	down := lipgloss.NewStyle().Foreground(theme.Down)

	var b strings.Builder
	for _, row := range cells {
		// consecutive equal cells share one styled run
		for j := 0; j < len(row); {
			k := j
			for k < len(row) && row[k] == row[j] {
				k++
			}
			if row[j] {
				b.WriteString(up.Render(strings.Repeat(upGlyph, k-j)))
			} else {
				b.WriteString(down.Render(strings.Repeat(downGlyph, k-j)))
			}
			j = k
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func downsample(lat *lattice.Lattice, maxCells int) [][]bool {
	n := lat.Size()
	f := 1
	if maxCells > 0 && n > maxCells {
		f = (n + maxCells - 1) / maxCells
	}
	m := (n + f - 1) / f

	cells := make([][]bool, m)
	for bi := range cells {
		cells[bi] = make([]bool, m)
		for bj := range cells[bi] {
			sum := 0
			for i := bi * f; i < min((bi+1)*f, n); i++ {
				for j := bj * f; j < min((bj+1)*f, n); j++ {
					sum += int(lat.At(i, j))
				}
			}
			cells[bi][bj] = sum >= 0
		}
	}
	return cells
}

// EnergyPlot charts series with asciigraph. Series longer than four points
// per column are thinned by stride, always keeping the last value.
func EnergyPlot(series []float64, width, height int, caption string) string {
	if len(series) == 0 {
		return ""
	}

	data := series
	if width > 0 && len(series) > 4*width {
		stride := (len(series) + 4*width - 1) / (4 * width)
		data = make([]float64, 0, len(series)/stride+1)
		for i := 0; i < len(series); i += stride {
			data = append(data, series[i])
		}
		if (len(series)-1)%stride != 0 {
			data = append(data, series[len(series)-1])
		}
	}

	opts := []asciigraph.Option{asciigraph.Height(height)}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	return asciigraph.Plot(data, opts...)
}

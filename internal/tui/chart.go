package tui

import (
	"strings"

	"cross-market-pulse/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var chartStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

// renderChart draws a price series as a column chart of the given size.
// Points are bucketed down to the chart width, each bucket averaged.
func renderChart(series []domain.CoinPrice, width, height int) string {
	if len(series) == 0 {
		return helpStyle.Render("no price data in range")
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	cols := bucket(series, width)

	min, max := cols[0], cols[0]
	for _, v := range cols {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span == 0 {
		span = 1
	}

	levels := make([]int, len(cols))
	for i, v := range cols {
		levels[i] = 1 + int(float64(height-1)*(v-min)/span)
	}

	var b strings.Builder
	for y := height; y >= 1; y-- {
		for _, lvl := range levels {
			if lvl >= y {
				b.WriteString("█")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return chartStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func bucket(series []domain.CoinPrice, width int) []float64 {
	if len(series) <= width {
		out := make([]float64, len(series))
		for i, p := range series {
			out[i] = p.PriceUSD
		}
		return out
	}

	out := make([]float64, width)
	per := float64(len(series)) / float64(width)
	for i := 0; i < width; i++ {
		lo := int(float64(i) * per)
		hi := int(float64(i+1) * per)
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(series) {
			hi = len(series)
		}
		var sum float64
		for _, p := range series[lo:hi] {
			sum += p.PriceUSD
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

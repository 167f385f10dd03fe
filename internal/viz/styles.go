package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Bob colors match the trails in the rendered frames.
const (
	bob1Color = lipgloss.Color("#00ffff")
	bob2Color = lipgloss.Color("#ff00ff")
)

// Drift bands for the energy sparkline, as relative deviation from the
// initial energy.
const (
	driftQuiet = 1e-6
	driftLoud  = 1e-3
)

var (
	Bob1Style = lipgloss.NewStyle().Foreground(bob1Color)
	Bob2Style = lipgloss.NewStyle().Foreground(bob2Color)

	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(1, 2)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
)

// title splits s between the two bob colors.
func title(s string) string {
	r := []rune(s)
	half := (len(r) + 1) / 2
	return Bob1Style.Bold(true).Render(string(r[:half])) + Bob2Style.Bold(true).Render(string(r[half:]))
}

// swing is a rod glyph rocking back and forth, one step per tick.
func swing(frame int) string {
	glyphs := []string{"│", "╱", "│", "╲"}
	return glyphs[frame%len(glyphs)]
}

// rule is a horizontal line anchored by the two bob colors.
func rule(width int) string {
	if width < 3 {
		return strings.Repeat("─", max(width, 0))
	}
	return Bob1Style.Render("●") + hintStyle.Render(strings.Repeat("─", width-2)) + Bob2Style.Render("●")
}

// ProgressBar renders the share of frames written in the first bob's
// color.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = min(max(filled, 0), width)
	return Bob1Style.Render(strings.Repeat("█", filled)) + hintStyle.Render(strings.Repeat("░", width-filled))
}

var sparkRunes = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// DriftSparkline plots how far an energy series strays from its first
// value. Samples are bucketed to width columns keeping the largest
// deviation of each bucket, bar heights are scaled to the worst bucket
// and colors follow the absolute drift bands.
func DriftSparkline(energy []float64, width int) string {
	if len(energy) == 0 || width <= 0 {
		return hintStyle.Render(strings.Repeat("─", max(width, 0)))
	}
	e0 := energy[0]
	scale := math.Abs(e0)
	if scale == 0 {
		scale = 1
	}

	cols := min(width, len(energy))
	devs := make([]float64, cols)
	worst := 0.0
	for i, e := range energy {
		c := i * cols / len(energy)
		devs[c] = math.Max(devs[c], math.Abs(e-e0)/scale)
		worst = math.Max(worst, devs[c])
	}

	var b strings.Builder
	for _, d := range devs {
		idx := 0
		if worst > 0 {
			idx = int(d / worst * float64(len(sparkRunes)-1))
		}
		style := okStyle
		switch {
		case d >= driftLoud:
			style = failStyle
		case d >= driftQuiet:
			style = warnStyle
		}
		b.WriteString(style.Render(string(sparkRunes[idx])))
	}
	return b.String()
}

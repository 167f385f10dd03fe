package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/elastipend/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortrait projects every sample of sol onto components xIdx, yIdx.
func PhasePortrait(sol *dynamo.Solution, xIdx, yIdx int) (*PhasePortrait2D, error) {
	if err := checkIndices(sol, xIdx, yIdx); err != nil {
		return nil, err
	}
	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, len(sol.States)),
	}
	for i, x := range sol.States {
		portrait.Points[i] = Point{X: x[xIdx], Y: x[yIdx]}
	}
	return portrait, nil
}

func checkIndices(sol *dynamo.Solution, idx ...int) error {
	if sol == nil || len(sol.States) == 0 {
		return fmt.Errorf("empty solution")
	}
	dim := len(sol.States[0])
	for _, i := range idx {
		if i < 0 || i >= dim {
			return fmt.Errorf("%w: component %d of %d", dynamo.ErrDimensionMismatch, i, dim)
		}
	}
	return nil
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	Points []Point
}

// PoincareSectionOf records (recordX, recordY) wherever component
// crossIdx crosses threshold upwards between consecutive samples,
// interpolated linearly to the crossing.
func PoincareSectionOf(sol *dynamo.Solution, crossIdx int, threshold float64, recordX, recordY int) (*PoincareSection, error) {
	if err := checkIndices(sol, crossIdx, recordX, recordY); err != nil {
		return nil, err
	}
	section := &PoincareSection{}
	for i := 1; i < len(sol.States); i++ {
		prev, curr := sol.States[i-1], sol.States[i]
		if !(prev[crossIdx] < threshold && curr[crossIdx] >= threshold) {
			continue
		}
		frac := (threshold - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
		section.Points = append(section.Points, Point{
			X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
			Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
		})
	}
	return section, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: section.Points}, width, height)
}

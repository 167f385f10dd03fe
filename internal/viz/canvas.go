package viz

import (
	"math"
	"strings"

	"github.com/san-kum/elastipend/internal/kinematics"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PlotPath draws the polyline through xs, ys scaled so that view fills
// the canvas. y grows upward in view and downward on the canvas.
func (c *Canvas) PlotPath(xs, ys []float64, view kinematics.Bounds) {
	w := float64(c.Width*2 - 1)
	h := float64(c.Height*4 - 1)
	dx := view.XMax - view.XMin
	dy := view.YMax - view.YMin
	if dx <= 0 {
		dx = 1
	}
	if dy <= 0 {
		dy = 1
	}
	px := func(i int) (int, int) {
		x := (xs[i] - view.XMin) / dx * w
		y := (view.YMax - ys[i]) / dy * h
		return int(math.Round(x)), int(math.Round(y))
	}

	n := min(len(xs), len(ys))
	if n == 0 {
		return
	}
	x0, y0 := px(0)
	c.Set(x0, y0)
	for i := 1; i < n; i++ {
		x1, y1 := px(i)
		c.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
}

// PathPreview draws both bob paths of tr on a w×h character canvas.
func PathPreview(tr *kinematics.Trace, w, h int) string {
	c := NewCanvas(w, h)
	view := tr.Viewport()
	c.PlotPath(tr.X1, tr.Y1, view)
	c.PlotPath(tr.X2, tr.Y2, view)
	return c.String()
}

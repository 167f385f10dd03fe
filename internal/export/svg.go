// Package export writes trajectory pictures outside the frame pipeline.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/elastipend/internal/kinematics"
)

const (
	Bob1Stroke = "#00ffff"
	Bob2Stroke = "#ff00ff"
)

// padding is the fraction of the viewport added on each side.
const padding = 0.1

type frame struct {
	minX, minY     float64
	rangeX, rangeY float64
	width, height  int
}

func newFrame(b kinematics.Bounds, width, height int) frame {
	rangeX := b.XMax - b.XMin
	rangeY := b.YMax - b.YMin
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX := b.XMin - rangeX*padding
	minY := b.YMin - rangeY*padding
	return frame{
		minX:   minX,
		minY:   minY,
		rangeX: rangeX * (1 + 2*padding),
		rangeY: rangeY * (1 + 2*padding),
		width:  width,
		height: height,
	}
}

func (f frame) point(x, y float64) (float64, float64) {
	px := (x - f.minX) / f.rangeX * float64(f.width)
	py := float64(f.height) - (y-f.minY)/f.rangeY*float64(f.height)
	return px, py
}

func (f frame) path(xs, ys []float64) string {
	var sb strings.Builder
	for i := range xs {
		x, y := f.point(xs[i], ys[i])
		if i == 0 {
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	return sb.String()
}

// TraceToSVG draws both bob paths of tr over its global viewport, with
// the rods at the final sample on top.
func TraceToSVG(tr *kinematics.Trace, width, height int) string {
	if tr.Len() < 2 {
		return ""
	}
	f := newFrame(tr.Viewport(), width, height)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#000000"/>
`, width, height, width, height))

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1.5" d="%s"/>
`, Bob1Stroke, f.path(tr.X1, tr.Y1)))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1.5" d="%s"/>
`, Bob2Stroke, f.path(tr.X2, tr.Y2)))

	last := tr.Len() - 1
	ox, oy := f.point(0, 0)
	x1, y1 := f.point(tr.X1[last], tr.Y1[last])
	x2, y2 := f.point(tr.X2[last], tr.Y2[last])
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="#ffffff" stroke-width="2" d="M%.1f,%.1f L%.1f,%.1f L%.1f,%.1f"/>
`, ox, oy, x1, y1, x2, y2))
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
`, x1, y1, Bob1Stroke, x2, y2, Bob2Stroke))

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG writes TraceToSVG to w.
func WriteSVG(w io.Writer, tr *kinematics.Trace, width, height int) error {
	svg := TraceToSVG(tr, width, height)
	if svg == "" {
		return fmt.Errorf("trace has %d samples, need at least 2", tr.Len())
	}
	_, err := io.WriteString(w, svg)
	return err
}

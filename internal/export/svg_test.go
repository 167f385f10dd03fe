package export

import (
	"bytes"
	"encoding/xml"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/elastipend/internal/kinematics"
)

func lineTrace() *kinematics.Trace {
	return &kinematics.Trace{
		X1: []float64{0, 0.5, 1},
		Y1: []float64{-1, -1, -1},
		X2: []float64{0, 1, 2},
		Y2: []float64{-2, -2, -2},
	}
}

func TestTraceToSVG(t *testing.T) {
	svg := TraceToSVG(lineTrace(), 200, 100)
	if !strings.HasPrefix(svg, "<?xml") {
		t.Fatalf("not an svg document: %q", svg[:20])
	}
	if err := xml.Unmarshal([]byte(svg), new(struct{})); err != nil {
		t.Errorf("invalid xml: %v", err)
	}
	for _, want := range []string{Bob1Stroke, Bob2Stroke, `width="200"`, `height="100"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("got %d bob markers, want 2", got)
	}
}

func TestFrame_Point(t *testing.T) {
	f := newFrame(kinematics.Bounds{XMin: 0, XMax: 10, YMin: 0, YMax: 10}, 120, 120)
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

	x, y := f.point(0, 0)
	if !near(x, 10) || !near(y, 110) {
		t.Errorf("origin at (%v, %v), want (10, 110)", x, y)
	}
	x, y = f.point(10, 10)
	if !near(x, 110) || !near(y, 10) {
		t.Errorf("corner at (%v, %v), want (110, 10)", x, y)
	}
}

func TestWriteSVG_TooShort(t *testing.T) {
	tr := &kinematics.Trace{X1: []float64{0}, Y1: []float64{-1}, X2: []float64{0}, Y2: []float64{-2}}
	if err := WriteSVG(&bytes.Buffer{}, tr, 10, 10); err == nil {
		t.Error("expected error for a single sample")
	}
}

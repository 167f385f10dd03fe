package render

import (
	"github.com/tanema/gween/ease"
)

// TrailSegment is one fading stroke of a bob's trail, covering frame
// indices [Lo, Hi].
type TrailSegment struct {
	J       int
	Lo, Hi  float64
	Opacity float64
}

// PlanTrail lays out the trail behind frame i: segment j (0 <= j < ns)
// starts at i-(ns-j)*s, spans s frames and has opacity (j/ns)^2.
// Segments starting before frame 0 are skipped, so early frames have
// shorter trails. The newest segment ends exactly at i.
func PlanTrail(i, ns, s int) []TrailSegment {
	if ns <= 0 || s <= 0 {
		return nil
	}
	segs := make([]TrailSegment, 0, ns)
	for j := 0; j < ns; j++ {
		imin := i - (ns-j)*s
		if imin < 0 {
			continue
		}
		segs = append(segs, TrailSegment{
			J:       j,
			Lo:      float64(imin),
			Hi:      float64(imin + s),
			Opacity: float64(ease.InQuad(float32(j), 0, 1, float32(ns))),
		})
	}
	return segs
}

// SampleCount is the number of interpolated points per segment.
func SampleCount(s, mult int) int {
	n := s * mult
	if n < 2 {
		return 2
	}
	return n
}

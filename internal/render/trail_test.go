package render

import (
	"math"
	"testing"
)

func TestPlanTrail(t *testing.T) {
	tests := []struct {
		name     string
		i, ns, s int
		want     int
		firstLo  float64
		lastHi   float64
	}{
		{"first frame has no trail", 0, 50, 4, 0, 0, 0},
		{"partial trail", 10, 50, 4, 2, 2, 10},
		{"full trail", 200, 50, 4, 50, 0, 200},
		{"deep history", 500, 50, 4, 50, 300, 500},
		{"short config", 7, 3, 2, 3, 1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := PlanTrail(tt.i, tt.ns, tt.s)
			if len(segs) != tt.want {
				t.Fatalf("got %d segments, want %d", len(segs), tt.want)
			}
			if tt.want == 0 {
				return
			}
			if segs[0].Lo != tt.firstLo {
				t.Errorf("first Lo = %v, want %v", segs[0].Lo, tt.firstLo)
			}
			if last := segs[len(segs)-1]; last.Hi != tt.lastHi {
				t.Errorf("last Hi = %v, want %v", last.Hi, tt.lastHi)
			}
			for _, seg := range segs {
				if seg.Lo < 0 || seg.Hi > float64(tt.i) {
					t.Errorf("segment %d [%v, %v] outside [0, %d]", seg.J, seg.Lo, seg.Hi, tt.i)
				}
				if seg.Hi-seg.Lo != float64(tt.s) {
					t.Errorf("segment %d spans %v", seg.J, seg.Hi-seg.Lo)
				}
			}
		})
	}
}

func TestPlanTrail_Opacity(t *testing.T) {
	segs := PlanTrail(200, 50, 4)
	for _, seg := range segs {
		want := math.Pow(float64(seg.J)/50, 2)
		if math.Abs(seg.Opacity-want) > 1e-6 {
			t.Errorf("segment %d opacity %v, want %v", seg.J, seg.Opacity, want)
		}
	}
	if segs[0].Opacity != 0 {
		t.Errorf("oldest segment should be transparent, got %v", segs[0].Opacity)
	}
	for k := 1; k < len(segs); k++ {
		if segs[k].Opacity <= segs[k-1].Opacity {
			t.Fatalf("opacity not increasing at %d", k)
		}
	}
}

func TestPlanTrail_Disabled(t *testing.T) {
	if PlanTrail(100, 0, 4) != nil || PlanTrail(100, 50, 0) != nil {
		t.Error("expected no segments")
	}
}

func TestSampleCount(t *testing.T) {
	tests := []struct{ s, mult, want int }{
		{4, 3, 12},
		{1, 1, 2},
		{5, 1, 5},
	}
	for _, tt := range tests {
		if got := SampleCount(tt.s, tt.mult); got != tt.want {
			t.Errorf("SampleCount(%d, %d) = %d, want %d", tt.s, tt.mult, got, tt.want)
		}
	}
}

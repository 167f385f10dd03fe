package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/elastipend/internal/interp"
	"github.com/san-kum/elastipend/internal/kinematics"
)

var (
	Background = color.Black
	Bob1Color  = color.NRGBA{R: 0, G: 255, B: 255, A: 255}
	Bob2Color  = color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	AxisColor  = color.Gray{Y: 160}
)

const (
	trailWidth  = 1.5
	rodWidth    = 2.0
	glyphRadius = 3.0
)

// Scene is everything needed to draw any frame of one run. It is built
// once and shared read-only by all render workers.
type Scene struct {
	trace *kinematics.Trace
	traj  *interp.Trajectory
	view  kinematics.Bounds
	opts  Options
}

func NewScene(tr *kinematics.Trace, opts Options) (*Scene, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if tr == nil || tr.Len() == 0 {
		return nil, fmt.Errorf("render: empty trajectory")
	}
	traj, err := interp.FromTrace(tr)
	if err != nil {
		return nil, err
	}
	return &Scene{
		trace: tr,
		traj:  traj,
		view:  nonDegenerate(tr.Viewport()),
		opts:  opts,
	}, nil
}

// nonDegenerate widens a zero-width axis (a pendulum hanging straight
// down has x = 0 everywhere) by one unit on each side.
func nonDegenerate(b kinematics.Bounds) kinematics.Bounds {
	if b.XMax <= b.XMin {
		b.XMin, b.XMax = b.XMin-1, b.XMin+1
	}
	if b.YMax <= b.YMin {
		b.YMin, b.YMax = b.YMin-1, b.YMin+1
	}
	return b
}

func (s *Scene) Frames() int { return s.trace.Len() }

func (s *Scene) Options() Options { return s.opts }

func (s *Scene) Viewport() kinematics.Bounds { return s.view }

// Plot builds the plot for frame i: fading trails, both rods and the
// three markers, on the run's fixed viewport.
func (s *Scene) Plot(i int) (*plot.Plot, error) {
	if i < 0 || i >= s.Frames() {
		return nil, fmt.Errorf("render: frame %d out of range [0, %d)", i, s.Frames())
	}

	p := plot.New()
	p.BackgroundColor = Background
	if s.opts.Axes {
		styleAxes(p)
	} else {
		p.HideAxes()
	}

	if s.opts.Trace {
		if err := s.addTrail(p, i); err != nil {
			return nil, err
		}
	}

	b1, b2 := s.trace.Bob1(i), s.trace.Bob2(i)

	rod1, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: b1.X, Y: b1.Y}})
	if err != nil {
		return nil, fmt.Errorf("render: rod 1 at frame %d: %w", i, err)
	}
	rod1.LineStyle.Color = Bob1Color
	rod1.LineStyle.Width = vg.Points(rodWidth)

	rod2, err := plotter.NewLine(plotter.XYs{{X: b1.X, Y: b1.Y}, {X: b2.X, Y: b2.Y}})
	if err != nil {
		return nil, fmt.Errorf("render: rod 2 at frame %d: %w", i, err)
	}
	rod2.LineStyle.Color = Bob2Color
	rod2.LineStyle.Width = vg.Points(rodWidth)

	marks, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}, {X: b1.X, Y: b1.Y}, {X: b2.X, Y: b2.Y}})
	if err != nil {
		return nil, fmt.Errorf("render: markers at frame %d: %w", i, err)
	}
	markColors := [...]color.Color{Bob1Color, Bob1Color, Bob2Color}
	marks.GlyphStyleFunc = func(k int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: markColors[k], Radius: vg.Points(glyphRadius), Shape: draw.CircleGlyph{}}
	}

	p.Add(rod1, rod2, marks)

	// Add grows the ranges to fit the data, so the fixed view goes last.
	p.X.Min, p.X.Max = s.view.XMin, s.view.XMax
	p.Y.Min, p.Y.Max = s.view.YMin, s.view.YMax
	return p, nil
}

func (s *Scene) addTrail(p *plot.Plot, i int) error {
	n := SampleCount(s.opts.Stride, s.opts.Supersample)
	for _, seg := range PlanTrail(i, s.opts.Segments, s.opts.Stride) {
		pts1, pts2, err := s.traj.Segment(seg.Lo, seg.Hi, n)
		if err != nil {
			return fmt.Errorf("render: trail segment %d at frame %d: %w", seg.J, i, err)
		}
		alpha := uint8(seg.Opacity*255 + 0.5)
		for k, pts := range [][]kinematics.Point{pts1, pts2} {
			xys := make(plotter.XYs, len(pts))
			for m, pt := range pts {
				xys[m].X, xys[m].Y = pt.X, pt.Y
			}
			l, err := plotter.NewLine(xys)
			if err != nil {
				return fmt.Errorf("render: trail segment %d at frame %d: %w", seg.J, i, err)
			}
			c := Bob1Color
			if k == 1 {
				c = Bob2Color
			}
			c.A = alpha
			l.LineStyle.Color = c
			l.LineStyle.Width = vg.Points(trailWidth)
			p.Add(l)
		}
	}
	return nil
}

func styleAxes(p *plot.Plot) {
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = AxisColor
		ax.Tick.LineStyle.Color = AxisColor
		ax.Tick.Label.Color = AxisColor
		ax.Label.TextStyle.Color = AxisColor
	}
}

// Canvas draws frame i onto a Size x Size pixel canvas.
func (s *Scene) Canvas(i int) (*vgimg.Canvas, error) {
	p, err := s.Plot(i)
	if err != nil {
		return nil, err
	}
	edge := vg.Length(float64(s.opts.Size)/float64(s.opts.DPI)) * vg.Inch
	c := vgimg.NewWith(
		vgimg.UseWH(edge, edge),
		vgimg.UseDPI(s.opts.DPI),
	)
	p.Draw(draw.New(c))
	return c, nil
}

// WritePNG draws frame i and encodes it to w.
func (s *Scene) WritePNG(w io.Writer, i int) error {
	c, err := s.Canvas(i)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("render: encode frame %d: %w", i, err)
	}
	return nil
}

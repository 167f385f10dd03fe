package integrators

import (
	"context"
	"testing"

	"github.com/san-kum/elastipend/internal/dynamo"
	"github.com/san-kum/elastipend/internal/physics"
)

func BenchmarkSolve(b *testing.B) {
	p := physics.DefaultParams()
	p.Alpha0, p.Beta0, p.K1, p.K2 = 1.5, -1, 45, 45
	m, _ := physics.New(p)
	times := dynamo.Grid(10, 24)

	for _, name := range Names() {
		b.Run(name, func(b *testing.B) {
			opts := DefaultOptions()
			opts.Method = name
			for i := 0; i < b.N; i++ {
				if _, err := Solve(context.Background(), m, m.InitialState(), times, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRK45Step(b *testing.B) {
	m, _ := physics.New(physics.DefaultParams())
	tb := NewRK45()
	x := m.InitialState()
	for i := 0; i < b.N; i++ {
		x = tb.Step(m, x, 0, 1e-3)
	}
}

package integrators

// NewRK4 returns the classic fixed-step fourth order method.
func NewRK4() *Tableau {
	return &Tableau{
		Name: "rk4",
		C:    []float64{0, 0.5, 0.5, 1},
		A: [][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		B: []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
	}
}

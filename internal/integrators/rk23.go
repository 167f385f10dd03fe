package integrators

// NewRK23 returns the Bogacki-Shampine 3(2) pair.
func NewRK23() *Tableau {
	return &Tableau{
		Name: "rk23",
		C:    []float64{0, 1.0 / 2.0, 3.0 / 4.0},
		A: [][]float64{
			{},
			{1.0 / 2.0},
			{0, 3.0 / 4.0},
		},
		B:          []float64{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
		E:          []float64{5.0 / 72.0, -1.0 / 12.0, -1.0 / 9.0, 1.0 / 8.0},
		ErrorOrder: 2,
	}
}

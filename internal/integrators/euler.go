package integrators

// NewEuler returns forward Euler. Only useful for comparison runs.
func NewEuler() *Tableau {
	return &Tableau{
		Name: "euler",
		C:    []float64{0},
		A:    [][]float64{{}},
		B:    []float64{1},
	}
}

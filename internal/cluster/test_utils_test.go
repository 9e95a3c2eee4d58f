package cluster

// scalarCapacity is a minimal capacity without a time dimension, used by the tests of this package.
type scalarCapacity struct {
	full float64
}

func (c scalarCapacity) Full() float64             { return c.full }
func (c scalarCapacity) Advance(_ float64) float64 { return c.full }
func (c scalarCapacity) Clone(p float64) float64   { return p }

func scalarPolicy() AllocationPolicy[float64] {
	return AllocationPolicy[float64]{
		Feasible: func(m *Machine[float64], j *Job[float64]) bool {
			return Loose.Holds(m.FreeSpace - j.Usage)
		},
		Allocate: func(m *Machine[float64], j *Job[float64]) {
			m.FreeSpace -= j.Usage
		},
	}
}

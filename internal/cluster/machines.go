package cluster

// MachineCollection is an ordered, indexable set of machines.
type MachineCollection[P any] interface {
	Len() int
	Get(i int) *Machine[P]
	// Machines returns the machines in index order. Callers must not modify the returned slice.
	Machines() []*Machine[P]
	// ExecuteClockTick advances every machine's capacity by one tick.
	ExecuteClockTick()
	// Reset restores every machine to full capacity.
	Reset()
	// Representation returns a copy of every machine's free space.
	Representation() []P
}

// Capacity describes how a flavor's capacity profile behaves over time.
type Capacity[P any] interface {
	// Full returns a new, completely free profile.
	Full() P
	// Advance returns the profile one tick later. Time-windowed profiles shift left and refill the tail;
	// profiles without a time dimension are restored to full. Implementations may reuse free.
	Advance(free P) P
	Clone(p P) P
}

// Machines is the MachineCollection implementation shared by every cluster flavor.
type Machines[P any] struct {
	capacity Capacity[P]
	machines []*Machine[P]
}

// NewMachines creates n machines, all at full capacity.
func NewMachines[P any](n int, capacity Capacity[P]) *Machines[P] {
	machines := make([]*Machine[P], n)
	for i := range machines {
		machines[i] = &Machine[P]{FreeSpace: capacity.Full()}
	}
	return &Machines[P]{capacity: capacity, machines: machines}
}

func (ms *Machines[P]) Len() int {
	return len(ms.machines)
}

func (ms *Machines[P]) Get(i int) *Machine[P] {
	return ms.machines[i]
}

func (ms *Machines[P]) Machines() []*Machine[P] {
	return ms.machines
}

func (ms *Machines[P]) Capacity() Capacity[P] {
	return ms.capacity
}

func (ms *Machines[P]) ExecuteClockTick() {
	for _, m := range ms.machines {
		m.FreeSpace = ms.capacity.Advance(m.FreeSpace)
	}
}

func (ms *Machines[P]) Reset() {
	for _, m := range ms.machines {
		m.FreeSpace = ms.capacity.Full()
	}
}

func (ms *Machines[P]) Representation() []P {
	rv := make([]P, len(ms.machines))
	for i, m := range ms.machines {
		rv[i] = ms.capacity.Clone(m.FreeSpace)
	}
	return rv
}

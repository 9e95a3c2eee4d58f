package dilation

// State is a position in the dilation hierarchy: exactly one of *Initial, *Expanded or *FullyExpanded.
// Every state but Initial keeps the state it was expanded from, so the chain back to the root is explicit.
type State interface {
	// Value is the kernel-sized window the state shows.
	Value() *Grid
	// Level is the distance from the raw machine grid. It decreases by one with every expansion.
	Level() int
	// origin is the coordinate, within the level the window was taken from, of the window's top left cell.
	origin() Cell
}

// Initial is the coarsest view of the whole cluster.
type Initial struct {
	value *Grid
	level int
}

// Expanded is an intermediate view reached by selecting a cell of the previous state.
type Expanded struct {
	PrevAction Cell
	// Prev is either *Initial or *Expanded.
	Prev  State
	value *Grid
	level int
	orig  Cell
}

// FullyExpanded shows raw machine cells. Selecting one of its cells selects a machine.
type FullyExpanded struct {
	PrevAction Cell
	// Prev is either *Initial or *Expanded.
	Prev  State
	value *Grid
	orig  Cell
}

func (s *Initial) Value() *Grid { return s.value }
func (s *Initial) Level() int   { return s.level }
func (s *Initial) origin() Cell { return Cell{} }

func (s *Expanded) Value() *Grid { return s.value }
func (s *Expanded) Level() int   { return s.level }
func (s *Expanded) origin() Cell { return s.orig }

func (s *FullyExpanded) Value() *Grid { return s.value }
func (s *FullyExpanded) Level() int   { return 0 }
func (s *FullyExpanded) origin() Cell { return s.orig }

// previous returns the state s was expanded from and the cell selected to do so. ok is false for Initial.
func previous(s State) (prev State, action Cell, ok bool) {
	switch st := s.(type) {
	case *Expanded:
		return st.Prev, st.PrevAction, true
	case *FullyExpanded:
		return st.Prev, st.PrevAction, true
	default:
		return nil, Cell{}, false
	}
}

func stateName(s State) string {
	switch s.(type) {
	case *Initial:
		return "Initial"
	case *Expanded:
		return "Expanded"
	case *FullyExpanded:
		return "FullyExpanded"
	default:
		return "unknown"
	}
}

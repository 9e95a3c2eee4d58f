// Package dilation reduces the choice of one machine among many to a sequence of choices among a fixed,
// kernel-sized window of cells. Machines are packed onto a 2-D grid which is repeatedly pooled; a controller
// starts at the coarsest level and expands one cell at a time until it sees raw machines.
package dilation

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/armadaproject/clustersim/internal/common/simerrors"
)

// Config configures a Dilator.
type Config struct {
	Kernel    Kernel
	Operation Operation
	// Value of padding cells. Defaults to Operation.DefaultFill().
	FillValue *float64
}

func (c Config) fill() float64 {
	if c.FillValue != nil {
		return *c.FillValue
	}
	return c.Operation.DefaultFill()
}

// Dilator navigates the pooling hierarchy of a machine grid. It is not safe for concurrent use.
type Dilator struct {
	config Config
	// Finest (padded raw grid) to coarsest.
	levels []*Grid
	// Shape of the grid before padding.
	gridX int
	gridY int
	// Number of real machines; cells at or beyond this index are padding.
	numMachines int
	state       State
}

// New builds a dilator over grid, whose first numMachines cells in row-major order are real machines.
func New(grid *Grid, numMachines int, config Config) (*Dilator, error) {
	if numMachines <= 0 || numMachines > grid.X*grid.Y {
		return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "numMachines",
			Value:   numMachines,
			Message: fmt.Sprintf("must be between 1 and the %d cells of the grid", grid.X*grid.Y),
		})
	}
	levels, err := Pyramid(grid, config.Kernel, config.Operation, config.fill())
	if err != nil {
		return nil, err
	}
	d := &Dilator{
		config:      config,
		levels:      levels,
		gridX:       grid.X,
		gridY:       grid.Y,
		numMachines: numMachines,
	}
	d.Reset()
	return d, nil
}

// NewFromMachines packs the machine profiles onto a near-square grid and builds a dilator over it.
func NewFromMachines(profiles [][]float64, config Config) (*Dilator, error) {
	grid, err := PackMachines(profiles, config.fill())
	if err != nil {
		return nil, err
	}
	return New(grid, len(profiles), config)
}

// Reset returns to the initial, coarsest state.
func (d *Dilator) Reset() {
	top := len(d.levels) - 1
	d.state = &Initial{value: d.levels[top], level: top}
}

// Expand zooms into cell of the current window.
func (d *Dilator) Expand(cell Cell) (State, error) {
	if _, ok := d.state.(*FullyExpanded); ok {
		return nil, errors.WithStack(&simerrors.ErrInvalidNavigation{
			Operation: "expand",
			State:     stateName(d.state),
			Message:   "select a machine or contract",
		})
	}
	if !d.config.Kernel.Contains(cell) {
		return nil, errors.WithStack(&simerrors.ErrInvalidNavigation{
			Operation: "expand",
			State:     stateName(d.state),
			Message:   fmt.Sprintf("cell %s is outside kernel %s", cell, d.config.Kernel),
		})
	}
	k := d.config.Kernel
	parent := d.state.origin()
	origin := Cell{X: (parent.X + cell.X) * k.X, Y: (parent.Y + cell.Y) * k.Y}
	level := d.state.Level() - 1
	value := d.levels[level].Window(origin, k)
	if level == 0 {
		d.state = &FullyExpanded{PrevAction: cell, Prev: d.state, value: value, orig: origin}
	} else {
		d.state = &Expanded{PrevAction: cell, Prev: d.state, value: value, level: level, orig: origin}
	}
	return d.state, nil
}

// Contract returns to the state the current one was expanded from. It does nothing at the initial state.
func (d *Dilator) Contract() State {
	if prev, _, ok := previous(d.state); ok {
		d.state = prev
	}
	return d.state
}

// SelectedInitialCell returns the coordinate, in the padded machine grid, of action within the current fully
// expanded window.
func (d *Dilator) SelectedInitialCell(action Cell) (Cell, error) {
	if _, ok := d.state.(*FullyExpanded); !ok {
		return Cell{}, errors.WithStack(&simerrors.ErrInvalidNavigation{
			Operation: "select a machine",
			State:     stateName(d.state),
			Message:   "only possible once fully expanded",
		})
	}
	k := d.config.Kernel
	if !k.Contains(action) {
		return Cell{}, errors.WithStack(&simerrors.ErrInvalidNavigation{
			Operation: "select a machine",
			State:     stateName(d.state),
			Message:   fmt.Sprintf("cell %s is outside kernel %s", action, k),
		})
	}
	out := action
	scale := Cell{X: k.X, Y: k.Y}
	for s := d.state; ; {
		prev, prevAction, ok := previous(s)
		if !ok {
			break
		}
		out.X += prevAction.X * scale.X
		out.Y += prevAction.Y * scale.Y
		scale.X *= k.X
		scale.Y *= k.Y
		s = prev
	}
	return out, nil
}

// SelectedMachine returns the index of the machine at action within the current fully expanded window.
// The second return value is false if action selects a padding cell, which the caller must treat as no selection.
func (d *Dilator) SelectedMachine(action Cell) (int, bool, error) {
	cell, err := d.SelectedInitialCell(action)
	if err != nil {
		return 0, false, err
	}
	if cell.X >= d.gridX || cell.Y >= d.gridY {
		return 0, false, nil
	}
	idx := cell.X*d.gridY + cell.Y
	if idx >= d.numMachines {
		return 0, false, nil
	}
	return idx, true, nil
}

// NavigationPath returns the cells to expand, starting from the initial state, and the final action that
// together select machine machineIdx.
func (d *Dilator) NavigationPath(machineIdx int) ([]Cell, Cell, error) {
	if machineIdx < 0 || machineIdx >= d.numMachines {
		return nil, Cell{}, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "machine",
			Value:   machineIdx,
			Message: fmt.Sprintf("dilator covers %d machines", d.numMachines),
		})
	}
	k := d.config.Kernel
	target := Cell{X: machineIdx / d.gridY, Y: machineIdx % d.gridY}
	expansions := make([]Cell, 0, len(d.levels)-1)
	for level := len(d.levels) - 1; level >= 1; level-- {
		sx, sy := pow(k.X, level), pow(k.Y, level)
		expansions = append(expansions, Cell{X: (target.X / sx) % k.X, Y: (target.Y / sy) % k.Y})
	}
	return expansions, Cell{X: target.X % k.X, Y: target.Y % k.Y}, nil
}

func (d *Dilator) State() State {
	return d.state
}

func (d *Dilator) Kernel() Kernel {
	return d.config.Kernel
}

// NumLevels returns the number of levels in the hierarchy, including the raw machine grid.
func (d *Dilator) NumLevels() int {
	return len(d.levels)
}

// Levels returns every level of the hierarchy, finest first. Callers must not modify them.
func (d *Dilator) Levels() []*Grid {
	return d.levels
}

func (d *Dilator) NumMachines() int {
	return d.numMachines
}

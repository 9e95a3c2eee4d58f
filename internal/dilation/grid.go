package dilation

import (
	"math"

	"github.com/pkg/errors"

	"github.com/armadaproject/clustersim/internal/common/simerrors"
)

// Grid is a 2-D arrangement of cells, each holding C channels. Data is stored cell by cell in row-major order of
// (X, Y).
type Grid struct {
	X    int
	Y    int
	C    int
	Data []float64
}

func NewGrid(x, y, c int, fill float64) *Grid {
	data := make([]float64, x*y*c)
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	return &Grid{X: x, Y: y, C: c, Data: data}
}

func (g *Grid) offset(x, y int) int {
	return (x*g.Y + y) * g.C
}

// At returns the channels of cell (x, y). The returned slice aliases the grid.
func (g *Grid) At(x, y int) []float64 {
	o := g.offset(x, y)
	return g.Data[o : o+g.C]
}

// Window returns a copy of the k-sized block whose top left cell is origin. The block must lie within g.
func (g *Grid) Window(origin Cell, k Kernel) *Grid {
	w := NewGrid(k.X, k.Y, g.C, 0)
	for x := 0; x < k.X; x++ {
		for y := 0; y < k.Y; y++ {
			copy(w.At(x, y), g.At(origin.X+x, origin.Y+y))
		}
	}
	return w
}

// Pad returns a copy of g grown to x by y cells, new cells holding fill in every channel.
func (g *Grid) Pad(x, y int, fill float64) *Grid {
	p := NewGrid(max(x, g.X), max(y, g.Y), g.C, fill)
	for i := 0; i < g.X; i++ {
		for j := 0; j < g.Y; j++ {
			copy(p.At(i, j), g.At(i, j))
		}
	}
	return p
}

// Pool block-reduces every k-sized block with op, channel by channel. Both dimensions of g must be multiples of k.
func (g *Grid) Pool(k Kernel, op Operation) *Grid {
	out := NewGrid(g.X/k.X, g.Y/k.Y, g.C, 0)
	block := make([]float64, k.X*k.Y)
	for x := 0; x < out.X; x++ {
		for y := 0; y < out.Y; y++ {
			cell := out.At(x, y)
			for c := 0; c < g.C; c++ {
				i := 0
				for bx := 0; bx < k.X; bx++ {
					for by := 0; by < k.Y; by++ {
						block[i] = g.At(x*k.X+bx, y*k.Y+by)[c]
						i++
					}
				}
				cell[c] = op.reduce(block)
			}
		}
	}
	return out
}

func (g *Grid) Clone() *Grid {
	c := *g
	c.Data = append([]float64(nil), g.Data...)
	return &c
}

// Equal returns true if both grids have the same shape and the same values. NaNs never compare equal.
func (g *Grid) Equal(other *Grid) bool {
	if g.X != other.X || g.Y != other.Y || g.C != other.C {
		return false
	}
	for i, v := range g.Data {
		if v != other.Data[i] {
			return false
		}
	}
	return true
}

// PackedShape returns the dimensions of the smallest near-square grid holding n machines.
func PackedShape(n int) (int, int) {
	x := int(math.Ceil(math.Sqrt(float64(n))))
	if x == 0 {
		return 0, 0
	}
	return x, (n + x - 1) / x
}

// PackMachines lays the machines out on a grid, machine i at (i / Y, i % Y). Cells beyond the last machine hold fill.
// Every profile must have the same number of channels.
func PackMachines(profiles [][]float64, fill float64) (*Grid, error) {
	if len(profiles) == 0 {
		return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "machines",
			Value:   0,
			Message: "at least one machine is required",
		})
	}
	x, y := PackedShape(len(profiles))
	channels := len(profiles[0])
	g := NewGrid(x, y, channels, fill)
	for i, p := range profiles {
		if len(p) != channels {
			return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
				Name:    "machines",
				Value:   len(p),
				Message: "every machine must have the same number of channels",
			})
		}
		copy(g.At(i/y, i%y), p)
	}
	return g, nil
}

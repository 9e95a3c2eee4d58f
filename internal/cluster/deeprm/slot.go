package deeprm

import "math/bits"

// Slot is a boolean tensor over resources, resource units and ticks, packed into 64 bit words.
// A set bit in a machine's free space means the unit is free at that tick; in a job's usage it means the job
// needs it.
type Slot struct {
	Resources int
	Units     int
	Ticks     int
	words     []uint64
}

func NewSlot(resources, units, ticks int) Slot {
	n := resources * units * ticks
	return Slot{
		Resources: resources,
		Units:     units,
		Ticks:     ticks,
		words:     make([]uint64, (n+63)/64),
	}
}

// FullSlot returns a slot with every bit set.
func FullSlot(resources, units, ticks int) Slot {
	s := NewSlot(resources, units, ticks)
	for i := range s.words {
		s.words[i] = ^uint64(0)
	}
	s.clearTail()
	return s
}

func (s Slot) Len() int {
	return s.Resources * s.Units * s.Ticks
}

func (s Slot) index(resource, unit, tick int) int {
	return (resource*s.Units+unit)*s.Ticks + tick
}

func (s Slot) Get(resource, unit, tick int) bool {
	i := s.index(resource, unit, tick)
	return s.words[i/64]&(1<<(uint(i)%64)) != 0
}

func (s Slot) Set(resource, unit, tick int, v bool) {
	i := s.index(resource, unit, tick)
	if v {
		s.words[i/64] |= 1 << (uint(i) % 64)
	} else {
		s.words[i/64] &^= 1 << (uint(i) % 64)
	}
}

// Covers returns true if every bit set in other is also set in s, i.e. s | ^other is all ones.
func (s Slot) Covers(other Slot) bool {
	for i, w := range other.words {
		if w&^s.words[i] != 0 {
			return false
		}
	}
	return true
}

// Clear unsets every bit of s that is set in other, i.e. s &= ^other.
func (s Slot) Clear(other Slot) {
	for i, w := range other.words {
		s.words[i] &^= w
	}
}

// Count returns the number of set bits.
func (s Slot) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func (s Slot) Clone() Slot {
	c := s
	c.words = make([]uint64, len(s.words))
	copy(c.words, s.words)
	return c
}

func (s Slot) Equal(other Slot) bool {
	if s.Resources != other.Resources || s.Units != other.Units || s.Ticks != other.Ticks {
		return false
	}
	for i := range s.words {
		if s.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// shiftLeft moves every (resource, unit) row one tick earlier and sets the last tick.
func (s Slot) shiftLeft() {
	for r := 0; r < s.Resources; r++ {
		for u := 0; u < s.Units; u++ {
			for t := 0; t < s.Ticks-1; t++ {
				s.Set(r, u, t, s.Get(r, u, t+1))
			}
			s.Set(r, u, s.Ticks-1, true)
		}
	}
}

func (s Slot) clearTail() {
	if rem := s.Len() % 64; rem != 0 {
		s.words[len(s.words)-1] &= (1 << uint(rem)) - 1
	}
}

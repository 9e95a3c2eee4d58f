package slices

// Map returns a new slice holding f applied to every element of s.
func Map[S ~[]E, E any, V any](s S, f func(E) V) []V {
	if s == nil {
		return nil
	}
	rv := make([]V, len(s))
	for i, e := range s {
		rv[i] = f(e)
	}
	return rv
}

// IndicesFunc returns the indices of the elements of s for which predicate returns true, in increasing order.
func IndicesFunc[S ~[]E, E any](s S, predicate func(E) bool) []int {
	var rv []int
	for i, e := range s {
		if predicate(e) {
			rv = append(rv, i)
		}
	}
	return rv
}

// CountFunc returns the number of elements of s for which predicate returns true.
func CountFunc[S ~[]E, E any](s S, predicate func(E) bool) int {
	n := 0
	for _, e := range s {
		if predicate(e) {
			n++
		}
	}
	return n
}

// AllFunc returns true if predicate holds for every element of s. It returns true for an empty slice.
func AllFunc[S ~[]E, E any](s S, predicate func(E) bool) bool {
	for _, e := range s {
		if !predicate(e) {
			return false
		}
	}
	return true
}

// Flatten merges a slice of slices into a single slice.
func Flatten[S ~[]E, E any](s []S) S {
	if s == nil {
		return nil
	}
	n := 0
	for _, si := range s {
		n += len(si)
	}
	rv := make(S, n)
	i := 0
	for _, si := range s {
		i += copy(rv[i:], si)
	}
	return rv
}

// Repeat returns a slice of length n with every element set to v.
func Repeat[E any](n int, v E) []E {
	rv := make([]E, n)
	for i := range rv {
		rv[i] = v
	}
	return rv
}

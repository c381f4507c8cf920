package matcher

// Set is the compiled list of target patterns of a run.
// Indexes into counts slices follow the order the patterns were given in.
type Set struct {
	names []string
	kmps  []*KMP
}

// CompileSet compiles every pattern once, up front.
func CompileSet(patterns []string) *Set {
	s := &Set{
		names: append([]string(nil), patterns...),
		kmps:  make([]*KMP, len(patterns)),
	}
	for i, p := range patterns {
		s.kmps[i] = Compile([]byte(p))
	}
	return s
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	return len(s.kmps)
}

// Patterns returns a copy of the pattern names.
func (s *Set) Patterns() []string {
	return append([]string(nil), s.names...)
}

// CountInto adds the occurrences of every pattern in text to counts, which must have Len() entries.
func (s *Set) CountInto(text []byte, counts []int64) {
	for i, k := range s.kmps {
		counts[i] += int64(k.Count(text))
	}
}

// Package matcher counts exact substring occurrences with the Knuth-Morris-Pratt algorithm.
package matcher

// KMP is a compiled pattern together with its prefix (failure) table.
// It is immutable after Compile and safe for concurrent use.
type KMP struct {
	pattern []byte
	prefix  []int
}

// Compile copies pattern and builds its prefix table in O(len(pattern)).
func Compile(pattern []byte) *KMP {
	p := append([]byte(nil), pattern...)
	return &KMP{pattern: p, prefix: prefixTable(p)}
}

// prefixTable returns, for every i, the length of the longest proper border of pattern[:i+1].
func prefixTable(pattern []byte) []int {
	prefix := make([]int, len(pattern))
	j := 0
	for i := 1; i < len(pattern); {
		switch {
		case pattern[i] == pattern[j]:
			j++
			prefix[i] = j
			i++
		case j != 0:
			j = prefix[j-1]
		default:
			prefix[i] = 0
			i++
		}
	}
	return prefix
}

// Count returns the number of occurrences of the pattern in text in O(len(text)).
// After a full match the scan resumes at the pattern's longest border, so
// overlapping occurrences are counted ("aa" occurs 3 times in "aaaa").
func (k *KMP) Count(text []byte) int {
	m := len(k.pattern)
	if m == 0 || len(text) < m {
		return 0
	}
	occurrences, j := 0, 0
	for i := 0; i < len(text); i++ {
		for j > 0 && text[i] != k.pattern[j] {
			j = k.prefix[j-1]
		}
		if text[i] == k.pattern[j] {
			j++
		}
		if j == m {
			occurrences++
			j = k.prefix[j-1]
		}
	}
	return occurrences
}

// Count is a one-shot helper. It returns 0 without building a table when text is shorter than pattern.
func Count(text, pattern []byte) int {
	if len(pattern) == 0 || len(text) < len(pattern) {
		return 0
	}
	return Compile(pattern).Count(text)
}

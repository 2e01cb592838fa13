package extraction

// ratcliffObershelp computes Ratcliff/Obershelp pattern-matching
// similarity: twice the number of matching characters over the total
// length, where matches are found by anchoring on the longest common
// substring and recursing into the unmatched pieces on either side.
// strutil ships the StringMetric interface and several metrics but not
// this one.
//
// The result is identical to Python difflib's SequenceMatcher.ratio()
// for inputs short enough that autojunk never kicks in, which holds for
// label strings.
type ratcliffObershelp struct{}

func (ratcliffObershelp) Compare(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestCommonSubstring returns the start offsets and length of the
// longest run of runes common to a and b, preferring the earliest
// occurrence on ties.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > size {
				size = cur[j]
				ai = i - size
				bi = j - size
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

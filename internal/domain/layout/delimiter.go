package layout

import "strings"

// DefaultDelimiters lists the delimiters considered by DetectDelimiter, in tie-break order.
var DefaultDelimiters = []rune{',', '\t', ';'}

// DefaultSniffLines is the number of non-blank lines sampled for delimiter detection.
const DefaultSniffLines = 10

// DetectDelimiter counts each candidate over the first n non-blank lines and
// returns the most frequent one. Ties go to the earlier candidate; a sample
// without any candidate yields the first candidate.
func DetectDelimiter(lines []string, candidates []rune, n int) rune {
	if len(candidates) == 0 {
		candidates = DefaultDelimiters
	}
	if n <= 0 {
		n = DefaultSniffLines
	}
	counts := make([]int, len(candidates))
	sampled := 0
	for _, line := range lines {
		if sampled >= n {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		sampled++
		for i, c := range candidates {
			counts[i] += strings.Count(line, string(c))
		}
	}
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return candidates[best]
}

package nodeid

import "fmt"

// EdgeID returns the canonical id for an edge from source to target.
// taken reports whether a candidate id is already in use; the first free
// candidate wins.
func EdgeID(source, target string, taken func(string) bool) string {
	base := fmt.Sprintf("e%s-%s", source, target)
	if taken == nil || !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !taken(candidate) {
			return candidate
		}
	}
}

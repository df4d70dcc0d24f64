package domain

import "sort"

func idsWith(m map[int]bool, want bool) []int {
	out := make([]int, 0, len(m))
	for id, v := range m {
		if v == want {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

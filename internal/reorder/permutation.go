// Package reorder restores reading order for PDFs scanned by a duplex-unaware
// document feeder: all fronts first, then all backs in reverse.
package reorder

import "strconv"

// Permutation returns the 0-based source page indices in reading order for a
// document of n pages. The first ceil(n/2) pages are the front pass, the rest
// are the back pass in reverse.
func Permutation(n int) []int {
	if n <= 0 {
		return []int{}
	}

	oddPages := (n + 1) / 2
	perm := make([]int, 0, n)
	for i := 0; i < oddPages; i++ {
		perm = append(perm, i)

		evenIndex := n - 1 - i
		if evenIndex >= oddPages {
			perm = append(perm, evenIndex)
		}
	}
	return perm
}

// pageSelection converts 0-based indices into the 1-based page selection
// strings pdfcpu expects.
func pageSelection(perm []int) []string {
	selected := make([]string, len(perm))
	for i, idx := range perm {
		selected[i] = strconv.Itoa(idx + 1)
	}
	return selected
}

package reorder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPermutation(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{n: 0, want: []int{}},
		{n: 1, want: []int{0}},
		{n: 2, want: []int{0, 1}},
		{n: 3, want: []int{0, 2, 1}},
		{n: 4, want: []int{0, 3, 1, 2}},
		{n: 5, want: []int{0, 4, 1, 3, 2}},
		{n: 6, want: []int{0, 5, 1, 4, 2, 3}},
		{n: 7, want: []int{0, 6, 1, 5, 2, 4, 3}},
	}
	for _, tt := range tests {
		got := Permutation(tt.n)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Permutation(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}
}

func TestPermutationNegative(t *testing.T) {
	if got := Permutation(-3); len(got) != 0 {
		t.Errorf("Permutation(-3) = %v, want empty", got)
	}
}

func TestPermutationIsBijection(t *testing.T) {
	for n := 0; n <= 257; n++ {
		perm := Permutation(n)
		if len(perm) != n {
			t.Fatalf("n=%d: got %d indices", n, len(perm))
		}
		seen := make([]bool, n)
		for _, idx := range perm {
			if idx < 0 || idx >= n {
				t.Fatalf("n=%d: index %d out of range", n, idx)
			}
			if seen[idx] {
				t.Fatalf("n=%d: index %d emitted twice", n, idx)
			}
			seen[idx] = true
		}
	}
}

func TestPermutationAlternatesPasses(t *testing.T) {
	for n := 1; n <= 64; n++ {
		oddPages := (n + 1) / 2
		for pos, idx := range Permutation(n) {
			front := idx < oddPages
			if wantFront := pos%2 == 0; front != wantFront {
				t.Fatalf("n=%d: position %d holds index %d (front=%v)", n, pos, idx, front)
			}
		}
	}
}

func TestPageSelection(t *testing.T) {
	got := pageSelection([]int{0, 3, 1, 2})
	want := []string{"1", "4", "2", "3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pageSelection mismatch (-want +got):\n%s", diff)
	}
}

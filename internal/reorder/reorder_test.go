package reorder_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Lllllllleong/adfpagecorrection/internal/reorder"
	"github.com/Lllllllleong/adfpagecorrection/internal/testpdf"
)

func TestReorderRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 4, 5, 6, 9} {
		src := testpdf.Build(t, n)

		var out bytes.Buffer
		res, err := reorder.Reorder(bytes.NewReader(src), &out, nil)
		if err != nil {
			t.Fatalf("n=%d: reorder: %v", n, err)
		}
		if res.PageCount != n {
			t.Errorf("n=%d: PageCount = %d", n, res.PageCount)
		}

		want := reorder.Permutation(n)
		if diff := cmp.Diff(want, res.Permutation); diff != "" {
			t.Errorf("n=%d: result permutation (-want +got):\n%s", n, diff)
		}
		if diff := cmp.Diff(want, testpdf.PageOrder(t, out.Bytes())); diff != "" {
			t.Errorf("n=%d: output page order (-want +got):\n%s", n, diff)
		}
	}
}

func TestReorderFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	out := filepath.Join(dir, "fixed.pdf")
	testpdf.WriteFile(t, in, 6)

	res, err := reorder.ReorderFile(in, out, reorder.NewConfiguration())
	if err != nil {
		t.Fatalf("ReorderFile: %v", err)
	}
	if res.PageCount != 6 {
		t.Errorf("PageCount = %d, want 6", res.PageCount)
	}
	want := []int{0, 5, 1, 4, 2, 3}
	if diff := cmp.Diff(want, testpdf.FilePageOrder(t, out)); diff != "" {
		t.Errorf("page order (-want +got):\n%s", diff)
	}
}

func TestReorderFileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	testpdf.WriteFile(t, path, 5)

	if _, err := reorder.ReorderFile(path, path, nil); err != nil {
		t.Fatalf("ReorderFile: %v", err)
	}
	want := []int{0, 4, 1, 3, 2}
	if diff := cmp.Diff(want, testpdf.FilePageOrder(t, path)); diff != "" {
		t.Errorf("page order (-want +got):\n%s", diff)
	}
}

func TestReorderFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.pdf")

	if _, err := reorder.ReorderFile(filepath.Join(dir, "nope.pdf"), out, nil); err == nil {
		t.Fatal("expected an error for a missing input")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output should not exist, stat err = %v", err)
	}
}

func TestReorderFileCorruptInputKeepsOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "garbage.pdf")
	out := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(in, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(out, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := reorder.ReorderFile(in, out, nil); err == nil {
		t.Fatal("expected an error for a corrupt input")
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "keep me" {
		t.Errorf("output was modified: %q", got)
	}
}

func TestReorderEmptyDocument(t *testing.T) {
	var out bytes.Buffer
	res, err := reorder.Reorder(bytes.NewReader(testpdf.BuildEmpty()), &out, nil)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	want := reorder.Result{PageCount: 0, Permutation: []int{}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}

	n, err := api.PageCount(bytes.NewReader(out.Bytes()), reorder.NewConfiguration())
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if n != 0 {
		t.Errorf("output has %d pages, want 0", n)
	}
}

func TestReorderFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	out := filepath.Join(dir, "fixed.pdf")
	testpdf.WriteFile(t, in, 4)
	if err := os.WriteFile(out, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := reorder.ReorderFile(in, out, nil); err != nil {
		t.Fatalf("ReorderFile: %v", err)
	}
	if diff := cmp.Diff([]string{"fixed.pdf", "scan.pdf"}, dirNames(t, dir)); diff != "" {
		t.Errorf("directory contents (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 3, 1, 2}, testpdf.FilePageOrder(t, out)); diff != "" {
		t.Errorf("page order (-want +got):\n%s", diff)
	}
}

func TestReorderFileFailedReplaceKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	testpdf.WriteFile(t, in, 3)

	// A non-empty directory cannot be replaced by a file.
	out := filepath.Join(dir, "fixed.pdf")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	keep := filepath.Join(out, "keep.txt")
	if err := os.WriteFile(keep, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := reorder.ReorderFile(in, out, nil); err == nil {
		t.Fatal("expected an error replacing a directory")
	}
	if data, err := os.ReadFile(keep); err != nil || string(data) != "keep me" {
		t.Errorf("destination changed: %q, %v", data, err)
	}
	if diff := cmp.Diff([]string{"fixed.pdf", "scan.pdf"}, dirNames(t, dir)); diff != "" {
		t.Errorf("directory contents (-want +got):\n%s", diff)
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

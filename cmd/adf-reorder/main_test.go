package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	arg "github.com/alexflint/go-arg"
	"github.com/google/go-cmp/cmp"

	"github.com/Lllllllleong/adfpagecorrection/internal/testpdf"
)

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	out := filepath.Join(dir, "fixed.pdf")
	testpdf.WriteFile(t, in, 5)

	var stdout bytes.Buffer
	code := run(context.Background(), cliArgs{Input: in, Output: out}, strings.NewReader(""), &stdout, io.Discard, false)
	if code != 0 {
		t.Fatalf("exit code = %d, output: %s", code, stdout.String())
	}
	if want := "Reordered PDF saved as " + out + "\n"; stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
	if diff := cmp.Diff([]int{0, 4, 1, 3, 2}, testpdf.FilePageOrder(t, out)); diff != "" {
		t.Errorf("page order (-want +got):\n%s", diff)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	out := filepath.Join(dir, "fixed.pdf")
	testpdf.WriteFile(t, in, 4)
	if err := os.WriteFile(out, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	code := run(context.Background(), cliArgs{Input: in, Output: out}, strings.NewReader("x\nno\n"), &stdout, io.Discard, false)
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	got := stdout.String()
	for _, want := range []string{
		"The file '" + out + "' already exists. Do you want to overwrite it? (y/n): ",
		"Please answer with 'y' or 'n'.",
		"Operation cancelled.\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("stdout %q missing %q", got, want)
		}
	}
	if data, _ := os.ReadFile(out); string(data) != "original" {
		t.Errorf("output changed: %q", data)
	}
}

func TestRunFailure(t *testing.T) {
	dir := t.TempDir()

	var stdout bytes.Buffer
	code := run(context.Background(), cliArgs{
		Input:  filepath.Join(dir, "missing.pdf"),
		Output: filepath.Join(dir, "out.pdf"),
	}, strings.NewReader(""), &stdout, io.Discard, false)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stdout.String(), "An error occurred: ") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestParseFlags(t *testing.T) {
	var args cliArgs
	p, err := arg.NewParser(arg.Config{}, &args)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	if err := p.Parse([]string{"--input", "/scans/in.pdf", "--output", "gs://out/a.pdf", "-y"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := cliArgs{Input: "/scans/in.pdf", Output: "gs://out/a.pdf", Yes: true}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("flags (-want +got):\n%s", diff)
	}

	var missing cliArgs
	p, err = arg.NewParser(arg.Config{}, &missing)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	if err := p.Parse([]string{"--input", "/scans/in.pdf"}); err == nil {
		t.Error("expected an error without --output")
	}
}

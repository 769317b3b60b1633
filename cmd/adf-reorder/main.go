// Command adf-reorder fixes the page order of PDFs scanned with a
// duplex-unaware document feeder.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	arg "github.com/alexflint/go-arg"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/term"

	"github.com/Lllllllleong/adfpagecorrection/internal/app"
	"github.com/Lllllllleong/adfpagecorrection/internal/prompt"
)

// cliArgs are the command-line flags.
type cliArgs struct {
	Input   string `arg:"--input,required" help:"Absolute path (or gs:// URI) to the input PDF file"`
	Output  string `arg:"--output,required" help:"Absolute path (or gs:// URI) for the output PDF file"`
	Yes     bool   `arg:"-y,--yes" help:"Overwrite the output without asking"`
	Verbose bool   `arg:"-v,--verbose" help:"Log debug details to stderr"`
}

func (cliArgs) Description() string {
	return "Reorder PDF pages from scanner output."
}

func main() {
	var args cliArgs
	arg.MustParse(&args)

	// pdfcpu would otherwise create a config directory under the user's home.
	api.DisableConfigDir()

	color := term.IsTerminal(int(os.Stdout.Fd()))
	os.Exit(run(context.Background(), args, os.Stdin, os.Stdout, os.Stderr, color))
}

// run executes one reorder and returns the process exit code.
func run(ctx context.Context, args cliArgs, stdin io.Reader, stdout, stderr io.Writer, color bool) int {
	level := slog.LevelInfo
	if args.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	runner := app.NewRunner(prompt.New(stdin, stdout, color), logger)
	out, err := runner.Run(ctx, app.Options{
		Input:  args.Input,
		Output: args.Output,
		Yes:    args.Yes,
	})
	switch {
	case errors.Is(err, app.ErrCancelled):
		fmt.Fprintln(stdout, "Operation cancelled.")
		return 0
	case err != nil:
		fmt.Fprintf(stdout, "An error occurred: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Reordered PDF saved as %s\n", out)
	return 0
}

// Package prompt asks the user for yes/no confirmation on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	red   = "\033[91m"
	reset = "\033[0m"
)

// ErrNoAnswer is returned when input ends before a valid answer was given.
var ErrNoAnswer = errors.New("no answer given")

// Prompter asks questions on one stream and reads answers from another.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	color bool
}

// New returns a Prompter. With color set, questions are printed in red.
func New(in io.Reader, out io.Writer, color bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, color: color}
}

// Confirm asks question until the answer is y, yes, n or no (any case).
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		if p.color {
			fmt.Fprintf(p.out, "%s%s (y/n): %s", red, question, reset)
		} else {
			fmt.Fprintf(p.out, "%s (y/n): ", question)
		}

		line, err := p.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, fmt.Errorf("failed to read answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer with 'y' or 'n'.")
		if err != nil {
			// Unterminated last line that was not a valid answer.
			return false, ErrNoAnswer
		}
	}
}

// ConfirmOverwrite asks whether the existing file at path may be replaced.
func (p *Prompter) ConfirmOverwrite(path string) (bool, error) {
	return p.Confirm(fmt.Sprintf("The file '%s' already exists. Do you want to overwrite it?", path))
}

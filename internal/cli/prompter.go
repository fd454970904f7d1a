package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks yes/no questions on the terminal. Duplicate removal is never
// silent: the pipeline routes its decision points through here.
type Prompter struct {
	reader    *bufio.Reader
	writer    io.Writer
	assumeYes bool
}

// NewPrompter creates a prompter over the given reader and writer,
// defaulting to stdin/stdout. With assumeYes set every question is answered
// affirmatively without prompting.
func NewPrompter(reader io.Reader, writer io.Writer, assumeYes bool) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader:    bufio.NewReader(reader),
		writer:    writer,
		assumeYes: assumeYes,
	}
}

// Confirm asks a yes/no question and returns the answer, re-prompting on
// unrecognized input.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		if _, err := fmt.Fprintf(p.writer, "%s [y/n] ", FormatPrompt(question)); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.ReadString('\n')
		if err != nil && line == "" {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "s", "si", "sí":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, SubtleStyle.Render("Please answer y or n.")); err != nil {
			return false, fmt.Errorf("failed to write retry hint: %w", err)
		}
	}
}

package run

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Confirmer asks whether a run should continue past a checkpoint
type Confirmer interface {
	// ConfirmScale is asked when more files matched than the confirm threshold.
	ConfirmScale(ctx context.Context, count int) (bool, error)
	// ConfirmProbeFailure is asked when the probe file failed or ran too long.
	ConfirmProbeFailure(ctx context.Context, message string) (bool, error)
}

// Static answers every confirmation with a fixed value
type Static struct {
	Scale        bool
	ProbeFailure bool
}

// AutoConfirm accepts every confirmation
var AutoConfirm = Static{Scale: true, ProbeFailure: true}

func (s Static) ConfirmScale(context.Context, int) (bool, error)           { return s.Scale, nil }
func (s Static) ConfirmProbeFailure(context.Context, string) (bool, error) { return s.ProbeFailure, nil }

// Prompt asks on a terminal and reads a y/N answer. A single reader goroutine
// owns the input so a question abandoned on cancellation never leaves a
// second reader racing the next one.
type Prompt struct {
	mu    sync.Mutex
	in    *bufio.Reader
	out   io.Writer
	start sync.Once
	lines chan string
	err   error // read error, valid once lines is closed
}

// NewPrompt creates a prompt reading answers from in and writing questions to out
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out, lines: make(chan string)}
}

// readLines feeds lines until the input fails, then closes lines
func (p *Prompt) readLines() {
	for {
		line, err := p.in.ReadString('\n')
		if line != "" {
			p.lines <- line
		}
		if err != nil {
			p.err = err
			close(p.lines)
			return
		}
	}
}

func (p *Prompt) ConfirmScale(ctx context.Context, count int) (bool, error) {
	return p.ask(ctx, fmt.Sprintf("The provided patterns matched %d files. Are you sure you want to continue with the search?", count))
}

func (p *Prompt) ConfirmProbeFailure(ctx context.Context, message string) (bool, error) {
	return p.ask(ctx, fmt.Sprintf("%s\nContinue with the remaining files?", message))
}

// ask blocks until a line is read or ctx ends. A line that arrives after ctx
// ended answers the next question.
func (p *Prompt) ask(ctx context.Context, question string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.out, "%s [y/N] ", question); err != nil {
		return false, err
	}
	p.start.Do(func() { go p.readLines() })

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			if p.err == io.EOF {
				return false, nil
			}
			return false, p.err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

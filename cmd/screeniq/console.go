package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errTimeUp is returned by console.ask when the session ended while waiting for input.
var errTimeUp = errors.New("time is up")

// console reads answers line by line on its own goroutine so a prompt can be
// abandoned when the countdown ends.
type console struct {
	out   io.Writer
	lines <-chan string
}

func newConsole(in io.Reader, out io.Writer) *console {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &console{out: out, lines: lines}
}

// ask prints prompt and returns the next trimmed line. done may be nil.
func (c *console) ask(ctx context.Context, done <-chan struct{}, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt) //nolint:errcheck
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	case <-done:
		fmt.Fprintln(c.out) //nolint:errcheck
		return "", errTimeUp
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

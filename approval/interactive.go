package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Interactive asks the human at the controlling terminal. It fails closed:
// without a terminal the request is blocked and the process exits 1.
type Interactive struct {
	OpenTerminal func() (io.ReadCloser, error)
	Banner       *Banner
}

// NewInteractive prompts on stderr and reads answers from the terminal at
// ttyPath.
func NewInteractive(ttyPath string, stderr io.Writer) *Interactive {
	return &Interactive{
		OpenTerminal: func() (io.ReadCloser, error) { return OpenTTY(ttyPath) },
		Banner:       NewBanner(stderr),
	}
}

// OpenTTY opens path for reading and checks that it is a terminal.
func OpenTTY(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if !term.IsTerminal(int(f.Fd())) {
		f.Close()
		return nil, fmt.Errorf("%s is not a terminal", path)
	}
	return f, nil
}

func (g *Interactive) Decide(ctx context.Context, in io.Reader) (Decision, int) {
	tty, err := g.OpenTerminal()
	if err != nil {
		return Block("Cannot access terminal for user approval - execution blocked for security"), 1
	}
	defer tty.Close()

	req, d, code, ok := readRequest(in)
	if !ok {
		return d, code
	}
	input, err := req.RoleInput()
	if err != nil {
		return Block(err.Error()), 0
	}

	g.Banner.Review(input)
	g.Banner.Ask()

	answer, err := readAnswer(ctx, tty)
	if err != nil || !affirmative(answer) {
		g.Banner.Denied()
		return Block("User denied approval"), 0
	}
	g.Banner.Approved()
	return Approve(), 0
}

func affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// readAnswer reads one line from tty, giving up when ctx ends.
func readAnswer(ctx context.Context, tty io.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(tty).ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- result{line, err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

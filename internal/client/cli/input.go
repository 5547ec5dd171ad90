package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompter reads answers from the command's stdin and writes prompts to
// stderr, so stdout stays clean for --format json.
type prompter struct {
	in  io.Reader
	rd  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, rd: bufio.NewReader(in), out: out}
}

func (p *prompter) Text(label string) (string, error) {
	fmt.Fprint(p.out, label)
	return p.line()
}

// Password disables echo when stdin is a terminal and falls back to a plain
// line read otherwise.
func (p *prompter) Password(label string) (string, error) {
	fmt.Fprint(p.out, label)

	if f, ok := p.in.(*os.File); ok && isTerminal(int(f.Fd())) {
		b, err := readPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return p.line()
}

func (p *prompter) line() (string, error) {
	s, err := p.rd.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// valueOrPrompt returns v when set, otherwise asks for it.
func (p *prompter) valueOrPrompt(v, label string) (string, error) {
	if strings.TrimSpace(v) != "" {
		return v, nil
	}
	return p.Text(label)
}

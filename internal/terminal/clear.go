// Package terminal provides utilities for terminal operations such as clearing
// prompts and reading secrets without echo.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"atomicgo.dev/cursor"
	"golang.org/x/term"
)

// Width returns the terminal width, or 80 when stdout is not a terminal.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// LinesFor returns how many rows text of textLength characters occupies at
// the given width, plus the row the cursor moves to after Enter.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	lines := int(math.Ceil(float64(textLength) / float64(width)))
	if lines < 1 {
		lines = 1
	}
	return lines + 1
}

// ClearPreviousLines erases a prompt and its answer once the user pressed Enter.
// textLength is the prompt plus the typed input, in characters.
func ClearPreviousLines(textLength int) {
	n := LinesFor(textLength, Width())
	cursor.StartOfLine()
	cursor.ClearLine()
	cursor.ClearLinesUp(n - 1)
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadLine prints prompt and reads one line from r.
func ReadLine(r *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret prints prompt and reads a line without echo when stdin is a
// terminal. Otherwise it falls back to ReadLine on r.
func ReadSecret(r *bufio.Reader, prompt string) (string, error) {
	if !IsInteractive() {
		return ReadLine(r, prompt)
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

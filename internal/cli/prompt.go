package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter wraps the interactive stdin prompts used by init, install,
// and the plugin commands. Reader and writer are injectable for tests.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{scanner: bufio.NewScanner(in), out: out}
}

// String asks for free text, returning def when the user presses Enter.
func (p *prompter) String(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	p.scanner.Scan()
	text := strings.TrimSpace(p.scanner.Text())
	if text == "" {
		return def
	}
	return text
}

// Int asks for a number, re-prompting until the input parses or is
// empty (which returns def).
func (p *prompter) Int(label string, def int) int {
	for {
		text := p.String(label, strconv.Itoa(def))
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintf(p.out, "Please enter a number.\n")
			continue
		}
		return n
	}
}

// Confirm asks a yes/no question.
func (p *prompter) Confirm(label string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s (%s): ", label, hint)
	p.scanner.Scan()
	switch strings.ToLower(strings.TrimSpace(p.scanner.Text())) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// Select shows a numbered list and returns the index of the chosen
// option, re-prompting on invalid input.
func (p *prompter) Select(label string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("nothing to select from")
	}

	fmt.Fprintf(p.out, "%s:\n", label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(p.out, "Choice [1]: ")
		if !p.scanner.Scan() {
			return 0, fmt.Errorf("input closed")
		}
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > len(options) {
			fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
			continue
		}
		return n - 1, nil
	}
}

// MultiSelect shows a numbered list and returns the indexes chosen via
// a comma-separated answer. An empty answer selects nothing.
func (p *prompter) MultiSelect(label string, options []string) ([]int, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("nothing to select from")
	}

	fmt.Fprintf(p.out, "%s:\n", label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(p.out, "Choices (comma-separated, empty for none): ")
		if !p.scanner.Scan() {
			return nil, fmt.Errorf("input closed")
		}
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" {
			return nil, nil
		}

		var picks []int
		valid := true
		seen := map[int]bool{}
		for _, part := range strings.Split(text, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 1 || n > len(options) {
				valid = false
				break
			}
			if !seen[n-1] {
				seen[n-1] = true
				picks = append(picks, n-1)
			}
		}
		if !valid {
			fmt.Fprintf(p.out, "Please enter numbers between 1 and %d.\n", len(options))
			continue
		}
		return picks, nil
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/abstract-engine/internal/citation"
	"github.com/pdiddy/abstract-engine/pkg/types"
)

// Decision is the outcome of reviewing one candidate abstract.
type Decision int

const (
	// Accept applies the candidate as reviewed.
	Accept Decision = iota
	// Skip leaves the record untouched and moves on.
	Skip
	// Quit stops the run; records already processed keep their updates.
	Quit
)

// Approver reviews a candidate abstract before it is written. The returned
// text replaces the candidate when the decision is Accept.
type Approver interface {
	Review(rec types.Record, abstract string) (Decision, string, error)
}

// ConsoleApprover prompts on the terminal with a yes/no/edit/quit loop.
// Edit reads replacement lines until a blank line and joins them with
// single spaces; an empty edit counts as a skip.
type ConsoleApprover struct {
	In  *bufio.Reader
	Out io.Writer
}

func NewConsoleApprover(in io.Reader, out io.Writer) *ConsoleApprover {
	return &ConsoleApprover{In: bufio.NewReader(in), Out: out}
}

func (a *ConsoleApprover) Review(rec types.Record, abstract string) (Decision, string, error) {
	fmt.Fprintf(a.Out, "\nProposed abstract for %s:\n", citation.Format(rec))
	fmt.Fprintf(a.Out, "%s\n", abstract)

	for {
		fmt.Fprint(a.Out, "Accept this abstract? [y]es / [n]o / [e]dit / [q]uit: ")
		line, err := a.In.ReadString('\n')
		if err != nil && line == "" {
			// Treat a closed stdin as quit rather than spinning.
			return Quit, "", nil
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return Accept, abstract, nil
		case "n", "no":
			return Skip, "", nil
		case "q", "quit":
			return Quit, "", nil
		case "e", "edit":
			edited := a.readEdit()
			if edited == "" {
				return Skip, "", nil
			}
			return Accept, edited, nil
		default:
			fmt.Fprintln(a.Out, "Please answer y, n, e, or q.")
		}
	}
}

func (a *ConsoleApprover) readEdit() string {
	fmt.Fprintln(a.Out, "Enter the corrected abstract (finish with an empty line):")
	var lines []string
	for {
		line, err := a.In.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, strings.TrimSpace(line))
		if err != nil {
			break
		}
	}
	return strings.Join(lines, " ")
}

// Modul: selector_prompt.go
// Beschreibung: Oeffentliche API des Head-Selectors.

// Package selector implements the arrow-key head picker of the interactive
// session.
package selector

import (
	"fmt"
	"os"

	"github.com/attnviz/attnviz/attention"
)

// Head lets the user pick one of heads heads, starting at current. It puts
// stdin into raw mode for the duration of the prompt.
func Head(prompt string, heads int, current attention.Head) (attention.Head, error) {
	if heads <= 0 {
		return 0, fmt.Errorf("no heads to select from")
	}

	items := make([]selectItem, 0, heads)
	for _, h := range attention.Heads(heads) {
		item := selectItem{Name: h.String()}
		if h == current {
			item.Description = "current"
		}
		items = append(items, item)
	}

	name, err := selectPrompt(prompt, items, int(current.Clamp(heads)))
	if err != nil {
		return current, err
	}

	return attention.ParseHead(name, heads)
}

func selectPrompt(prompt string, items []selectItem, selected int) (string, error) {
	ts, err := enterRawMode()
	if err != nil {
		return "", err
	}
	defer ts.restore()

	state := newSelectState(items, selected)
	var lastLineCount int

	render := func() {
		clearLines(os.Stderr, lastLineCount)
		lastLineCount = renderSelect(os.Stderr, prompt, state)
	}

	render()

	for {
		event, char, err := parseInput(os.Stdin)
		if err != nil {
			return "", err
		}

		done, result, err := state.handleInput(event, char)
		if done {
			clearLines(os.Stderr, lastLineCount)
			if err != nil {
				return "", err
			}
			return result, nil
		}

		render()
	}
}

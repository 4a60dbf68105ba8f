// Package selector asks which version to release next. Terminal prompts
// the operator; Scripted answers from configuration for CI and tests.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/randalmurphal/vrt/version"
)

// Question is the prompt shown for version selection.
const Question = "What should be the new version?"

// ErrNoMatch is returned when a scripted answer matches no choice.
var ErrNoMatch = errors.New("answer matches no choice")

// ErrAborted is returned when the operator cancels the prompt.
var ErrAborted = errors.New("selection aborted")

// Choice is one selectable answer.
type Choice struct {
	// Key is a stable alias such as "patch" that scripted answers may use.
	Key string
	// Value is returned when the choice is selected.
	Value string
	// Label is shown to the operator. Defaults to Value.
	Label string
}

func (c Choice) label() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Value
}

// Selector picks one of choices. def is the index of the default choice.
type Selector interface {
	Select(ctx context.Context, question string, choices []Choice, def int) (string, error)
}

// VersionChoices turns version candidates into choices keyed
// "keep", "patch", "minor" and "major". The bumped component and
// everything after it is rendered with bold.
func VersionChoices(candidates []version.Candidate, bold lipgloss.Style) []Choice {
	choices := make([]Choice, 0, len(candidates))
	for _, c := range candidates {
		key := c.Bumped.String()
		if c.Bumped == version.Unchanged {
			key = "keep"
		}
		choices = append(choices, Choice{
			Key:   key,
			Value: c.Version.String(),
			Label: emphasize(c, bold),
		})
	}
	return choices
}

func emphasize(c version.Candidate, bold lipgloss.Style) string {
	if c.Bumped == version.Unchanged {
		return c.Version.String()
	}
	parts := []string{
		fmt.Sprint(c.Version.Major),
		fmt.Sprint(c.Version.Minor),
		fmt.Sprint(c.Version.Patch),
	}
	i := int(c.Bumped)
	head := strings.Join(parts[:i], ".")
	tail := bold.Render(strings.Join(parts[i:], "."))
	if head == "" {
		return tail
	}
	return head + "." + tail
}

// Scripted answers without prompting.
type Scripted struct {
	// Answer is a choice key, a choice value, or empty for the default.
	Answer string
}

// Select implements Selector.
func (s Scripted) Select(_ context.Context, question string, choices []Choice, def int) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("%s: no choices", question)
	}
	answer := strings.TrimSpace(s.Answer)
	if answer == "" {
		if def < 0 || def >= len(choices) {
			def = 0
		}
		return choices[def].Value, nil
	}
	for _, c := range choices {
		if strings.EqualFold(answer, c.Key) || answer == c.Value {
			return c.Value, nil
		}
	}

	valid := make([]string, 0, len(choices)*2)
	for _, c := range choices {
		valid = append(valid, c.Key, c.Value)
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrNoMatch, answer, strings.Join(valid, ", "))
}

package selector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Terminal prompts on a terminal with an arrow-key list.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithInput sets the reader keys are read from.
func WithInput(r io.Reader) TerminalOption {
	return func(t *Terminal) { t.in = r }
}

// WithOutput sets the writer the prompt is drawn on.
func WithOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) { t.out = w }
}

// NewTerminal creates a Terminal selector bound to stdin and stderr.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{in: os.Stdin, out: os.Stderr}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Select implements Selector.
func (t *Terminal) Select(ctx context.Context, question string, choices []Choice, def int) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("%s: no choices", question)
	}

	p := tea.NewProgram(
		newPromptModel(question, choices, def),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("run prompt: %w", err)
	}

	m, ok := final.(promptModel)
	if !ok {
		return "", errors.New("unexpected prompt model")
	}
	if m.aborted || m.chosen == nil {
		return "", ErrAborted
	}
	return m.chosen.Value, nil
}

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

type choiceItem struct {
	choice Choice
}

func (i choiceItem) FilterValue() string { return i.choice.Value }

// choiceDelegate renders one line per choice with a cursor on the selection.
type choiceDelegate struct{}

func (choiceDelegate) Height() int                             { return 1 }
func (choiceDelegate) Spacing() int                            { return 0 }
func (choiceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (choiceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(choiceItem)
	if !ok {
		return
	}
	if index == m.Index() {
		fmt.Fprint(w, cursorStyle.Render("❯ ")+it.choice.label())
		return
	}
	fmt.Fprint(w, "  "+it.choice.label())
}

type promptModel struct {
	question string
	list     list.Model
	chosen   *Choice
	aborted  bool
}

func newPromptModel(question string, choices []Choice, def int) promptModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = choiceItem{choice: c}
	}

	l := list.New(items, choiceDelegate{}, 40, len(choices)+2)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	if def >= 0 && def < len(choices) {
		l.Select(def)
	}

	return promptModel{question: question, list: l}
}

func (m promptModel) Init() tea.Cmd { return nil }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			if it, ok := m.list.SelectedItem().(choiceItem); ok {
				c := it.choice
				m.chosen = &c
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	q := questionStyle.Render("? " + m.question)
	if m.chosen != nil {
		return q + " " + answerStyle.Render(m.chosen.Value) + "\n"
	}
	if m.aborted {
		return q + "\n"
	}
	return q + "\n" + m.list.View() + "\n"
}

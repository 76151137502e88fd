package components

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/ui/theme"
)

// OptionLabels prefixes the options of a question.
var OptionLabels = [...]string{"A", "B", "C", "D"}

// ChoiceMsg is emitted when the learner picks an option.
type ChoiceMsg struct {
	Option int
}

// Choice shows one question with lettered options. The cursor and the
// chosen option are independent so a learner can move around before
// changing an answer. After Reveal the correct option is highlighted and
// input is ignored.
type Choice struct {
	Question string
	Options  []string
	Cursor   int
	Chosen   int
	Correct  int
	Revealed bool
}

// NewChoice returns a Choice with no option chosen. chosen may be -1.
func NewChoice(question string, options []string, chosen int) Choice {
	c := Choice{Question: question, Options: options, Chosen: chosen, Correct: -1}
	if chosen >= 0 && chosen < len(options) {
		c.Cursor = chosen
	}
	return c
}

// Reveal marks correct as the right option and freezes the component.
func (c Choice) Reveal(correct int) Choice {
	c.Correct = correct
	c.Revealed = true
	return c
}

// Update moves the cursor and emits ChoiceMsg on enter or a number key.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if c.Revealed {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return c, nil
	}

	switch {
	case key.Matches(kmsg, keyUp):
		c.Cursor = max(c.Cursor-1, 0)
	case key.Matches(kmsg, keyDown):
		c.Cursor = min(c.Cursor+1, len(c.Options)-1)
	case key.Matches(kmsg, keyChoose):
		return c.choose(c.Cursor)
	default:
		if n, err := strconv.Atoi(kmsg.String()); err == nil && n >= 1 && n <= len(c.Options) {
			c.Cursor = n - 1
			return c.choose(n - 1)
		}
	}
	return c, nil
}

func (c Choice) choose(option int) (Choice, tea.Cmd) {
	c.Chosen = option
	return c, func() tea.Msg { return ChoiceMsg{Option: option} }
}

// View renders the question and its options wrapped to width.
func (c Choice) View(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(width).Render(c.Question))
	b.WriteString("\n\n")

	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor && !c.Revealed {
			prefix = "▸ "
		}
		mark := " "
		if i == c.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, OptionLabels[i%len(OptionLabels)], opt)
		b.WriteString(c.optionStyle(i).Width(width).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (c Choice) optionStyle(i int) lipgloss.Style {
	switch {
	case c.Revealed && i == c.Correct:
		return theme.Correct
	case c.Revealed && i == c.Chosen:
		return theme.Incorrect
	case c.Revealed:
		return lipgloss.NewStyle().Foreground(theme.TextDim)
	case i == c.Cursor:
		return theme.Selected
	default:
		return theme.Unselected
	}
}

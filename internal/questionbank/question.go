package questionbank

import (
	"errors"
	"fmt"
	"strings"
)

// OptionCount is the number of options every question carries.
const OptionCount = 4

// ExamSize is the number of questions in a generated exam.
const ExamSize = 10

// Question is a single multiple-choice item. Construct it with NewQuestion
// so the option count and correct index are checked.
type Question struct {
	ID      int                 `json:"id"`
	Text    string              `json:"text"`
	Options [OptionCount]string `json:"options"`
	Correct int                 `json:"correct"`
}

var (
	ErrEmptyText      = errors.New("question text is empty")
	ErrOptionCount    = fmt.Errorf("question must have exactly %d options", OptionCount)
	ErrCorrectIndex   = fmt.Errorf("correct index must be in [0,%d]", OptionCount-1)
	ErrEmptyOption    = errors.New("question option is empty")
	ErrQuestionNumber = errors.New("question id must be positive")
)

// NewQuestion validates its inputs and returns a Question.
func NewQuestion(id int, text string, options []string, correct int) (Question, error) {
	if id < 1 {
		return Question{}, ErrQuestionNumber
	}
	if strings.TrimSpace(text) == "" {
		return Question{}, ErrEmptyText
	}
	if len(options) != OptionCount {
		return Question{}, fmt.Errorf("%w: got %d", ErrOptionCount, len(options))
	}
	if correct < 0 || correct >= OptionCount {
		return Question{}, fmt.Errorf("%w: got %d", ErrCorrectIndex, correct)
	}

	q := Question{ID: id, Text: text, Correct: correct}
	for i, o := range options {
		if strings.TrimSpace(o) == "" {
			return Question{}, fmt.Errorf("%w: option %d", ErrEmptyOption, i)
		}
		q.Options[i] = o
	}
	return q, nil
}

// Validate re-checks the invariants of a Question that did not come from
// NewQuestion, e.g. one decoded from JSON.
func (q Question) Validate() error {
	_, err := NewQuestion(q.ID, q.Text, q.Options[:], q.Correct)
	return err
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	return q.Options[q.Correct]
}

// IsCorrect reports whether option is the correct index.
func (q Question) IsCorrect(option int) bool {
	return option == q.Correct
}

// item is an authored question before it is numbered. The correct option
// is always authored at index 0.
type item struct {
	text    string
	options [OptionCount]string
}

func (it item) substitute(placeholder, value string) item {
	out := item{text: strings.ReplaceAll(it.text, placeholder, value)}
	for i, o := range it.options {
		out.options[i] = strings.ReplaceAll(o, placeholder, value)
	}
	return out
}

func (it item) question(id int) Question {
	return Question{ID: id, Text: it.text, Options: it.options, Correct: 0}
}

package questionbank

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Engine builds exams from the specific banks and generic templates.
// It is safe for concurrent use.
type Engine struct {
	rules          []Rule
	shuffleOptions bool

	mu   sync.Mutex
	rand *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source. Tests use a seeded PCG.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithRules replaces the classifier rules.
func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithoutOptionShuffle keeps options in their authored order, so the
// correct index is always 0.
func WithoutOptionShuffle() Option {
	return func(e *Engine) { e.shuffleOptions = false }
}

// New returns an Engine using DefaultRules and a time-seeded source.
func New(opts ...Option) *Engine {
	now := uint64(time.Now().UnixNano())
	e := &Engine{
		rules:          DefaultRules,
		shuffleOptions: true,
		rand:           rand.New(rand.NewPCG(now, now>>17|1)),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Generate returns exactly ExamSize questions for title, numbered 1..ExamSize.
// Questions from the matched specific bank come first in bank order; the
// rest are generic templates with the placeholder replaced by title.
func (e *Engine) Generate(title string) []Question {
	e.mu.Lock()
	defer e.mu.Unlock()

	selected := make([]item, 0, ExamSize)
	selected = append(selected, banks[Classify(title, e.rules)]...)
	if len(selected) > ExamSize {
		selected = selected[:ExamSize]
	}

	templates := make([]item, len(genericTemplates))
	copy(templates, genericTemplates)
	shuffleItems(templates, e.rand)

	needed := ExamSize - len(selected)
	for i := range needed {
		selected = append(selected, templates[i%len(templates)].substitute(Placeholder, title))
	}

	out := make([]Question, len(selected))
	for i, it := range selected {
		q := it.question(i + 1)
		if e.shuffleOptions {
			q = ShuffleOptions(q, e.rand)
		}
		out[i] = q
	}
	return out
}

// Shuffle applies ShuffleOptions to every question using the engine's
// source. Used for questions that did not come from Generate.
func (e *Engine) Shuffle(qs []Question) []Question {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = ShuffleOptions(q, e.rand)
	}
	return out
}

package summary

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/certifica/internal/certificate"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/questionbank"
	"github.com/abhisek/certifica/internal/router"
	"github.com/abhisek/certifica/internal/screen"
)

type fakeConsumer struct {
	credits int
	calls   int
	err     error
}

func (f *fakeConsumer) Consume(_ context.Context, req exam.ConsumeRequest) (exam.CreditResult, error) {
	f.calls++
	if f.err != nil {
		return exam.CreditResult{}, f.err
	}
	if f.credits < 1 {
		return exam.CreditResult{Success: false, Error: "insufficient credits", Redirect: "/offer"}, nil
	}
	f.credits--
	return exam.CreditResult{Success: true, Remaining: f.credits, CertificateID: "cert-" + req.AttemptID}, nil
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "exam" }
func (s *stubScreen) Title() string                          { return "Prova" }

// submitted returns a scored session with correct right answers.
func submitted(t *testing.T, correct int) *exam.Session {
	t.Helper()
	qs := make([]questionbank.Question, questionbank.ExamSize)
	for i := range qs {
		q, err := questionbank.NewQuestion(i+1, fmt.Sprintf("Pergunta %d", i+1),
			[]string{"a", "b", "c", "d"}, 0)
		require.NoError(t, err)
		qs[i] = q
	}
	s := exam.NewSession("att-1", 5, exam.Course{ID: 2, Title: "Contabilidade"}, qs)
	for i, q := range qs {
		opt := 1
		if i < correct {
			opt = 0
		}
		require.NoError(t, s.SelectAnswer(q.ID, opt))
	}
	_, err := s.Submit()
	require.NoError(t, err)
	return s
}

func labels(s *SummaryScreen) []string {
	out := make([]string, len(s.menu.Items))
	for i, it := range s.menu.Items {
		out[i] = it.Label
	}
	return out
}

func enter(s *SummaryScreen) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func TestPassedOffersCertificate(t *testing.T) {
	consumer := &fakeConsumer{credits: 2}
	s := New(Deps{
		Session:  submitted(t, 7),
		Consumer: consumer,
		Certificate: func(_ context.Context, id string) (certificate.View, error) {
			return certificate.View{ID: id, Code: "ABC123", LearnerName: "Maria", CourseTitle: "Contabilidade", IssuedAt: time.Now()}, nil
		},
		Retry: func() screen.Screen { return &stubScreen{} },
	})
	assert.Equal(t, []string{"Emitir certificado (1 crédito)", "Revisar questões", "Sair"}, labels(s))
	assert.Contains(t, s.View(100, 40), "Aprovado!")
	assert.Contains(t, s.View(100, 40), "Você acertou 7 de 10")

	cmd := enter(s)
	require.NotNil(t, cmd)
	assert.True(t, s.requesting)
	s.Update(cmd())

	assert.False(t, s.requesting)
	require.NotNil(t, s.issued)
	assert.Equal(t, "cert-att-1", s.issued.CertificateID)
	assert.Equal(t, 1, s.issued.Remaining)
	require.NotNil(t, s.card)
	view := s.View(100, 40)
	assert.Contains(t, view, "ABC123")
	assert.Contains(t, view, "Créditos restantes: 1")
	assert.Equal(t, "Certificado emitido", s.menu.Items[0].Label)
	assert.True(t, s.menu.Items[0].Disabled)
	assert.Equal(t, 1, consumer.calls)
}

func TestInsufficientCreditsPointsToOffer(t *testing.T) {
	s := New(Deps{Session: submitted(t, 6), Consumer: &fakeConsumer{}})

	s.Update(enter(s)())
	assert.Nil(t, s.issued)
	assert.Contains(t, s.notice, "/offer")
	assert.Contains(t, s.View(100, 40), "Créditos insuficientes")

	// The option stays available after buying credits.
	assert.False(t, s.menu.Items[0].Disabled)
}

func TestConsumerErrorIsShown(t *testing.T) {
	s := New(Deps{Session: submitted(t, 10), Consumer: &fakeConsumer{err: errors.New("db locked")}})
	s.Update(enter(s)())
	assert.Contains(t, s.notice, "db locked")
	assert.Nil(t, s.issued)
}

func TestFailedOffersRetry(t *testing.T) {
	s := New(Deps{
		Session:  submitted(t, 5),
		Consumer: &fakeConsumer{credits: 1},
		Retry:    func() screen.Screen { return &stubScreen{} },
	})
	assert.Equal(t, []string{"Refazer a prova", "Revisar questões", "Sair"}, labels(s))
	view := s.View(100, 40)
	assert.Contains(t, view, "Reprovado")
	assert.Contains(t, view, "6 acertos")

	cmd := enter(s)
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &stubScreen{}, msg.Screen)
}

func TestReviewListsAnswers(t *testing.T) {
	s := New(Deps{Session: submitted(t, 9)})
	assert.Equal(t, []string{"Revisar questões", "Sair"}, labels(s))

	cmd := enter(s)
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	review, ok := msg.Screen.(*ReviewScreen)
	require.True(t, ok)

	view := review.View(100, 60)
	assert.Contains(t, view, "1. Pergunta 1")
	assert.Contains(t, view, "Correta: A) a")
	assert.Equal(t, "esc", review.KeyHints()[0].Key)
}

func TestQuit(t *testing.T) {
	s := New(Deps{Session: submitted(t, 9)})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	cmd := enter(s)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/certifica/internal/screen"
)

// stubScreen counts the messages it receives.
type stubScreen struct {
	title   string
	initRan bool
	updates int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) {
	s.updates++
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPushAndPop(t *testing.T) {
	intro := &stubScreen{title: "intro"}
	r := New(intro)

	exam := &stubScreen{title: "exam"}
	r.Push(exam)
	if r.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", r.Depth())
	}
	if r.Active() != exam {
		t.Errorf("expected exam on top, got %q", r.Active().Title())
	}
	if !exam.initRan {
		t.Error("expected Init() to run on pushed screen")
	}

	r.Pop()
	if r.Active() != intro {
		t.Errorf("expected intro after pop, got %q", r.Active().Title())
	}
}

func TestPopKeepsLastScreen(t *testing.T) {
	r := New(&stubScreen{title: "intro"})
	r.Pop()
	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	r := New(&stubScreen{title: "intro"})
	exam := &stubScreen{title: "exam"}
	r.Push(exam)

	result := &stubScreen{title: "result"}
	r.Update(ReplaceScreenMsg{Screen: result})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2 after replace, got %d", r.Depth())
	}
	if r.Active() != result {
		t.Errorf("expected result on top, got %q", r.Active().Title())
	}
	if !result.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestUpdateReachesOnlyActive(t *testing.T) {
	intro := &stubScreen{title: "intro"}
	r := New(intro)
	exam := &stubScreen{title: "exam"}
	r.Update(PushScreenMsg{Screen: exam})

	r.Update("tick")
	if exam.updates != 1 || intro.updates != 0 {
		t.Errorf("updates: exam=%d intro=%d", exam.updates, intro.updates)
	}
	if got := r.View(80, 24); got != "exam" {
		t.Errorf("View = %q", got)
	}

	r.Update(PopScreenMsg{})
	if r.Active() != intro {
		t.Errorf("expected intro after PopScreenMsg, got %q", r.Active().Title())
	}
}

package exam

import "github.com/abhisek/certifica/internal/questionbank"

// QuestionView is a question as shown to the learner. Correct is only
// populated once the attempt is submitted.
type QuestionView struct {
	ID      int                              `json:"id"`
	Text    string                           `json:"text"`
	Options [questionbank.OptionCount]string `json:"options"`
	Correct *int                             `json:"correct,omitempty"`
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID            string         `json:"id"`
	CourseID      int            `json:"courseId"`
	CourseTitle   string         `json:"courseTitle"`
	Origin        string         `json:"origin,omitempty"`
	Phase         string         `json:"phase"`
	TimeRemaining int            `json:"timeRemaining"`
	Questions     []QuestionView `json:"questions"`
	Answers       map[int]int    `json:"answers"`
	CanSubmit     bool           `json:"canSubmit"`
	Result        *Result        `json:"result,omitempty"`
	Busy          bool           `json:"busy"`
	Certificate   *CreditResult  `json:"certificate,omitempty"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.id,
		CourseID:      s.course.ID,
		CourseTitle:   s.course.Title,
		Origin:        s.origin,
		Phase:         s.phase.String(),
		TimeRemaining: s.timeRemaining,
		Questions:     make([]QuestionView, len(s.questions)),
		Answers:       make(map[int]int, len(s.answers)),
		CanSubmit:     s.phase == PhaseInProgress && len(s.answers) == len(s.questions),
		Busy:          s.busy,
	}
	for i, q := range s.questions {
		v := QuestionView{ID: q.ID, Text: q.Text, Options: q.Options}
		if s.phase == PhaseSubmitted {
			correct := q.Correct
			v.Correct = &correct
		}
		snap.Questions[i] = v
	}
	for k, v := range s.answers {
		snap.Answers[k] = v
	}
	if s.phase == PhaseSubmitted {
		r := s.result
		snap.Result = &r
	}
	if s.certificate != nil {
		c := *s.certificate
		snap.Certificate = &c
	}
	return snap
}

// Questions returns a copy of the questions including correct indexes.
func (s *Session) Questions() []questionbank.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]questionbank.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

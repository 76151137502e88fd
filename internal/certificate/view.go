package certificate

import (
	"time"

	"github.com/abhisek/certifica/internal/store"
)

// Printed when the learner or course record leaves a field blank.
const (
	DefaultLearnerName   = "Aluno IEB"
	DefaultCPF           = "000.000.000-00"
	DefaultDurationHours = 80
)

// DefaultModules is the programme listed when a course has no modules.
var DefaultModules = []string{
	"Introdução ao curso",
	"Fundamentos teóricos e Prática",
	"Avaliação de Competências",
	"Projeto Final e Conclusão",
}

// View holds everything printed on a certificate.
type View struct {
	ID            string
	Code          string
	LearnerName   string
	CPF           string
	CourseTitle   string
	DurationHours int
	Score         int
	IssuedAt      time.Time
	Modules       []string
}

// FromDetail builds a View from a stored certificate.
func FromDetail(d *store.CertificateDetail) View {
	v := View{
		ID:            d.ID,
		Code:          d.Code,
		LearnerName:   d.UserName,
		CPF:           d.UserCPF,
		CourseTitle:   d.CourseTitle,
		DurationHours: d.DurationHours,
		Score:         d.Score,
		IssuedAt:      d.IssuedAt,
		Modules:       d.Modules,
	}
	return v
}

// WithDefaults fills blank fields with the printed defaults.
func (v View) WithDefaults() View {
	if v.LearnerName == "" {
		v.LearnerName = DefaultLearnerName
	}
	if v.CPF == "" {
		v.CPF = DefaultCPF
	}
	if v.DurationHours <= 0 {
		v.DurationHours = DefaultDurationHours
	}
	if len(v.Modules) == 0 {
		v.Modules = DefaultModules
	}
	return v
}

// IssueDate formats the issue date as dd/mm/yyyy.
func (v View) IssueDate() string {
	if v.IssuedAt.IsZero() {
		return ""
	}
	return v.IssuedAt.Format("02/01/2006")
}

// Package catalog holds the default course list and the descriptions given
// to courses created without one.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/certifica/internal/store"
)

// Defaults for seeded and ad-hoc courses.
const (
	SeedPriceCents    = 9990
	SeedDurationHours = 40
	CustomDuration    = 60
)

// Titles is the default catalog in display order.
var Titles = []string{
	"Auxiliar de creche", "AVE-Auxiliar de vida escolar", "Educação Especial", "AEE",
	"Auxiliar Administrativo", "Recursos Humanos", "Informática Administrativa", "Logística",
	"Segurança do trabalho", "Agente de Portaria e Vigia Escolar", "Inteligência Emocional",
	"Agente de Saúde", "Agente de combate as endemias", "Auxiliar Jurídico", "Operador de Caixa",
	"Recepcionista e Atendimento ao Cliente", "Liderança", "Negócios do Zero", "Empregabilidade",
	"Oratória e Comunicação", "Desenvolvimento Pessoal", "Vendas", "Inglês Básico",
	"Inglês Intermediário", "Inglês Avançado", "Operador de computador", "Cuidador de idosos",
	"Noções de elétrica Básica", "Estética Básica e limpeza de pele", "Maquiagem Básica",
	"Designer de Sobrancelhas", "Extensão de cilios", "Massagem", "Depilação",
	"Manutenção de celular", "Barbeiro", "Alfabetização", "Libras", "Secretariado",
	"Primeiros socorros", "Aplicação de Injetáveis", "Balconista de Farmácia", "Farmacologia",
	"Vendedor", "Padeiro", "Marketing Digital", "Vendas Onlines", "Manutenção de Notebook",
	"Manutenção de Impressoras", "Rede de computadores", "Provas para o ENEM", "Estoquista",
	"Auxiliar Bucal", "Manicure e Pedicure", "Doces e Salgados", "Furo Humanizado", "Excel",
	"Word", "Power Point", "Internet", "Windows", "Como gravar videos e editar no CapCut",
	"Canva", "Corel Draw", "Foto Shop", "Veterinário", "Redação", "Matemática", "Português",
	"Administração", "Psicologia Básica", "Introdução a Pedagogia", "Educação infantil",
	"Ludicidade", "Ludopedagogia", "Psicopedagogia", "Neurociência", "Informática aplicada a educação",
	"Metodologias ativas de aprendizagem", "Empreendedorismo", "Marketing",
	"Introdução ao serviço social", "Enfermagem básica", "Saúde da Mulher", "Recepcionista de UBS",
	"Noções de Triagem", "APH Atendimento pré hospitalar",
}

// SeedCourse is the catalog entry for title.
func SeedCourse(title string) store.NewCourse {
	return store.NewCourse{
		Title:         title,
		Description:   fmt.Sprintf("Curso completo de %s com certificação profissional.", title),
		PriceCents:    SeedPriceCents,
		DurationHours: SeedDurationHours,
	}
}

// Custom fills the blanks of a course added by hand.
func Custom(nc store.NewCourse) store.NewCourse {
	nc.Title = strings.TrimSpace(nc.Title)
	nc.Description = strings.TrimSpace(nc.Description)
	if nc.Description == "" {
		nc.Description = fmt.Sprintf("Certificação profissional em %s.", nc.Title)
	}
	if nc.DurationHours == 0 {
		nc.DurationHours = CustomDuration
	}
	return nc
}

// SeedResult counts what Seed did.
type SeedResult struct {
	Created int
	Skipped int
}

// Seed inserts every catalog title that is not in the store yet.
func Seed(ctx context.Context, courses store.CourseRepo, logger *slog.Logger) (SeedResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var res SeedResult
	for _, title := range Titles {
		_, err := courses.Create(ctx, SeedCourse(title))
		switch {
		case errors.Is(err, store.ErrDuplicateTitle):
			res.Skipped++
			logger.Debug("course already exists", "title", title)
		case err != nil:
			return res, fmt.Errorf("seed %q: %w", title, err)
		default:
			res.Created++
			logger.Debug("created course", "title", title)
		}
	}
	logger.Info("catalog seeded", "created", res.Created, "skipped", res.Skipped)
	return res, nil
}

package certificate

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed certificate.html.tmpl
var pageSource string

var page = template.Must(template.New("certificate").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
}).Parse(pageSource))

type pageData struct {
	View
	IssueDate string
	Registro  string
	Livro     string
	Folha     string
}

// Render writes the printable two-sided certificate page for v.
func Render(w io.Writer, v View) error {
	v = v.WithDefaults()
	registro, livro, folha := Registry(v.Code)
	data := pageData{
		View:      v,
		IssueDate: v.IssueDate(),
		Registro:  registro,
		Livro:     livro,
		Folha:     folha,
	}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render certificate %s: %w", v.Code, err)
	}
	return nil
}

package questionbank

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is a coarse topic used to pick a specific question bank.
type Category string

const (
	CategoryNone   Category = ""
	CategoryTech   Category = "tech"
	CategoryAdmin  Category = "admin"
	CategoryHealth Category = "health"
)

// Rule pairs a predicate over a normalized title with the category it
// selects.
type Rule struct {
	Category Category
	Match    func(normalized string) bool
}

// ContainsAny returns a predicate that matches when the normalized title
// contains at least one of the keywords.
func ContainsAny(keywords ...string) func(string) bool {
	return func(s string) bool {
		for _, k := range keywords {
			if strings.Contains(s, k) {
				return true
			}
		}
		return false
	}
}

// DefaultRules is evaluated in order; the first matching rule wins.
var DefaultRules = []Rule{
	{Category: CategoryTech, Match: ContainsAny("excel", "word", "power", "informatica", "computador")},
	{Category: CategoryAdmin, Match: ContainsAny("adm", "rh", "lider", "venda", "gestao", "negocio")},
	{Category: CategoryHealth, Match: ContainsAny("saude", "enfermagem", "socorro", "farmacia", "cuidador")},
}

// Normalize lowercases a title and strips combining marks so "Informática"
// matches the "informatica" keyword.
func Normalize(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	return strings.ToLower(folded)
}

// Classify returns the category of the first rule matching title, or
// CategoryNone.
func Classify(title string, rules []Rule) Category {
	normalized := Normalize(title)
	for _, r := range rules {
		if r.Match(normalized) {
			return r.Category
		}
	}
	return CategoryNone
}

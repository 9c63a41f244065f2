// Package section models the fixed set of pages a project moves through.
//
// Each Section is resolved once at the routing boundary and carries everything
// that differs between pages: its route, its title, whether entering it loads
// content on its own, and how a question asked on it becomes a prompt.
package section

import (
	"fmt"
	"strings"
)

type Section struct {
	key      string
	route    string
	title    string
	autoLoad bool
	askable  bool
	order    int
	prompt   func(project string) string
	hint     string
}

var (
	Overview = Section{
		key:      "overview",
		route:    "visao",
		title:    "Visão Geral",
		autoLoad: true,
		askable:  true,
		order:    1,
		prompt: func(project string) string {
			return fmt.Sprintf("Explique de forma acadêmica a visão geral do projeto '%s'.", project)
		},
		hint: "visão geral do projeto",
	}
	Materials = Section{
		key:      "materials",
		route:    "materiais",
		title:    "Materiais",
		autoLoad: true,
		askable:  true,
		order:    2,
		prompt: func(project string) string {
			return fmt.Sprintf("Liste materiais para o projeto '%s' com quantidades.", project)
		},
		hint: "materiais e quantidades",
	}
	Assembly = Section{
		key:      "assembly",
		route:    "montagem",
		title:    "Montagem",
		autoLoad: true,
		askable:  true,
		order:    3,
		prompt: func(project string) string {
			return fmt.Sprintf("Explique o passo a passo de montagem do projeto '%s'.", project)
		},
		hint: "montagem passo a passo",
	}
	Procedure = Section{
		key:      "procedure",
		route:    "procedimento",
		title:    "Procedimento",
		autoLoad: true,
		askable:  true,
		order:    4,
		prompt: func(project string) string {
			return fmt.Sprintf("Explique o procedimento experimental do projeto '%s'.", project)
		},
		hint: "procedimento experimental",
	}
	General = Section{
		key:     "general",
		route:   "perguntar",
		title:   "Perguntas adicionais",
		askable: true,
		order:   5,
		hint:    "pergunta livre",
	}
	Report = Section{
		key:   "report",
		route: "relatorio",
		title: "Relatório",
		order: 6,
	}
)

// All lists every section in report order.
var All = []Section{Overview, Materials, Assembly, Procedure, General, Report}

// Required lists the sections a complete report is expected to cover.
var Required = []Section{Overview, Materials, Assembly, Procedure}

var aliases = map[string]Section{
	"overview":     Overview,
	"visao":        Overview,
	"visão":        Overview,
	"visao-geral":  Overview,
	"visão-geral":  Overview,
	"materials":    Materials,
	"materiais":    Materials,
	"assembly":     Assembly,
	"montagem":     Assembly,
	"procedure":    Procedure,
	"procedimento": Procedure,
	"general":      General,
	"perguntar":    General,
	"pergunta":     General,
	"question":     General,
	"ask":          General,
	"report":       Report,
	"relatorio":    Report,
	"relatório":    Report,
}

// Parse resolves a key, a route ("/materiais") or a Portuguese name.
func Parse(s string) (Section, bool) {
	name := strings.ToLower(strings.Trim(strings.TrimSpace(s), "/"))
	sec, ok := aliases[name]
	return sec, ok
}

// MustParse is Parse for constants known at compile time.
func MustParse(s string) Section {
	sec, ok := Parse(s)
	if !ok {
		panic(fmt.Sprintf("section: unknown section %q", s))
	}
	return sec
}

func (s Section) Key() string   { return s.key }
func (s Section) Title() string { return s.title }
func (s Section) Order() int    { return s.order }

// Route is the path the section is served on, with a leading slash.
func (s Section) Route() string { return "/" + s.route }

// AutoLoad reports whether entering the section fetches content without a question.
func (s Section) AutoLoad() bool { return s.autoLoad }

// Askable reports whether questions can be sent to the section.
func (s Section) Askable() bool { return s.askable }

// RequiresQuestion is true for sections that have no default prompt.
func (s Section) RequiresQuestion() bool { return s.askable && s.prompt == nil }

func (s Section) IsZero() bool { return s.key == "" }

// Equal compares sections by key; Section values are not comparable with ==.
func (s Section) Equal(other Section) bool { return s.key == other.key }

func (s Section) String() string { return s.key }

// Prompt turns a question into the text sent to the model. An empty question
// falls back to the section's default prompt.
func (s Section) Prompt(project, question string) (string, error) {
	if !s.askable {
		return "", fmt.Errorf("section %s does not accept questions", s.key)
	}
	project = strings.TrimSpace(project)
	question = strings.TrimSpace(question)

	if question == "" {
		if s.prompt == nil {
			return "", fmt.Errorf("section %s requires a question", s.key)
		}
		return s.prompt(project), nil
	}

	return fmt.Sprintf("Projeto: '%s'\nSeção: %s (%s)\nPergunta: %s", project, s.title, s.hint, question), nil
}

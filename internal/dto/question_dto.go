package dto

import (
	"strings"
	"time"
)

// QuestionRequest accepts both the English field names and the Portuguese
// ones older clients send. Normalize folds them into Question and Project.
type QuestionRequest struct {
	Question  string `json:"question" validate:"max=4000"`
	Pergunta  string `json:"pergunta,omitempty" validate:"-"`
	Project   string `json:"project" validate:"required,max=200"`
	Projeto   string `json:"projeto,omitempty" validate:"-"`
	SessionId string `json:"session_id" validate:"max=100"`
}

func (r *QuestionRequest) Normalize() {
	r.Question = firstNonEmpty(r.Question, r.Pergunta)
	r.Project = firstNonEmpty(r.Project, r.Projeto)
	r.SessionId = strings.TrimSpace(r.SessionId)
	r.Pergunta, r.Projeto = "", ""
}

type QuestionResponse struct {
	Resposta    string   `json:"resposta"`
	Referencias []string `json:"referencias"`
	Notas       string   `json:"notas,omitempty"`
	Secao       string   `json:"secao"`
	Projeto     string   `json:"projeto"`
	SessionId   string   `json:"session_id"`
}

type HistoryRequest struct {
	SessionId string `validate:"required,max=100"`
	Project   string `validate:"max=200"`
}

type ExchangeDTO struct {
	Id          string    `json:"id"`
	Secao       string    `json:"secao"`
	Projeto     string    `json:"projeto"`
	Pergunta    string    `json:"pergunta,omitempty"`
	Resposta    string    `json:"resposta"`
	Referencias []string  `json:"referencias"`
	Notas       string    `json:"notas,omitempty"`
	CriadoEm    time.Time `json:"criado_em"`
}

type HistoryResponse struct {
	SessionId string        `json:"session_id"`
	Total     int           `json:"total"`
	Itens     []ExchangeDTO `json:"itens"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

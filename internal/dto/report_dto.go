package dto

import "strings"

type ReportRequest struct {
	Project   string `json:"project" validate:"required,max=200"`
	Projeto   string `json:"projeto,omitempty" validate:"-"`
	SessionId string `json:"session_id" validate:"required,max=100"`
}

func (r *ReportRequest) Normalize() {
	r.Project = firstNonEmpty(r.Project, r.Projeto)
	r.SessionId = strings.TrimSpace(r.SessionId)
	r.Projeto = ""
}

type ReportResponse struct {
	Filename string
	Content  []byte
}

package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantContent    string
		wantBooks      []string
		wantNotes      string
		wantStructured bool
	}{
		{
			name:           "plain json",
			raw:            `{"content":"Use garrafas PET.","books":["Halliday. Fundamentos de Física"],"notes":"ok"}`,
			wantContent:    "Use garrafas PET.",
			wantBooks:      []string{"Halliday. Fundamentos de Física"},
			wantNotes:      "ok",
			wantStructured: true,
		},
		{
			name:           "fenced json with prose",
			raw:            "```json\n{\"content\": \"Passo 1\", \"books\": []}\n```",
			wantContent:    "Passo 1",
			wantBooks:      []string{},
			wantStructured: true,
		},
		{
			name:           "book objects",
			raw:            `{"content":"x","books":[{"author":"Nussenzveig","title":"Curso de Física Básica"},{"titulo":"Física Clássica"},"  "]}`,
			wantContent:    "x",
			wantBooks:      []string{"Nussenzveig. Curso de Física Básica", "Física Clássica"},
			wantStructured: true,
		},
		{
			name:           "content as list",
			raw:            `{"content":["a","b"]}`,
			wantContent:    "a\n\nb",
			wantBooks:      []string{},
			wantStructured: true,
		},
		{
			name:        "not json",
			raw:         "  **Materiais**: 3 garrafas  ",
			wantContent: "**Materiais**: 3 garrafas",
			wantBooks:   []string{},
			wantNotes:   InvalidJSONNote,
		},
		{
			name:        "json without content",
			raw:         `{"answer":"x"}`,
			wantContent: `{"answer":"x"}`,
			wantBooks:   []string{},
			wantNotes:   InvalidJSONNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.wantContent, got.Content)
			assert.Equal(t, tt.wantBooks, got.Books)
			assert.Equal(t, tt.wantNotes, got.Notes)
			assert.Equal(t, tt.wantStructured, got.Structured)
		})
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"A", " B ", "A", "", "B", "C"})
	assert.Equal(t, []string{"A", "B", "C"}, got)
}

package answer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const InvalidJSONNote = "JSON inválido retornado"

// SystemInstruction asks the model for the shape Parse understands.
const SystemInstruction = "Você deve responder APENAS em JSON válido com os campos " +
	"{content, books, notes}. " +
	"content deve conter a resposta em texto com formatação markdown. " +
	"books deve conter autores e obras acadêmicas se possível."

// Answer is a model reply split into the text shown to the user and the
// references collected for the report.
type Answer struct {
	Content    string
	Books      []string
	Notes      string
	Structured bool
}

type rawAnswer struct {
	Content json.RawMessage   `json:"content"`
	Books   []json.RawMessage `json:"books"`
	Notes   json.RawMessage   `json:"notes"`
}

// Parse reads a model reply. Replies that are not the expected JSON object are
// kept whole as Content.
func Parse(raw string) Answer {
	text := strings.TrimSpace(raw)
	body := ExtractJSON(text)

	var ra rawAnswer
	if err := json.Unmarshal([]byte(body), &ra); err != nil || ra.Content == nil {
		return Answer{Content: text, Books: []string{}, Notes: InvalidJSONNote}
	}

	books := make([]string, 0, len(ra.Books))
	for _, b := range ra.Books {
		if s := bookString(b); s != "" {
			books = append(books, s)
		}
	}

	return Answer{
		Content:    strings.TrimSpace(flatten(ra.Content)),
		Books:      books,
		Notes:      strings.TrimSpace(flatten(ra.Notes)),
		Structured: true,
	}
}

// ExtractJSON removes a ```json ... ``` wrapper and any prose around the object.
func ExtractJSON(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// flatten accepts a JSON string, or a list of strings joined as paragraphs.
func flatten(msg json.RawMessage) string {
	if len(msg) == 0 || string(msg) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(msg, &list); err == nil {
		return strings.Join(list, "\n\n")
	}
	return string(msg)
}

func bookString(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(msg, &obj); err != nil {
		return ""
	}

	author := firstString(obj, "author", "autor", "authors", "autores")
	title := firstString(obj, "title", "titulo", "título", "obra", "book")
	switch {
	case author != "" && title != "":
		return fmt.Sprintf("%s. %s", author, title)
	case title != "":
		return title
	default:
		return author
	}
}

func firstString(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return ""
}

// Dedupe keeps the first occurrence of every non-blank reference.
func Dedupe(books []string) []string {
	seen := make(map[string]struct{}, len(books))
	out := make([]string, 0, len(books))
	for _, b := range books {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

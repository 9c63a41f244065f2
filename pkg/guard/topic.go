package guard

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultTopics is the Newton's-laws vocabulary the platform was built around.
var DefaultTopics = []string{
	"leis de newton", "força", "movimento", "massa", "aceleração", "inércia",
	"gravitacional", "peso", "física", "dinâmica", "projetos", "resumos",
	"mapas mentais", "equações", "experimentos", "segunda lei", "terceira lei",
	"primeira lei", "lei da ação e reação", "queda livre", "atrito",
}

const DeniedMessage = "Tema negado. Permitido somente assuntos das Leis de Newton."

// TopicGuard accepts text that mentions at least one allowed topic.
// Matching ignores case and accents.
type TopicGuard struct {
	topics []string
}

func NewTopicGuard(topics []string) *TopicGuard {
	normalized := make([]string, 0, len(topics))
	for _, t := range topics {
		if n := Normalize(t); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &TopicGuard{topics: normalized}
}

// Allowed reports whether any of the texts mentions an allowed topic.
func (g *TopicGuard) Allowed(texts ...string) bool {
	for _, text := range texts {
		n := Normalize(text)
		if n == "" {
			continue
		}
		for _, topic := range g.topics {
			if strings.Contains(n, topic) {
				return true
			}
		}
	}
	return false
}

// Normalize lowercases s and strips diacritics.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// Exchange is one question/answer pair recorded against a session.
type Exchange struct {
	Id         uuid.UUID `json:"id"`
	SessionId  string    `json:"session_id"`
	Project    string    `json:"project"`
	Section    string    `json:"section"` // section key, see pkg/section
	Question   string    `json:"question"`
	Prompt     string    `json:"prompt"`
	Answer     string    `json:"answer"`
	References []string  `json:"references"`
	Notes      string    `json:"notes"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

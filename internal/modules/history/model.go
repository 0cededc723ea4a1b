package history

import (
	"errors"
	"time"

	"tripmate/internal/ai"
)

// DefaultLimit is how many messages GET /api/chat/messages returns.
const DefaultLimit = 50

// ErrInvalidRole is returned when appending anything other than user or assistant text.
var ErrInvalidRole = errors.New("history stores only user and assistant messages")

// Entry is one persisted chat message.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      ai.Role   `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Message converts an entry back into conversation form.
func (e Entry) Message() ai.Message {
	return ai.Message{Role: e.Role, Content: e.Content}
}

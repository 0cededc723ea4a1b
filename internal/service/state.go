package service

import (
	"slices"

	"tripmate/internal/ai"
)

// ConversationState is the explicit value threaded through one turn.
// Messages are append-only; With never mutates the receiver's backing array.
type ConversationState struct {
	UserID      string
	Messages    []ai.Message
	TripContext string
}

// NewConversationState seeds a turn with prior history and the caller's trip context.
func NewConversationState(userID string, history []ai.Message, tripContext string) ConversationState {
	return ConversationState{
		UserID:      userID,
		Messages:    slices.Clone(history),
		TripContext: tripContext,
	}
}

// With returns a copy of s with msgs appended.
func (s ConversationState) With(msgs ...ai.Message) ConversationState {
	next := s
	next.Messages = append(slices.Clip(s.Messages), msgs...)
	return next
}

// UserTexts returns the content of user-authored messages, oldest first.
func (s ConversationState) UserTexts() []string {
	var out []string
	for _, m := range s.Messages {
		if m.Role == ai.RoleUser && m.Content != "" {
			out = append(out, m.Content)
		}
	}
	return out
}

// Last returns the newest message, if any.
func (s ConversationState) Last() (ai.Message, bool) {
	if len(s.Messages) == 0 {
		return ai.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

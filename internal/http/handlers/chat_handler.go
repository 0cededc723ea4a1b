// README: Streaming chat turn handler (SSE). Quota and history are checked before the stream opens.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/ai"
	"tripmate/internal/logger"
	"tripmate/internal/modules/quota"
	"tripmate/internal/service"
)

const (
	maxUserInputLen  = 8000
	persistTimeout   = 5 * time.Second
	maxClientHistory = 50
)

// TurnRunner runs one conversation turn. *service.Planner implements it.
type TurnRunner interface {
	RunTurn(ctx context.Context, state service.ConversationState, userInput string, emit service.Emitter) (service.TurnResult, error)
}

// TripContextSource renders a user's trips for the model.
type TripContextSource interface {
	Context(ctx context.Context, userID string) string
}

// ChatHistory seeds and records conversations.
type ChatHistory interface {
	Seed(ctx context.Context, userID string) ([]ai.Message, error)
	RecordTurn(ctx context.Context, userID, userText, answer string) error
}

// TurnQuota consumes one turn of a user's allowance.
type TurnQuota interface {
	UseTurn(ctx context.Context, uid string) error
}

type ChatHandler struct {
	planner TurnRunner
	trips   TripContextSource
	history ChatHistory
	quota   TurnQuota
	log     *logger.Logger
}

// NewChatHandler builds the handler. trips, history and quota may be nil.
func NewChatHandler(planner TurnRunner, trips TripContextSource, history ChatHistory, quota TurnQuota, log *logger.Logger) *ChatHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatHandler{planner: planner, trips: trips, history: history, quota: quota, log: log.With("chat")}
}

type historyItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	UserInput string        `json:"user_input"`
	UserID    string        `json:"user_id"`
	History   []historyItem `json:"history"`
}

type tokenFrame struct {
	AIResponse string `json:"ai_response"`
}

type toolFrame struct {
	Phase   string `json:"phase"`
	Tool    string `json:"tool"`
	CallID  string `json:"call_id"`
	Success *bool  `json:"success,omitempty"`
}

// Chat handles POST /chat-trip.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.UserInput = strings.TrimSpace(req.UserInput)
	if req.UserID == "" || req.UserInput == "" {
		writeError(c, http.StatusBadRequest, "missing user_id or user_input")
		return
	}
	if !isValidID(req.UserID) {
		writeError(c, http.StatusBadRequest, "invalid user_id")
		return
	}
	if len(req.UserInput) > maxUserInputLen {
		writeError(c, http.StatusRequestEntityTooLarge, "user_input too long")
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}

	ctx := c.Request.Context()
	if h.quota != nil {
		if err := h.quota.UseTurn(ctx, req.UserID); err != nil {
			if errors.Is(err, quota.ErrQuotaExceeded) {
				writeServiceError(c, err)
				return
			}
			h.log.Warn().Err(err).Str("user_id", req.UserID).Msg("quota check failed, allowing turn")
		}
	}

	state := service.NewConversationState(req.UserID, h.seed(ctx, req), h.tripContext(ctx, req.UserID))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	res, err := h.planner.RunTurn(ctx, state, req.UserInput, func(ev service.Event) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		writeEvent(c, ev)
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", req.UserID).Str("status", string(res.Status)).Msg("turn ended early")
	}

	if res.Status == service.StatusAnswered || res.Status == service.StatusMaxRounds {
		h.persist(ctx, req.UserID, req.UserInput, res.Answer)
	}
}

func writeEvent(c *gin.Context, ev service.Event) {
	switch ev.Type {
	case service.EventToken, service.EventError:
		c.SSEvent("", tokenFrame{AIResponse: ev.Text})
	case service.EventToolStart:
		c.SSEvent("tool", toolFrame{Phase: "start", Tool: ev.Tool, CallID: ev.CallID})
	case service.EventToolDone:
		ok := ev.Success
		c.SSEvent("tool", toolFrame{Phase: "done", Tool: ev.Tool, CallID: ev.CallID, Success: &ok})
	case service.EventDone:
		c.SSEvent("done", gin.H{"rounds": ev.Rounds})
	}
	c.Writer.Flush()
}

// seed prefers history sent by the client, then the stored transcript.
func (h *ChatHandler) seed(ctx context.Context, req chatReq) []ai.Message {
	if len(req.History) > 0 {
		items := req.History
		if len(items) > maxClientHistory {
			items = items[len(items)-maxClientHistory:]
		}
		msgs := make([]ai.Message, 0, len(items))
		for _, it := range items {
			switch ai.Role(it.Role) {
			case ai.RoleUser:
				msgs = append(msgs, ai.UserMessage(it.Content))
			case ai.RoleAssistant:
				msgs = append(msgs, ai.AssistantMessage(it.Content))
			}
		}
		return msgs
	}
	if h.history == nil {
		return nil
	}
	msgs, err := h.history.Seed(ctx, req.UserID)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", req.UserID).Msg("chat history unavailable")
		return nil
	}
	return msgs
}

func (h *ChatHandler) tripContext(ctx context.Context, userID string) string {
	if h.trips == nil {
		return ""
	}
	return h.trips.Context(ctx, userID)
}

// persist outlives a disconnected client so a finished answer is not lost.
func (h *ChatHandler) persist(ctx context.Context, userID, input, answer string) {
	if h.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := h.history.RecordTurn(ctx, userID, input, answer); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("failed to record chat turn")
	}
}

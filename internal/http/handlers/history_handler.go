package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripmate/internal/modules/history"
)

// HistoryStore reads and clears stored transcripts.
type HistoryStore interface {
	Recent(ctx context.Context, userID string) ([]history.Entry, error)
	Clear(ctx context.Context, userID string) (int64, error)
}

type HistoryHandler struct {
	history HistoryStore
}

func NewHistoryHandler(h HistoryStore) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// List handles GET /api/chat/messages?user_id=.
func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	entries, err := h.history.Recent(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"messages": entries})
}

// Clear handles DELETE /api/chat/messages?user_id=.
func (h *HistoryHandler) Clear(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	n, err := h.history.Clear(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "deleted": n})
}

func (h *HistoryHandler) userID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if !isValidID(userID) {
		writeError(c, http.StatusBadRequest, "missing or invalid user_id")
		return "", false
	}
	return userID, authorizeUser(c, userID)
}

// Package controller exposes the core's public contract to local UI
// collaborators over HTTP. Screens set the active-conversation marker and
// feed participant names here; they never touch the core's state directly.
package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatnotify/internal/core"
	"chatnotify/internal/httpapi/dto"
	"chatnotify/internal/httpapi/resp"
	"chatnotify/internal/toast"
)

type Handler struct {
	core  *core.Core
	toast *toast.Manager
	log   *zap.Logger
}

func NewHandler(c *core.Core, toastManager *toast.Manager, logger *zap.Logger) *Handler {
	return &Handler{core: c, toast: toastManager, log: logger}
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{
		UserID:               h.core.CurrentUserID(),
		Connected:            h.core.Connected(),
		UnreadTotal:          h.core.UnreadTotal(),
		ActiveConversationID: h.core.ActiveConversation(),
		PendingToasts:        h.toast.Pending(),
	})
}

func (h *Handler) SetActiveConversation(c *gin.Context) {
	var req dto.ActiveConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	if req.ConversationID <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "conversation_id is required"})
		return
	}
	h.core.SetActiveConversation(req.ConversationID)
	c.JSON(http.StatusOK, dto.StatusMessage{Code: resp.CodeOK, Message: "active conversation set"})
}

func (h *Handler) ClearActiveConversation(c *gin.Context) {
	h.core.SetActiveConversation(0)
	c.JSON(http.StatusOK, dto.StatusMessage{Code: resp.CodeOK, Message: "active conversation cleared"})
}

func (h *Handler) SetParticipantName(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid user id"})
		return
	}
	var req dto.ParticipantNameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "name is required"})
		return
	}
	h.core.UpdateParticipantName(userID, req.Name)
	c.JSON(http.StatusOK, dto.StatusMessage{Code: resp.CodeOK, Message: "participant name updated"})
}

// Refresh forces an unread resync. Always accepted: refresh failures keep
// the last known total rather than surfacing.
func (h *Handler) Refresh(c *gin.Context) {
	// Detached from the request context: the pull outlives the response.
	go h.core.RefreshUnreadTotal(context.Background())
	c.JSON(http.StatusAccepted, dto.StatusMessage{Code: resp.CodeAccepted, Message: "refresh scheduled"})
}

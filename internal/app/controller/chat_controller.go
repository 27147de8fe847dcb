package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/app/service"
	apperrors "github.com/clockert/fram-backend/internal/errors"
	"github.com/clockert/fram-backend/internal/middleware"
)

type ChatController struct {
	chatService service.ChatService
}

func NewChatController(chatService service.ChatService) *ChatController {
	return &ChatController{
		chatService: chatService,
	}
}

// Chat forwards a visitor message to the storefront assistant
// POST /api/chat
func (ctrl *ChatController) Chat(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid chat request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "message is required")
		return
	}

	reply, err := ctrl.chatService.Chat(c.Request.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatNotConfigured):
			log.Error("Chat assistant is not configured", err, nil)
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ChatNotConfigured, "Chat assistant is not configured")
		case errors.Is(err, service.ErrChatUpstreamFailed):
			apperrors.ServiceUnavailable(c, apperrors.ChatUpstreamFailed, "Chat assistant is unavailable right now")
		default:
			log.Error("Chat request failed", err, nil)
			apperrors.InternalError(c, "Chat request failed")
		}
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{Reply: reply})
}

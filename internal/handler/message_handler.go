package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/dto"
	"github.com/prohmpiriya/career-passport/internal/service"
	"github.com/prohmpiriya/career-passport/pkg/response"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	messageService service.MessageService
	responder
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService service.MessageService, opts Options) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		responder:      newResponder(opts),
	}
}

// Send handles POST /messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c)
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err, "send message")
		return
	}

	c.JSON(http.StatusCreated, response.Success("message", msg))
}

// List handles GET /messages?walletAddress=&peer=
func (h *MessageHandler) List(c *gin.Context) {
	msgs, err := h.messageService.List(c.Request.Context(), c.Query("walletAddress"), c.Query("peer"))
	if err != nil {
		if !h.degraded(c, err, "messages") {
			h.fail(c, err, "list messages")
			return
		}
		msgs = []*domain.Message{}
	}

	c.JSON(http.StatusOK, response.Success("messages", msgs))
}

// MarkRead handles PATCH /messages/:messageId/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	if err := h.messageService.MarkRead(c.Request.Context(), c.Param("messageId")); err != nil {
		h.fail(c, err, "mark message read")
		return
	}

	c.JSON(http.StatusOK, response.OK())
}

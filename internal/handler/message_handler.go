package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/session"
	"github.com/warblerhq/warbler/pkg/logger"
)

// NotAuthorizedFlash is the ownership failure, deliberately distinct from
// the logged-out message.
const NotAuthorizedFlash = "You are not authorized to delete that message."

type MessageHandler struct {
	messageService *service.MessageService
	store          *session.Store
}

func NewMessageHandler(messageService *service.MessageService, store *session.Store) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		store:          store,
	}
}

// GET /messages/new (login required)
func (h *MessageHandler) NewForm(c *gin.Context) {
	render(c, h.store, http.StatusOK, "message_new", nil)
}

// POST /messages/new (login required)
func (h *MessageHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	text := c.PostForm("text")

	msg, err := h.messageService.CreateMessage(user.ID, user.Username, text)
	if err != nil {
		if errors.Is(err, service.ErrTextRequired) || errors.Is(err, service.ErrTextTooLong) {
			flash(c, h.store, "danger", err.Error())
			c.Redirect(http.StatusFound, "/messages/new")
			return
		}

		logger.Log.Error("Failed to create message",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		flash(c, h.store, "danger", "Something went wrong.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	logger.Log.Debug("Message posted",
		zap.Uint("message_id", msg.ID),
		zap.Uint("user_id", user.ID),
	)
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", user.ID))
}

// GET /messages/:id
func (h *MessageHandler) Show(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, h.store)
		return
	}

	msg, err := h.messageService.GetMessage(id)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load message")
		return
	}
	if msg == nil {
		notFound(c, h.store)
		return
	}

	data := gin.H{"Message": msg}

	if viewer := middleware.CurrentUser(c); viewer != nil {
		liked, err := h.messageService.HasLiked(viewer.ID, msg.ID)
		if err == nil {
			data["Liked"] = liked
		}
	}

	render(c, h.store, http.StatusOK, "message_show", data)
}

// POST /messages/:id/delete (login required)
func (h *MessageHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, ok := paramID(c)
	if !ok {
		notFound(c, h.store)
		return
	}

	err := h.messageService.DeleteMessage(id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			notFound(c, h.store)
			return
		}
		if errors.Is(err, service.ErrNotMessageOwner) {
			flash(c, h.store, "danger", NotAuthorizedFlash)
			c.Redirect(http.StatusFound, "/")
			return
		}

		c.String(http.StatusInternalServerError, "failed to delete message")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", user.ID))
}

// POST /messages/:id/like (login required). Toggles: liking an already
// liked warble removes the like.
func (h *MessageHandler) Like(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, ok := paramID(c)
	if !ok {
		notFound(c, h.store)
		return
	}

	_, err := h.messageService.ToggleLike(user.ID, id)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			notFound(c, h.store)
			return
		}

		c.String(http.StatusInternalServerError, "failed to toggle like")
		return
	}

	redirect := c.GetHeader("Referer")
	if redirect == "" {
		redirect = "/"
	}
	c.Redirect(http.StatusFound, redirect)
}

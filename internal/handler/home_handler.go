package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/session"
)

type HomeHandler struct {
	messageService *service.MessageService
	store          *session.Store
}

func NewHomeHandler(messageService *service.MessageService, store *session.Store) *HomeHandler {
	return &HomeHandler{
		messageService: messageService,
		store:          store,
	}
}

// GET / renders the timeline for logged-in users and the landing page
// for everyone else.
func (h *HomeHandler) Home(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		render(c, h.store, http.StatusOK, "home_anon", nil)
		return
	}

	messages, err := h.messageService.Timeline(user.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load timeline")
		return
	}

	render(c, h.store, http.StatusOK, "home", gin.H{
		"Messages": messages,
	})
}

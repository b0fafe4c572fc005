package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/session"
	"github.com/warblerhq/warbler/pkg/logger"
)

type UserHandler struct {
	userService    *service.UserService
	messageService *service.MessageService
	store          *session.Store
}

func NewUserHandler(userService *service.UserService, messageService *service.MessageService, store *session.Store) *UserHandler {
	return &UserHandler{
		userService:    userService,
		messageService: messageService,
		store:          store,
	}
}

// GET /users?q=term
func (h *UserHandler) Index(c *gin.Context) {
	query := c.Query("q")

	users, err := h.userService.Search(query)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to list users")
		return
	}

	render(c, h.store, http.StatusOK, "users_index", gin.H{
		"Users": users,
		"Query": query,
	})
}

// GET /users/:id
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, h.store)
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil {
		notFound(c, h.store)
		return
	}

	stats, err := h.userService.GetProfileStats(user.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load profile")
		return
	}

	messages, err := h.messageService.UserMessages(user.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load messages")
		return
	}

	data := gin.H{
		"User":     user,
		"Stats":    stats,
		"Messages": messages,
	}

	if viewer := middleware.CurrentUser(c); viewer != nil && viewer.ID != user.ID {
		following, err := h.userService.IsFollowing(viewer.ID, user.ID)
		if err == nil {
			data["IsFollowing"] = following
		}
	}

	render(c, h.store, http.StatusOK, "users_show", data)
}

// GET /users/:id/following (login required)
func (h *UserHandler) ShowFollowing(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	users, err := h.userService.Following(user.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load following")
		return
	}

	render(c, h.store, http.StatusOK, "users_following", gin.H{
		"User":  user,
		"Users": users,
	})
}

// GET /users/:id/followers (login required)
func (h *UserHandler) ShowFollowers(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	users, err := h.userService.Followers(user.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load followers")
		return
	}

	render(c, h.store, http.StatusOK, "users_followers", gin.H{
		"User":  user,
		"Users": users,
	})
}

// GET /users/:id/likes (login required)
func (h *UserHandler) ShowLikes(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	messages, err := h.messageService.LikedMessages(user.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load likes")
		return
	}

	render(c, h.store, http.StatusOK, "users_likes", gin.H{
		"User":     user,
		"Messages": messages,
	})
}

// POST /users/follow/:id (login required)
func (h *UserHandler) Follow(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	targetID, ok := paramID(c)
	if !ok {
		notFound(c, h.store)
		return
	}

	if err := h.userService.Follow(viewer.ID, targetID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			notFound(c, h.store)
			return
		}
		// Duplicate edge lands here via the unique index
		logger.Log.Warn("Follow failed",
			zap.Uint("follower_id", viewer.ID),
			zap.Uint("followed_id", targetID),
			zap.Error(err),
		)
		flash(c, h.store, "danger", "Something went wrong.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d/following", viewer.ID))
}

// POST /users/stop-following/:id (login required)
func (h *UserHandler) Unfollow(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	targetID, ok := paramID(c)
	if !ok {
		notFound(c, h.store)
		return
	}

	if err := h.userService.Unfollow(viewer.ID, targetID); err != nil {
		flash(c, h.store, "danger", "Something went wrong.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d/following", viewer.ID))
}

// POST /users/delete (login required). Removes the account and ends the
// session; Warbler has no soft delete.
func (h *UserHandler) Delete(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	if err := h.userService.DeleteAccount(viewer.ID); err != nil {
		flash(c, h.store, "danger", "Something went wrong.")
		c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", viewer.ID))
		return
	}

	if sess := middleware.CurrentSession(c); sess != nil {
		_ = h.store.Destroy(c.Request.Context(), sess.Token)
	}

	c.Redirect(http.StatusFound, "/signup")
}

// loadUser resolves :id to an existing user or writes a 404.
func (h *UserHandler) loadUser(c *gin.Context) (*models.User, bool) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, h.store)
		return nil, false
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load user")
		return nil, false
	}
	if user == nil {
		notFound(c, h.store)
		return nil, false
	}

	return user, true
}

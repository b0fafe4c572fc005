package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/session"
	"github.com/warblerhq/warbler/pkg/logger"
)

type AuthHandler struct {
	authService *service.AuthService
	store       *session.Store
}

func NewAuthHandler(authService *service.AuthService, store *session.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
	}
}

// GET /signup
func (h *AuthHandler) ShowSignup(c *gin.Context) {
	render(c, h.store, http.StatusOK, "signup", nil)
}

// POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")
	imageURL := c.PostForm("image_url")

	logger.Log.Info("Signup attempt",
		zap.String("username", username),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Signup(username, email, password, imageURL)
	if err != nil {
		if isSignupUserError(err) {
			flash(c, h.store, "danger", err.Error())
			render(c, h.store, http.StatusOK, "signup", gin.H{
				"Username": username,
				"Email":    email,
			})
			return
		}

		logger.Log.Error("Signup failed",
			zap.String("username", username),
			zap.Error(err),
		)
		flash(c, h.store, "danger", "Something went wrong. Please try again.")
		render(c, h.store, http.StatusOK, "signup", nil)
		return
	}

	h.establishSession(c, user.ID)
	flash(c, h.store, "success", "Welcome to Warbler, "+user.Username+"!")
	c.Redirect(http.StatusFound, "/")
}

// GET /login
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	render(c, h.store, http.StatusOK, "login", nil)
}

// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	logger.Log.Info("Login attempt",
		zap.String("username", username),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Authenticate(username, password)
	if err != nil {
		flash(c, h.store, "danger", "Something went wrong. Please try again.")
		render(c, h.store, http.StatusOK, "login", nil)
		return
	}
	if user == nil {
		// Ordinary negative outcome, not an exception
		flash(c, h.store, "danger", "Invalid credentials.")
		render(c, h.store, http.StatusOK, "login", gin.H{
			"Username": username,
		})
		return
	}

	h.establishSession(c, user.ID)
	flash(c, h.store, "success", "Hello, "+user.Username+"!")
	c.Redirect(http.StatusFound, "/")
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess != nil {
		if err := h.store.Logout(c.Request.Context(), sess); err != nil {
			logger.Log.Error("Failed to clear session",
				zap.Error(err),
			)
		}
	}

	flash(c, h.store, "success", "You have successfully logged out.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) establishSession(c *gin.Context, userID uint) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return
	}
	if err := h.store.Login(c.Request.Context(), sess, userID); err != nil {
		logger.Log.Error("Failed to write session identity",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}

func isSignupUserError(err error) bool {
	return errors.Is(err, service.ErrUsernameRequired) ||
		errors.Is(err, service.ErrEmailRequired) ||
		errors.Is(err, service.ErrPasswordRequired) ||
		errors.Is(err, service.ErrUsernameTooLong) ||
		errors.Is(err, service.ErrEmailTooLong) ||
		errors.Is(err, service.ErrUsernameTaken) ||
		errors.Is(err, service.ErrEmailTaken)
}

package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/repository"
	"github.com/warblerhq/warbler/internal/session"
)

const (
	// ContextSessionKey holds the *session.Session for the request.
	ContextSessionKey = "session"
	// ContextUserKey holds the resolved *models.User, set only when the
	// session identity maps to an existing user.
	ContextUserKey = "current_user"
)

// MustBeLoggedInFlash is the standard failure for protected routes.
const MustBeLoggedInFlash = "You must be logged in to do that."

// Sessions resolves the session cookie into request-scoped identity. Every
// request gets a session (created lazily on first contact) so flashes work
// for anonymous visitors too. A session whose user id no longer resolves to
// a row is treated exactly like no login at all.
func Sessions(store *session.Store, userRepo *repository.UserRepository, ttl time.Duration, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var sess *session.Session
		if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
			sess, _ = store.Get(ctx, token)
		}

		if sess == nil {
			fresh, err := store.New(ctx)
			if err != nil {
				// Session store unreachable: serve the request anonymously.
				c.Next()
				return
			}
			sess = fresh

			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(
				session.CookieName,
				sess.Token,
				int(ttl.Seconds()),
				"/",
				"",
				secureCookies,
				true, // httpOnly
			)
		}

		c.Set(ContextSessionKey, sess)

		if sess.UserID != 0 {
			user, err := userRepo.GetUserByID(sess.UserID)
			if err == nil && user != nil {
				c.Set(ContextUserKey, user)
			}
		}

		c.Next()
	}
}

// RequireLogin gates a route on a resolved user. Failure is a flash plus
// redirect home, never a 4xx; the store is untouched.
func RequireLogin(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		if sess := CurrentSession(c); sess != nil {
			_ = store.AddFlash(c.Request.Context(), sess.Token, session.Flash{
				Level:   "danger",
				Message: MustBeLoggedInFlash,
			})
		}

		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
}

// CurrentSession returns the request's session, or nil when the store was
// unreachable.
func CurrentSession(c *gin.Context) *session.Session {
	if v, exists := c.Get(ContextSessionKey); exists {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// CurrentUser returns the logged-in user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(ContextUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

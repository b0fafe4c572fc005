package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/session"
)

// render writes an HTML page with the request's identity and pending flashes
// attached. Flashes render once: popping them here is what empties the queue.
func render(c *gin.Context, store *session.Store, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	data["CurrentUser"] = middleware.CurrentUser(c)

	if sess := middleware.CurrentSession(c); sess != nil {
		flashes, err := store.PopFlashes(c.Request.Context(), sess.Token)
		if err == nil {
			data["Flashes"] = flashes
		}
	}

	c.HTML(code, name, data)
}

// flash queues a one-shot message for the session's next page.
func flash(c *gin.Context, store *session.Store, level, message string) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return
	}
	_ = store.AddFlash(c.Request.Context(), sess.Token, session.Flash{
		Level:   level,
		Message: message,
	})
}

// notFound renders the 404 page.
func notFound(c *gin.Context, store *session.Store) {
	render(c, store, http.StatusNotFound, "not_found", nil)
}

// paramID parses the :id route parameter.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/warblerhq/warbler/internal/broker"
	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/utils"
	"github.com/warblerhq/warbler/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// FeedHandler streams newly created warbles over WebSocket. The browser
// first exchanges its session for a short-lived signed token, then connects
// with the token on the query string.
type FeedHandler struct {
	broker      broker.WarbleBroker
	tokenSecret string
	tokenExpiry time.Duration
	upgrader    websocket.Upgrader
}

func NewFeedHandler(warbleBroker broker.WarbleBroker, tokenSecret string, tokenExpiry time.Duration) *FeedHandler {
	return &FeedHandler{
		broker:      warbleBroker,
		tokenSecret: tokenSecret,
		tokenExpiry: tokenExpiry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS policy is enforced on the /api group
			},
		},
	}
}

// GET /api/feed/token (login required)
func (h *FeedHandler) Token(c *gin.Context) {
	user := middleware.CurrentUser(c)

	token, err := utils.GenerateFeedToken(user, h.tokenSecret, h.tokenExpiry)
	if err != nil {
		logger.Log.Error("Failed to generate feed token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GET /api/feed?token=...
func (h *FeedHandler) Stream(c *gin.Context) {
	claims, err := utils.ValidateFeedToken(c.Query("token"), h.tokenSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed",
			zap.Uint("user_id", claims.UserID),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	sub, err := h.broker.Subscribe()
	if err != nil {
		logger.Log.Error("Failed to subscribe to warble feed",
			zap.Error(err),
		)
		return
	}
	defer sub.Close()

	logger.Log.Info("Feed client connected",
		zap.Uint("user_id", claims.UserID),
		zap.String("username", claims.Username),
	)

	// Reader goroutine: the client sends nothing we care about, but reading
	// is how we notice the close frame and keep pong handling alive.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.Log.Debug("Feed client disconnected",
				zap.Uint("user_id", claims.UserID),
			)
			return

		case warble, ok := <-sub.Warbles():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(warble); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

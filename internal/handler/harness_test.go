package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/warblerhq/warbler/internal/broker"
	"github.com/warblerhq/warbler/internal/handler"
	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/repository"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/session"
	"github.com/warblerhq/warbler/internal/testutil"
	"github.com/warblerhq/warbler/internal/web"
	"github.com/warblerhq/warbler/pkg/logger"
)

const testFeedSecret = "test-feed-secret"

// testApp wires the full route table against in-memory SQLite and miniredis,
// mirroring cmd/server.
type testApp struct {
	router *gin.Engine
	db     *testutil.TestDatabase
	redis  *testutil.TestRedis
	store  *session.Store

	authService    *service.AuthService
	userService    *service.UserService
	messageService *service.MessageService
}

func newTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	db := testutil.SetupTestDatabase(t)
	rd := testutil.SetupTestRedis(t)

	store := session.NewStoreWithClient(rd.Client, time.Hour)

	userRepo := repository.NewUserRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)

	warbleBroker := broker.NewRedisWarbleBrokerWithClient(rd.Client)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, followRepo, messageRepo, likeRepo)
	messageService := service.NewMessageService(messageRepo, followRepo, likeRepo, warbleBroker)

	authHandler := handler.NewAuthHandler(authService, store)
	userHandler := handler.NewUserHandler(userService, messageService, store)
	messageHandler := handler.NewMessageHandler(messageService, store)
	homeHandler := handler.NewHomeHandler(messageService, store)
	feedHandler := handler.NewFeedHandler(warbleBroker, testFeedSecret, time.Minute)

	router := gin.New()
	router.SetHTMLTemplate(web.Templates())
	router.Use(middleware.Sessions(store, userRepo, time.Hour, false))

	requireLogin := middleware.RequireLogin(store)

	router.GET("/", homeHandler.Home)
	router.GET("/signup", authHandler.ShowSignup)
	router.POST("/signup", authHandler.Signup)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	router.GET("/users", userHandler.Index)
	router.GET("/users/:id", userHandler.Show)
	router.GET("/users/:id/following", requireLogin, userHandler.ShowFollowing)
	router.GET("/users/:id/followers", requireLogin, userHandler.ShowFollowers)
	router.GET("/users/:id/likes", requireLogin, userHandler.ShowLikes)
	router.POST("/users/follow/:id", requireLogin, userHandler.Follow)
	router.POST("/users/stop-following/:id", requireLogin, userHandler.Unfollow)
	router.POST("/users/delete", requireLogin, userHandler.Delete)

	router.GET("/messages/new", requireLogin, messageHandler.NewForm)
	router.POST("/messages/new", requireLogin, messageHandler.Create)
	router.GET("/messages/:id", messageHandler.Show)
	router.POST("/messages/:id/delete", requireLogin, messageHandler.Delete)
	router.POST("/messages/:id/like", requireLogin, messageHandler.Like)

	router.GET("/api/feed/token", requireLogin, feedHandler.Token)
	router.GET("/api/feed", feedHandler.Stream)

	return &testApp{
		router:         router,
		db:             db,
		redis:          rd,
		store:          store,
		authService:    authService,
		userService:    userService,
		messageService: messageService,
	}
}

func (a *testApp) teardown(t *testing.T) {
	a.db.Teardown(t)
	a.redis.Teardown(t)
}

func (a *testApp) clean(t *testing.T) {
	testutil.CleanDatabase(t, a.db.DB)
	a.redis.Server.FlushAll()
}

// loginAs creates a logged-in session the way the view layer would, and
// returns the cookie a client holding that session would send.
func (a *testApp) loginAs(t *testing.T, userID uint) *http.Cookie {
	ctx := context.Background()

	sess, err := a.store.New(ctx)
	require.NoError(t, err)
	require.NoError(t, a.store.Login(ctx, sess, userID))

	return &http.Cookie{Name: session.CookieName, Value: sess.Token}
}

// anonSession returns a cookie for a session with no identity.
func (a *testApp) anonSession(t *testing.T) *http.Cookie {
	sess, err := a.store.New(context.Background())
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: sess.Token}
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// followRedirect issues a GET to the Location of a redirect response,
// carrying the given cookies plus any the redirect response set (the way a
// browser would).
func (a *testApp) followRedirect(t *testing.T, w *httptest.ResponseRecorder, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	location := w.Header().Get("Location")
	require.NotEmpty(t, location, "Expected a redirect response")

	merged := append([]*http.Cookie{}, cookies...)
	merged = append(merged, w.Result().Cookies()...)

	return a.get(location, merged...)
}

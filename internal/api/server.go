// Package api is the HTTP layer: gin routes, request binding, bearer
// authentication and error mapping over the tutoring services.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/vault/internal/auth"
	"github.com/abhisek/vault/internal/chat"
	"github.com/abhisek/vault/internal/gatekeeper"
	"github.com/abhisek/vault/internal/progress"
	"github.com/abhisek/vault/internal/quiz"
)

// Services are the collaborators the routes call.
type Services struct {
	Auth       *auth.Service
	Progress   *progress.Service
	Gatekeeper *gatekeeper.Service
	Quiz       *quiz.Orchestrator
	Chat       *chat.Service
}

// Options tune the router.
type Options struct {
	CORSOrigins []string
	Version     string
	Logger      *slog.Logger
}

// Server holds the handlers' dependencies.
type Server struct {
	auth       *auth.Service
	progress   *progress.Service
	gatekeeper *gatekeeper.Service
	quiz       *quiz.Orchestrator
	chat       *chat.Service
	version    string
	logger     *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc Services, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		auth:       svc.Auth,
		progress:   svc.Progress,
		gatekeeper: svc.Gatekeeper,
		quiz:       svc.Quiz,
		chat:       svc.Chat,
		version:    opts.Version,
		logger:     logger,
	}

	r := gin.New()
	r.Use(recovery(logger), requestLogger(logger), cors(opts.CORSOrigins))

	r.GET("/health", s.health)
	r.GET("/levels", s.listLevels)

	a := r.Group("/auth")
	a.POST("/signup", s.signup)
	a.POST("/login", s.login)
	authed := a.Group("", s.requireAuth())
	authed.POST("/onboard", s.onboard)
	authed.PATCH("/profile", s.updateProfile)
	authed.GET("/me", s.me)

	sess := r.Group("/session", s.requireAuth())
	sess.GET("", s.getSession)
	sess.PATCH("", s.updateSession)
	sess.DELETE("", s.resetSession)

	v := r.Group("/vault", s.requireAuth())
	v.POST("/gatekeeper", s.enterLevel)
	v.POST("/submit", s.submitAnswer)
	v.POST("/lesson", s.reloadLesson)
	v.POST("/chat", s.chatReply)
	v.POST("/quiz/start", s.startQuiz)
	v.POST("/quiz/answer", s.answerQuiz)
	v.GET("/quiz/next", s.nextQuestion)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

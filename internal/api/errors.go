package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/vault/internal/auth"
	"github.com/abhisek/vault/internal/chat"
	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/gatekeeper"
	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
	"github.com/abhisek/vault/internal/progress"
	"github.com/abhisek/vault/internal/quiz"
)

// errBadRequest wraps request binding failures.
var errBadRequest = errors.New("bad request")

var statusBySentinel = []struct {
	err    error
	status int
}{
	{levels.ErrInvalidLevel, http.StatusBadRequest},
	{gatekeeper.ErrNoActiveSession, http.StatusBadRequest},
	{quiz.ErrNoActiveQuiz, http.StatusBadRequest},
	{quiz.ErrQuizComplete, http.StatusBadRequest},
	{quiz.ErrQuestionIndex, http.StatusBadRequest},
	{progress.ErrNothingToUpdate, http.StatusBadRequest},
	{progress.ErrInvalidPatch, http.StatusBadRequest},
	{chat.ErrInvalidHistory, http.StatusBadRequest},
	{auth.ErrInvalidInput, http.StatusBadRequest},
	{auth.ErrAlreadyOnboarded, http.StatusBadRequest},
	{auth.ErrNothingToUpdate, http.StatusBadRequest},
	{errBadRequest, http.StatusBadRequest},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrUserNotFound, http.StatusUnauthorized},
	{auth.ErrEmailTaken, http.StatusConflict},
	{auth.ErrUsernameTaken, http.StatusConflict},
	{content.ErrGenerationTimeout, http.StatusGatewayTimeout},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
	{content.ErrGenerationFailure, http.StatusInternalServerError},
}

// statusFor maps err to an HTTP status.
func statusFor(err error) int {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	if llm.IsUpstream(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": msg}. Server-side failures are
// logged and their details withheld from the client.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "status", status, "err", err)
		msg = publicMessage(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func publicMessage(status int) string {
	switch status {
	case http.StatusGatewayTimeout:
		return "content generation timed out"
	case http.StatusBadGateway:
		return "content provider unavailable"
	}
	return "content generation failed"
}


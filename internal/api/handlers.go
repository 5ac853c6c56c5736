package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/vault/internal/auth"
	"github.com/abhisek/vault/internal/chat"
	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/quiz"
	"github.com/abhisek/vault/internal/store"
)

func (s *Server) listLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": levels.All()})
}

// Accounts

func (s *Server) signup(c *gin.Context) {
	var in auth.SignupInput
	if err := decode(c, &in); err != nil {
		s.writeError(c, err)
		return
	}
	sess, err := s.auth.Signup(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (s *Server) login(c *gin.Context) {
	var in auth.LoginInput
	if err := decode(c, &in); err != nil {
		s.writeError(c, err)
		return
	}
	sess, err := s.auth.Login(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) onboard(c *gin.Context) {
	var in auth.OnboardInput
	if err := decode(c, &in); err != nil {
		s.writeError(c, err)
		return
	}
	p, err := s.auth.Onboard(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProfile(c *gin.Context) {
	var in auth.ProfileInput
	if err := decode(c, &in); err != nil {
		s.writeError(c, err)
		return
	}
	p, err := s.auth.UpdateProfile(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) me(c *gin.Context) {
	p, err := s.auth.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Session

func (s *Server) getSession(c *gin.Context) {
	p, err := s.progress.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateSession(c *gin.Context) {
	var patch store.ProgressPatch
	if err := decode(c, &patch); err != nil {
		s.writeError(c, err)
		return
	}
	p, err := s.progress.Update(c.Request.Context(), currentUser(c), patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) resetSession(c *gin.Context) {
	if err := s.progress.Reset(c.Request.Context(), currentUser(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session reset. The Vault awaits you fresh!"})
}

// Gatekeeper

func (s *Server) enterLevel(c *gin.Context) {
	var req targetRequest
	if err := bind(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	reply, err := s.gatekeeper.EnterLevel(c.Request.Context(), currentUser(c), req.target())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) submitAnswer(c *gin.Context) {
	var req submitRequest
	if err := bind(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	reply, err := s.gatekeeper.SubmitAnswer(c.Request.Context(), currentUser(c), req.target(), req.UserAnswer)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) reloadLesson(c *gin.Context) {
	var req targetRequest
	if err := bind(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	reply, err := s.gatekeeper.ReloadLesson(c.Request.Context(), currentUser(c), req.target())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Chat

func (s *Server) chatReply(c *gin.Context) {
	var req chatRequest
	if err := bind(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	resp, err := s.chat.Reply(c.Request.Context(), chat.Input{Target: req.target(), History: req.history()})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Quiz

func (s *Server) startQuiz(c *gin.Context) {
	var req quizStartRequest
	if err := bind(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	q, err := s.quiz.Start(c.Request.Context(), currentUser(c), req.target(), content.ParseQuizMode(req.QuizMode))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) answerQuiz(c *gin.Context) {
	var req quizAnswerRequest
	if err := bind(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	out, err := s.quiz.Answer(c.Request.Context(), currentUser(c), quiz.AnswerInput{
		Index:  *req.QuestionIndex,
		Text:   req.QuestionText,
		Answer: req.UserAnswer,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) nextQuestion(c *gin.Context) {
	q, err := s.quiz.Peek(currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}


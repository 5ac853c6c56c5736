package api

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/llm"
)

// targetRequest names what is being studied.
type targetRequest struct {
	Topic    string `json:"topic" binding:"required,max=200"`
	Level    int    `json:"level"`
	Language string `json:"language" binding:"max=40"`
}

func (r targetRequest) target() content.Target {
	return content.Target{Topic: r.Topic, Level: r.Level, Language: r.Language}
}

type submitRequest struct {
	targetRequest
	UserAnswer string `json:"user_answer" binding:"required,max=8000"`
}

type chatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

type chatRequest struct {
	targetRequest
	History []chatMessage `json:"history" binding:"required,min=1,dive"`
}

func (r chatRequest) history() []llm.Message {
	out := make([]llm.Message, len(r.History))
	for i, m := range r.History {
		out[i] = llm.Message{Role: llm.Role(m.Role), Content: m.Content}
	}
	return out
}

type quizStartRequest struct {
	targetRequest
	QuizMode string `json:"quiz_mode"`
}

// quizAnswerRequest grades against the quiz's own target; the topic and
// level a client echoes back are accepted but not trusted.
type quizAnswerRequest struct {
	Topic         string `json:"topic"`
	Level         int    `json:"level"`
	Language      string `json:"language"`
	QuestionIndex *int   `json:"question_index" binding:"required"`
	QuestionText  string `json:"question_text" binding:"max=2000"`
	UserAnswer    string `json:"user_answer" binding:"required,max=8000"`
}

// bind decodes the JSON body into v and runs its binding rules. Errors
// wrap errBadRequest.
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// decode reads an optional JSON body into v. The services validate these
// inputs themselves, so an empty body decodes to the zero value.
func decode(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// Package chat runs the free-form tutoring conversation and turns the
// tutor's quiz tags into trigger flags.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
)

// ErrInvalidHistory is returned for an empty conversation or one holding
// a message from an unknown role.
var ErrInvalidHistory = errors.New("invalid chat history")

// Generator produces the tutor's raw next turn.
type Generator interface {
	Converse(ctx context.Context, in content.ConversationInput) (string, error)
}

// Input is one chat turn request, oldest message first.
type Input struct {
	Target  content.Target
	History []llm.Message
}

// Response is the tutor's cleaned reply.
type Response struct {
	Content        string `json:"content"`
	TriggerQuiz    bool   `json:"trigger_quiz"`
	TriggerLevelUp bool   `json:"trigger_levelup"`
}

// Service answers chat turns.
type Service struct {
	gen    Generator
	logger *slog.Logger
}

// NewService creates a chat Service.
func NewService(gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, logger: logger}
}

// Reply generates the next tutor turn for in.
func (s *Service) Reply(ctx context.Context, in Input) (*Response, error) {
	if err := levels.Validate(in.Target.Level); err != nil {
		return nil, err
	}
	if err := checkHistory(in.History); err != nil {
		return nil, err
	}

	raw, err := s.gen.Converse(ctx, content.ConversationInput{Target: in.Target, History: in.History})
	if err != nil {
		return nil, fmt.Errorf("chat reply: %w", err)
	}

	tr := EvaluateTriggers(in.History, raw)
	if tr.PopQuiz || tr.LevelUp {
		s.logger.InfoContext(ctx, "chat proposed quiz",
			"user", llm.UserFrom(ctx), "topic", in.Target.Topic, "level", in.Target.Level,
			"popquiz", tr.PopQuiz, "levelup", tr.LevelUp)
	}
	return &Response{
		Content:        tr.Content,
		TriggerQuiz:    tr.PopQuiz,
		TriggerLevelUp: tr.LevelUp,
	}, nil
}

func checkHistory(history []llm.Message) error {
	if len(history) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidHistory)
	}
	for i, m := range history {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidHistory, i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("%w: message %d is empty", ErrInvalidHistory, i)
		}
	}
	return nil
}

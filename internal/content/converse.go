package content

import (
	"context"
	"fmt"

	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
)

// Tags the model appends to propose a quiz, and the markers the client
// writes into the transcript once a quiz of that kind has run.
const (
	PopQuizTag        = "[POPQUIZ_TRIGGER]"
	LevelUpTag        = "[LEVELUP_TRIGGER]"
	QuizDoneMarker    = "QUIZ_DONE"
	LevelUpDoneMarker = "LEVELUP_DONE"
)

// ConversationInput is a multi-turn tutoring chat, oldest message first.
type ConversationInput struct {
	Target  Target
	History []llm.Message
}

// Converse returns the tutor's raw next turn, tags included.
func (g *Generator) Converse(ctx context.Context, in ConversationInput) (string, error) {
	in.Target = g.Normalize(in.Target)
	if err := levels.Validate(in.Target.Level); err != nil {
		return "", err
	}
	if len(in.History) == 0 {
		return "", fmt.Errorf("conversation: empty history")
	}

	resp, err := g.call(ctx, "chat", llm.Request{
		System:      buildConversationSystem(in),
		Messages:    in.History,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("chat: empty reply: %w", ErrGenerationFailure)
	}
	return text, nil
}

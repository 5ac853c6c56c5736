package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
)

// QuizMode distinguishes the short mid-lesson check from the exam.
type QuizMode string

const (
	PopQuiz QuizMode = "popquiz"
	LevelUp QuizMode = "levelup"
)

// ParseQuizMode maps the wire value to a mode. Anything other than
// "levelup" is a pop quiz.
func ParseQuizMode(s string) QuizMode {
	if QuizMode(strings.ToLower(strings.TrimSpace(s))) == LevelUp {
		return LevelUp
	}
	return PopQuiz
}

// defaultGradeFeedback stands in when a grade comes back without feedback.
const defaultGradeFeedback = "Good effort! Keep going."

// Grade is the verdict on one quiz answer.
type Grade struct {
	Passed   bool
	Feedback string
}

// SummaryInput is what the end-of-quiz summary is written from.
type SummaryInput struct {
	Target Target
	Score  int
	Total  int
	Weak   []string
	Mode   QuizMode
}

// QuizQuestions asks for n questions and parses whatever comes back. The
// result may hold more or fewer than n; an empty result is
// ErrGenerationFailure.
func (g *Generator) QuizQuestions(ctx context.Context, t Target, mode QuizMode, n int) ([]string, error) {
	t = g.Normalize(t)
	if err := levels.Validate(t.Level); err != nil {
		return nil, err
	}

	resp, err := g.call(ctx, "quiz-questions", llm.Request{
		System:      questionsSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildQuestionsMessage(t, mode, n)}},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: 0.8,
	})
	if err != nil {
		return nil, err
	}

	qs := ParseQuestions(responseText(resp))
	if len(qs) == 0 {
		return nil, fmt.Errorf("quiz questions: no usable questions: %w", ErrGenerationFailure)
	}
	return qs, nil
}

// GradeQuizAnswer grades one answer.
func (g *Generator) GradeQuizAnswer(ctx context.Context, t Target, question, answer string) (Grade, error) {
	t = g.Normalize(t)

	resp, err := g.call(ctx, "quiz-grade", llm.Request{
		System:      personaPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildGradeMessage(t, question, answer)}},
		Schema:      QuizGradeSchema,
		MaxTokens:   512,
		Temperature: 0.4,
	})
	if err != nil {
		return Grade{}, err
	}

	var out verdictOutput
	if err := QuizGradeSchema.Decode(resp.Content, &out); err != nil {
		return Grade{}, fmt.Errorf("parse quiz grade: %w: %w", ErrGenerationFailure, err)
	}
	feedback := strings.TrimSpace(out.Feedback)
	if feedback == "" {
		feedback = defaultGradeFeedback
	}
	return Grade{Passed: out.Passed, Feedback: feedback}, nil
}

// QuizSummary writes the closing message for a finished quiz. An empty
// reply degrades to a plain score line rather than failing a quiz whose
// answers are already graded.
func (g *Generator) QuizSummary(ctx context.Context, in SummaryInput) (string, error) {
	in.Target = g.Normalize(in.Target)
	percent := Percent(in.Score, in.Total)
	promoted := in.Mode == LevelUp && percent >= PassPercent

	resp, err := g.call(ctx, "quiz-summary", llm.Request{
		System:      personaPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildSummaryMessage(in, percent, promoted)}},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	if text := responseText(resp); text != "" {
		return text, nil
	}
	return fmt.Sprintf("You scored %d/%d (%d%%).", in.Score, in.Total, percent), nil
}

// PassPercent is the exam score needed for promotion.
const PassPercent = 70

// Percent is round(100*score/total), with 0 for an empty quiz.
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*score + total) / (2 * total)
}

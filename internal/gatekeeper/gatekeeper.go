// Package gatekeeper runs the entry check for a level and the hint ladder
// a learner climbs while answering it.
package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
	"github.com/abhisek/vault/internal/store"
	"github.com/abhisek/vault/internal/userlock"
)

// ErrNoActiveSession is returned when an answer arrives before any level
// was entered.
var ErrNoActiveSession = errors.New("no active session: enter a level first")

// Generator is the slice of the content generator the gatekeeper uses.
type Generator interface {
	Generate(ctx context.Context, ask content.Ask) (*content.Reply, error)
}

// Service drives level entry and diagnostic answers.
type Service struct {
	gen    Generator
	repo   store.ProgressRepo
	locks  *userlock.Locker
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(gen Generator, repo store.ProgressRepo, locks *userlock.Locker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, repo: repo, locks: locks, logger: logger}
}

// EnterLevel starts a fresh diagnostic cycle at t.Level. Level 1 has no
// prerequisite and goes straight to the lesson; any other level returns a
// question on the level below. The progress row is overwritten only once
// the content has been generated.
func (s *Service) EnterLevel(ctx context.Context, userID string, t content.Target) (*content.Reply, error) {
	if err := levels.Validate(t.Level); err != nil {
		return nil, err
	}
	ctx = llm.WithUser(ctx, userID)

	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ask, passed := content.DiagnosticQuestion(t), false
	if t.Level == levels.Min {
		ask, passed = content.Lesson(t), true
	}

	reply, err := s.gen.Generate(ctx, ask)
	if err != nil {
		return nil, fmt.Errorf("enter level %d: %w", t.Level, err)
	}

	_, err = s.repo.Upsert(ctx, userID, store.ProgressPatch{
		Topic:              store.Some(t.Topic),
		CurrentLevel:       store.Some(t.Level),
		DiagnosticPassed:   store.Some(passed),
		DiagnosticAttempts: store.Some(0),
		HintStage:          store.Some(0),
	})
	if err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	s.logger.InfoContext(ctx, "level entered",
		"user", userID, "topic", t.Topic, "level", t.Level, "diagnostic", !passed)
	return reply, nil
}

// SubmitAnswer grades a diagnostic answer and advances the hint ladder.
// The returned reply always carries Passed; a final miss also carries
// RecommendedLevel.
func (s *Service) SubmitAnswer(ctx context.Context, userID string, t content.Target, answer string) (*content.Reply, error) {
	if err := levels.Validate(t.Level); err != nil {
		return nil, err
	}
	ctx = llm.WithUser(ctx, userID)

	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cur, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if cur == nil {
		return nil, ErrNoActiveSession
	}

	verdict, err := s.gen.Generate(ctx, content.CheckAnswer(t, answer))
	if err != nil {
		return nil, fmt.Errorf("check answer: %w", err)
	}
	passed := verdict.Passed != nil && *verdict.Passed

	step := NextStep(cur.DiagnosticAttempts, passed, t.Level)

	reply, err := s.gen.Generate(ctx, askFor(step.Action, t))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", step.Action, err)
	}
	reply.Passed = &step.Passed
	if step.Demote {
		rec := step.Level
		reply.RecommendedLevel = &rec
	}

	patch := store.ProgressPatch{
		DiagnosticAttempts: store.Some(step.Attempts),
		HintStage:          store.Some(step.HintStage),
	}
	if step.Passed {
		patch.DiagnosticPassed = store.Some(true)
	}
	if step.Demote {
		patch.DiagnosticPassed = store.Some(false)
		patch.CurrentLevel = store.Some(step.Level)
	}
	if _, err := s.repo.Upsert(ctx, userID, patch); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	s.logger.InfoContext(ctx, "diagnostic answer graded",
		"user", userID, "level", t.Level, "passed", passed,
		"attempts", step.Attempts, "action", step.Action.String())
	return reply, nil
}

// ReloadLesson regenerates the lesson for t without touching progress.
func (s *Service) ReloadLesson(ctx context.Context, userID string, t content.Target) (*content.Reply, error) {
	if err := levels.Validate(t.Level); err != nil {
		return nil, err
	}
	return s.gen.Generate(llm.WithUser(ctx, userID), content.Lesson(t))
}

func askFor(a Action, t content.Target) content.Ask {
	switch a {
	case ActionDiagramHint:
		return content.DiagramHint(t)
	case ActionPseudocodeHint:
		return content.PseudocodeHint(t)
	case ActionReveal:
		return content.Reveal(t)
	default:
		return content.Lesson(t)
	}
}

// Package quiz runs pop quizzes and level-up exams: it picks the
// question count, tracks answers in a per-user session and, when an exam
// is passed, promotes the learner.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
	"github.com/abhisek/vault/internal/store"
	"github.com/abhisek/vault/internal/userlock"
)

var (
	// ErrNoActiveQuiz is returned when the user has no quiz in progress.
	ErrNoActiveQuiz = errors.New("no active quiz")

	// ErrQuizComplete is returned when every question has been answered.
	ErrQuizComplete = errors.New("quiz already complete")

	// ErrQuestionIndex is returned for an answer to a question the quiz
	// does not have.
	ErrQuestionIndex = errors.New("question index out of range")
)

// Question counts per mode, inclusive.
var questionRange = map[Mode][2]int{
	content.PopQuiz: {1, 2},
	content.LevelUp: {5, 8},
}

// Generator is the slice of the content generator quizzes use.
type Generator interface {
	QuizQuestions(ctx context.Context, t content.Target, mode content.QuizMode, n int) ([]string, error)
	GradeQuizAnswer(ctx context.Context, t content.Target, question, answer string) (content.Grade, error)
	QuizSummary(ctx context.Context, in content.SummaryInput) (string, error)
}

// Question is the next question to show.
type Question struct {
	Text  string `json:"question_text"`
	Index int    `json:"question_index"`
	Total int    `json:"total_questions"`
}

// AnswerInput is one submitted answer. Text is the question as shown; when
// empty the session's copy is graded against.
type AnswerInput struct {
	Index  int
	Text   string
	Answer string
}

// Summary closes a finished quiz.
type Summary struct {
	Score     int      `json:"score"`
	Total     int      `json:"total"`
	Percent   int      `json:"percent"`
	Promoted  bool     `json:"promoted"`
	NextLevel int      `json:"next_level"`
	Weak      []string `json:"weak_topics"`
	Text      string   `json:"summary"`
}

// Outcome is the reply to an answer. Summary is set on the last one.
type Outcome struct {
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`
	Complete bool   `json:"quiz_complete"`
	Mode     Mode   `json:"quiz_mode"`
	*Summary
}

// Orchestrator owns quiz sessions.
type Orchestrator struct {
	gen      Generator
	sessions Store
	progress store.ProgressRepo
	locks    *userlock.Locker
	logger   *slog.Logger
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewOrchestrator creates an Orchestrator. rng picks question counts; nil
// seeds one from the runtime.
func NewOrchestrator(gen Generator, sessions Store, progress store.ProgressRepo, locks *userlock.Locker, rng *rand.Rand, logger *slog.Logger) *Orchestrator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gen:      gen,
		sessions: sessions,
		progress: progress,
		locks:    locks,
		logger:   logger,
		now:      time.Now,
		rng:      rng,
	}
}

// questionCount draws the number of questions for mode.
func (o *Orchestrator) questionCount(mode Mode) int {
	r := questionRange[mode]
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return r[0] + o.rng.IntN(r[1]-r[0]+1)
}

// Start generates a quiz and returns its first question. Any quiz the
// user already had is replaced.
func (o *Orchestrator) Start(ctx context.Context, userID string, t content.Target, mode Mode) (*Question, error) {
	if err := levels.Validate(t.Level); err != nil {
		return nil, err
	}
	if mode != content.LevelUp {
		mode = content.PopQuiz
	}
	ctx = llm.WithUser(ctx, userID)

	unlock, err := o.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	n := o.questionCount(mode)
	questions, err := o.gen.QuizQuestions(ctx, t, mode, n)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", mode, err)
	}
	if len(questions) > n {
		questions = questions[:n]
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("start %s: %w", mode, content.ErrGenerationFailure)
	}

	o.sessions.Put(userID, &Session{
		Questions: questions,
		Target:    t,
		Mode:      mode,
		StartedAt: o.now(),
	})

	o.logger.InfoContext(ctx, "quiz started",
		"user", userID, "mode", mode, "topic", t.Topic, "level", t.Level, "questions", len(questions))
	return &Question{Text: questions[0], Index: 0, Total: len(questions)}, nil
}

// Answer grades one answer. After the last question the quiz is scored,
// a passed exam is written back as a promotion, and the session is
// removed. If any step fails the session is left as it was so the answer
// can be resubmitted.
func (o *Orchestrator) Answer(ctx context.Context, userID string, in AnswerInput) (*Outcome, error) {
	ctx = llm.WithUser(ctx, userID)

	unlock, err := o.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, ok := o.sessions.Get(userID)
	if !ok {
		return nil, ErrNoActiveQuiz
	}
	if in.Index < 0 || in.Index >= len(sess.Questions) {
		return nil, fmt.Errorf("%w: %d of %d", ErrQuestionIndex, in.Index, len(sess.Questions))
	}

	question := strings.TrimSpace(in.Text)
	if question == "" {
		question = sess.Questions[in.Index]
	}

	grade, err := o.gen.GradeQuizAnswer(ctx, sess.Target, question, in.Answer)
	if err != nil {
		return nil, fmt.Errorf("grade answer: %w", err)
	}

	sess.Results = append(sess.Results, Result{
		Index:        in.Index,
		QuestionText: question,
		UserAnswer:   in.Answer,
		Passed:       grade.Passed,
		Feedback:     grade.Feedback,
	})
	sess.CurrentIndex = in.Index + 1

	out := &Outcome{Passed: grade.Passed, Feedback: grade.Feedback, Mode: sess.Mode}
	if !sess.Done() {
		o.sessions.Put(userID, sess)
		return out, nil
	}

	summary, err := o.finish(ctx, userID, sess)
	if err != nil {
		return nil, err
	}
	o.sessions.Delete(userID)

	out.Complete = true
	out.Summary = summary
	return out, nil
}

func (o *Orchestrator) finish(ctx context.Context, userID string, sess *Session) (*Summary, error) {
	level := sess.Target.Level
	tally := Score(sess.Results, sess.Mode, level)

	text, err := o.gen.QuizSummary(ctx, content.SummaryInput{
		Target: sess.Target,
		Score:  tally.Score,
		Total:  tally.Total,
		Weak:   tally.Weak,
		Mode:   sess.Mode,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz summary: %w", err)
	}

	if tally.Promoted && tally.NextLevel != level {
		_, err := o.progress.Upsert(ctx, userID, store.ProgressPatch{
			CurrentLevel:       store.Some(tally.NextLevel),
			DiagnosticPassed:   store.Some(true),
			DiagnosticAttempts: store.Some(0),
			HintStage:          store.Some(0),
		})
		if err != nil {
			return nil, fmt.Errorf("save promotion: %w", err)
		}
	}

	o.logger.InfoContext(ctx, "quiz completed",
		"user", userID, "mode", sess.Mode, "score", tally.Score, "total", tally.Total,
		"percent", tally.Percent, "promoted", tally.Promoted, "next_level", tally.NextLevel)

	weak := tally.Weak
	if weak == nil {
		weak = []string{}
	}
	return &Summary{
		Score:     tally.Score,
		Total:     tally.Total,
		Percent:   tally.Percent,
		Promoted:  tally.Promoted,
		NextLevel: tally.NextLevel,
		Weak:      weak,
		Text:      text,
	}, nil
}

// Peek returns the next unanswered question without changing anything.
func (o *Orchestrator) Peek(userID string) (*Question, error) {
	sess, ok := o.sessions.Get(userID)
	if !ok {
		return nil, ErrNoActiveQuiz
	}
	if sess.Done() {
		return nil, ErrQuizComplete
	}
	return &Question{
		Text:  sess.Questions[sess.CurrentIndex],
		Index: sess.CurrentIndex,
		Total: len(sess.Questions),
	}, nil
}

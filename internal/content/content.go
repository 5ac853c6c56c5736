// Package content turns tutoring requests into model prompts and parses
// the model's replies into lessons, hints, verdicts and quiz material.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
)

var (
	// ErrGenerationFailure means the model produced nothing usable.
	ErrGenerationFailure = errors.New("content generation failed")

	// ErrGenerationTimeout means the model did not answer in time.
	ErrGenerationTimeout = errors.New("content generation timed out")
)

// Target is what the learner is studying.
type Target struct {
	Topic    string `json:"topic"`
	Level    int    `json:"level"`
	Language string `json:"language"`
}

// Kind enumerates the single-shot requests.
type Kind int

const (
	KindDiagnosticQuestion Kind = iota + 1
	KindCheckAnswer
	KindLesson
	KindDiagramHint
	KindPseudocodeHint
	KindReveal
)

// String doubles as the purpose label on LLM events.
func (k Kind) String() string {
	switch k {
	case KindDiagnosticQuestion:
		return "gatekeeper-question"
	case KindCheckAnswer:
		return "answer-check"
	case KindLesson:
		return "lesson"
	case KindDiagramHint:
		return "hint-diagram"
	case KindPseudocodeHint:
		return "hint-pseudocode"
	case KindReveal:
		return "reveal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Ask is one single-shot request. Build it with the constructor for the
// kind wanted; only CheckAnswer carries an answer.
type Ask struct {
	kind   Kind
	target Target
	answer string
}

// DiagnosticQuestion asks for an entry check on the level below t.Level.
func DiagnosticQuestion(t Target) Ask { return Ask{kind: KindDiagnosticQuestion, target: t} }

// CheckAnswer asks for a verdict on the learner's diagnostic answer.
func CheckAnswer(t Target, answer string) Ask {
	return Ask{kind: KindCheckAnswer, target: t, answer: answer}
}

// Lesson asks for the full lesson at t.Level.
func Lesson(t Target) Ask { return Ask{kind: KindLesson, target: t} }

// DiagramHint asks for a visual hint after a first miss.
func DiagramHint(t Target) Ask { return Ask{kind: KindDiagramHint, target: t} }

// PseudocodeHint asks for a structural hint after a second miss.
func PseudocodeHint(t Target) Ask { return Ask{kind: KindPseudocodeHint, target: t} }

// Reveal asks for the full answer after the last miss.
func Reveal(t Target) Ask { return Ask{kind: KindReveal, target: t} }

// Kind reports which constructor built a.
func (a Ask) Kind() Kind { return a.kind }

// Target returns the study target of a.
func (a Ask) Target() Target { return a.target }

// Flashcard is one question/answer pair from a level-1 lesson.
type Flashcard struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// Sandbox is the runnable starter attached to a level-5 lesson.
type Sandbox struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Reply is the parsed outcome of an Ask.
type Reply struct {
	Content          string      `json:"content"`
	Passed           *bool       `json:"passed,omitempty"`
	Mermaid          string      `json:"mermaid_code,omitempty"`
	RecommendedLevel *int        `json:"recommended_level,omitempty"`
	Flashcards       []Flashcard `json:"flashcards,omitempty"`
	Sandbox          *Sandbox    `json:"sandbox,omitempty"`
}

// Config tunes the generator.
type Config struct {
	MaxTokens       int
	Timeout         time.Duration
	DefaultLanguage string
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       2048,
		Timeout:         60 * time.Second,
		DefaultLanguage: "Python",
	}
}

// Generator is the content-generation collaborator.
type Generator struct {
	provider llm.Provider
	cfg      Config
}

// NewGenerator creates a Generator on top of provider.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = def.DefaultLanguage
	}
	return &Generator{provider: provider, cfg: cfg}
}

// Normalize fills the default language and trims the topic.
func (g *Generator) Normalize(t Target) Target {
	t.Topic = strings.TrimSpace(t.Topic)
	t.Language = strings.TrimSpace(t.Language)
	if t.Language == "" {
		t.Language = g.cfg.DefaultLanguage
	}
	return t
}

type verdictOutput struct {
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`
}

// Generate runs a single-shot request.
func (g *Generator) Generate(ctx context.Context, ask Ask) (*Reply, error) {
	t := g.Normalize(ask.target)
	if err := levels.Validate(t.Level); err != nil {
		return nil, err
	}

	req := llm.Request{
		System:      personaPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildAskMessage(ask.kind, t, ask.answer)}},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: 0.7,
	}
	if ask.kind == KindCheckAnswer {
		req.Schema = AnswerVerdictSchema
		req.Temperature = 0.3
	}

	resp, err := g.call(ctx, ask.kind.String(), req)
	if err != nil {
		return nil, err
	}

	if ask.kind == KindCheckAnswer {
		var out verdictOutput
		if err := AnswerVerdictSchema.Decode(resp.Content, &out); err != nil {
			return nil, fmt.Errorf("parse answer verdict: %w: %w", ErrGenerationFailure, err)
		}
		return &Reply{Content: strings.TrimSpace(out.Feedback), Passed: &out.Passed}, nil
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("%s: empty reply: %w", ask.kind, ErrGenerationFailure)
	}

	reply := &Reply{Content: text, Mermaid: extractMermaid(text)}
	switch ask.kind {
	case KindLesson:
		reply.Flashcards = extractFlashcards(text)
		reply.Sandbox = extractSandbox(text, t.Language)
	case KindReveal:
		rec := levels.Below(t.Level)
		reply.RecommendedLevel = &rec
	}
	return reply, nil
}

// call labels the request, bounds it with the generation timeout and maps
// deadline expiry to ErrGenerationTimeout.
func (g *Generator) call(ctx context.Context, purpose string, req llm.Request) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, purpose), g.cfg.Timeout)
	defer cancel()

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", purpose, ErrGenerationTimeout)
		}
		return nil, fmt.Errorf("%s: %w", purpose, err)
	}
	return resp, nil
}

// responseText unwraps a schemaless reply. Providers return raw text, but
// a reply that is itself a JSON string literal is decoded.
func responseText(resp *llm.Response) string {
	raw := strings.TrimSpace(string(resp.Content))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return raw
}

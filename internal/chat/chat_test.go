package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
)

func user(s string) llm.Message      { return llm.Message{Role: llm.RoleUser, Content: s} }
func assistant(s string) llm.Message { return llm.Message{Role: llm.RoleAssistant, Content: s} }

func TestEvaluateTriggers(t *testing.T) {
	tests := []struct {
		name    string
		history []llm.Message
		raw     string
		want    Triggers
	}{
		{
			name: "no tag",
			raw:  "  A hash map trades memory for speed.  ",
			want: Triggers{Content: "A hash map trades memory for speed."},
		},
		{
			name: "pop quiz",
			raw:  "Buckets hold colliding keys.\n[POPQUIZ_TRIGGER]",
			want: Triggers{Content: "Buckets hold colliding keys.", PopQuiz: true},
		},
		{
			name: "level up",
			raw:  "You have covered it all.\n[LEVELUP_TRIGGER]",
			want: Triggers{Content: "You have covered it all.", LevelUp: true},
		},
		{
			name:    "pop quiz already done",
			history: []llm.Message{user("hi"), assistant("QUIZ_DONE score 1/1")},
			raw:     "More on probing.\n[POPQUIZ_TRIGGER]",
			want:    Triggers{Content: "More on probing."},
		},
		{
			name:    "level up already done",
			history: []llm.Message{user("LEVELUP_DONE")},
			raw:     "Next topic.[LEVELUP_TRIGGER]",
			want:    Triggers{Content: "Next topic."},
		},
		{
			name: "both proposed",
			raw:  "[POPQUIZ_TRIGGER] Quick check. [LEVELUP_TRIGGER]",
			want: Triggers{Content: "Quick check.", PopQuiz: true},
		},
		{
			name:    "both proposed with pop quiz done",
			history: []llm.Message{assistant("QUIZ_DONE")},
			raw:     "Ready.\n[POPQUIZ_TRIGGER]\n[LEVELUP_TRIGGER]",
			want:    Triggers{Content: "Ready.", LevelUp: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateTriggers(tt.history, tt.raw))
		})
	}
}

func newService(responses ...llm.MockResponse) (*Service, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	gen := content.NewGenerator(mock, content.Config{Timeout: time.Second})
	return NewService(gen, nil), mock
}

func TestReply(t *testing.T) {
	svc, mock := newService(llm.TextResponse("Open addressing probes the next slot.\n[POPQUIZ_TRIGGER]"))

	in := Input{
		Target:  content.Target{Topic: "hash maps", Level: 2, Language: "go"},
		History: []llm.Message{user("what is probing?")},
	}
	resp, err := svc.Reply(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Open addressing probes the next slot.", resp.Content)
	assert.True(t, resp.TriggerQuiz)
	assert.False(t, resp.TriggerLevelUp)

	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].System, "User messages so far: 1")
	assert.Equal(t, in.History, mock.Calls[0].Messages)
}

func TestReplyValidation(t *testing.T) {
	svc, mock := newService()
	ctx := context.Background()
	target := content.Target{Topic: "graphs", Level: 1}

	_, err := svc.Reply(ctx, Input{Target: target})
	assert.ErrorIs(t, err, ErrInvalidHistory)

	_, err = svc.Reply(ctx, Input{Target: target, History: []llm.Message{{Role: "system", Content: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidHistory)

	_, err = svc.Reply(ctx, Input{Target: target, History: []llm.Message{user("  ")}})
	assert.ErrorIs(t, err, ErrInvalidHistory)

	_, err = svc.Reply(ctx, Input{Target: content.Target{Topic: "graphs", Level: 0}, History: []llm.Message{user("hi")}})
	assert.ErrorIs(t, err, levels.ErrInvalidLevel)

	assert.Zero(t, mock.CallCount())
}

func TestReplyGenerationFailure(t *testing.T) {
	svc, _ := newService(llm.MockResponse{Err: errors.New("boom")})
	_, err := svc.Reply(context.Background(), Input{
		Target:  content.Target{Topic: "graphs", Level: 1},
		History: []llm.Message{user("hi")},
	})
	require.Error(t, err)

	svc, _ = newService(llm.TextResponse(`""`))
	_, err = svc.Reply(context.Background(), Input{
		Target:  content.Target{Topic: "graphs", Level: 1},
		History: []llm.Message{user("hi")},
	})
	assert.ErrorIs(t, err, content.ErrGenerationFailure)
}

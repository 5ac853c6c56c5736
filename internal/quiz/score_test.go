package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/vault/internal/content"
)

func results(pattern ...bool) []Result {
	out := make([]Result, len(pattern))
	for i, p := range pattern {
		out[i] = Result{Index: i, QuestionText: string(rune('a' + i)), Passed: p}
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		results  []Result
		mode     Mode
		level    int
		percent  int
		promoted bool
		next     int
		weak     []string
	}{
		{"exam pass", results(true, true, true, true, true, false), content.LevelUp, 3, 83, true, 4, []string{"f"}},
		{"exam exactly 70", results(true, true, true, true, true, true, true, false, false, false), content.LevelUp, 2, 70, true, 3, []string{"h", "i", "j"}},
		{"exam fail", results(true, true, true, false, false), content.LevelUp, 2, 60, false, 2, []string{"d", "e"}},
		{"exam at top", results(true, true, true, true, true), content.LevelUp, 5, 100, true, 5, nil},
		{"pop quiz", results(true, true), content.PopQuiz, 1, 100, false, 1, nil},
		{"empty", nil, content.LevelUp, 2, 0, false, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.results, tt.mode, tt.level)
			assert.Equal(t, tt.percent, got.Percent)
			assert.Equal(t, tt.promoted, got.Promoted)
			assert.Equal(t, tt.next, got.NextLevel)
			assert.Equal(t, tt.weak, got.Weak)
			assert.Equal(t, len(tt.results), got.Total)
		})
	}
}

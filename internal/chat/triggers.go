package chat

import (
	"strings"

	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/llm"
)

// Triggers is a cleaned tutor reply and the quiz it proposes, if any.
type Triggers struct {
	Content string
	PopQuiz bool
	LevelUp bool
}

var tagStripper = strings.NewReplacer(content.PopQuizTag, "", content.LevelUpTag, "")

// EvaluateTriggers strips quiz tags from raw and decides which quiz, if
// any, the turn starts. A kind of quiz already marked done anywhere in
// history is not offered again, and a pop quiz takes precedence when
// both are proposed.
func EvaluateTriggers(history []llm.Message, raw string) Triggers {
	var quizDone, levelUpDone bool
	for _, m := range history {
		quizDone = quizDone || strings.Contains(m.Content, content.QuizDoneMarker)
		levelUpDone = levelUpDone || strings.Contains(m.Content, content.LevelUpDoneMarker)
	}

	t := Triggers{
		Content: strings.TrimSpace(tagStripper.Replace(raw)),
		PopQuiz: strings.Contains(raw, content.PopQuizTag) && !quizDone,
		LevelUp: strings.Contains(raw, content.LevelUpTag) && !levelUpDone,
	}
	if t.PopQuiz && t.LevelUp {
		t.LevelUp = false
	}
	return t
}

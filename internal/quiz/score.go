package quiz

import (
	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/levels"
)

// Tally is the scored outcome of a finished quiz.
type Tally struct {
	Score     int
	Total     int
	Percent   int
	Promoted  bool
	NextLevel int
	Weak      []string
}

// Score tallies results. Only a level-up exam at or above the pass mark
// promotes, and promotion never goes past the top level.
func Score(results []Result, mode Mode, level int) Tally {
	t := Tally{Total: len(results), NextLevel: level}
	for _, r := range results {
		if r.Passed {
			t.Score++
		} else {
			t.Weak = append(t.Weak, r.QuestionText)
		}
	}
	t.Percent = content.Percent(t.Score, t.Total)
	t.Promoted = mode == content.LevelUp && t.Total > 0 && t.Percent >= content.PassPercent
	if t.Promoted {
		t.NextLevel = levels.Above(level)
	}
	return t
}

package gatekeeper

import "github.com/abhisek/vault/internal/levels"

// MaxAttempts is the number of misses that ends a diagnostic with a
// reveal and a demotion.
const MaxAttempts = 3

// Action is the content a ladder step calls for.
type Action int

const (
	ActionLesson Action = iota + 1
	ActionDiagramHint
	ActionPseudocodeHint
	ActionReveal
)

func (a Action) String() string {
	switch a {
	case ActionLesson:
		return "lesson"
	case ActionDiagramHint:
		return "diagram-hint"
	case ActionPseudocodeHint:
		return "pseudocode-hint"
	case ActionReveal:
		return "reveal"
	}
	return "unknown"
}

// Step is the outcome of one graded diagnostic answer: the progress to
// persist and the content to return.
type Step struct {
	Attempts  int
	HintStage int
	Passed    bool
	// Demote is set on the final miss; Level is then one below the
	// requested level, otherwise it is unchanged.
	Demote bool
	Level  int
	Action Action
}

// NextStep applies one verdict to the ladder. attempts is the stored
// count before this answer and level the level being unlocked.
//
//	pass            -> lesson, hint 0
//	miss, 1st       -> diagram hint, hint 1
//	miss, 2nd       -> pseudocode hint, hint 2
//	miss, 3rd+      -> reveal, hint 0, level-1 (floor 1)
//
// The stored count is capped at MaxAttempts.
func NextStep(attempts int, passed bool, level int) Step {
	next := min(attempts+1, MaxAttempts)

	if passed {
		return Step{Attempts: next, HintStage: 0, Passed: true, Level: level, Action: ActionLesson}
	}

	switch {
	case attempts+1 <= 1:
		return Step{Attempts: next, HintStage: 1, Level: level, Action: ActionDiagramHint}
	case attempts+1 == 2:
		return Step{Attempts: next, HintStage: 2, Level: level, Action: ActionPseudocodeHint}
	default:
		return Step{
			Attempts:  next,
			HintStage: 0,
			Demote:    true,
			Level:     levels.Below(level),
			Action:    ActionReveal,
		}
	}
}

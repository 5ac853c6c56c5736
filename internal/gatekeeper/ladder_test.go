package gatekeeper

import "testing"

func TestNextStep(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		passed   bool
		level    int
		want     Step
	}{
		{"first miss", 0, false, 3, Step{Attempts: 1, HintStage: 1, Level: 3, Action: ActionDiagramHint}},
		{"second miss", 1, false, 3, Step{Attempts: 2, HintStage: 2, Level: 3, Action: ActionPseudocodeHint}},
		{"third miss demotes", 2, false, 3, Step{Attempts: 3, HintStage: 0, Demote: true, Level: 2, Action: ActionReveal}},
		{"miss after reveal stays capped", 3, false, 3, Step{Attempts: 3, HintStage: 0, Demote: true, Level: 2, Action: ActionReveal}},
		{"demotion floors at 1", 2, false, 1, Step{Attempts: 3, HintStage: 0, Demote: true, Level: 1, Action: ActionReveal}},
		{"first try pass", 0, true, 4, Step{Attempts: 1, HintStage: 0, Passed: true, Level: 4, Action: ActionLesson}},
		{"pass after hints", 2, true, 4, Step{Attempts: 3, HintStage: 0, Passed: true, Level: 4, Action: ActionLesson}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStep(tt.attempts, tt.passed, tt.level)
			if got != tt.want {
				t.Fatalf("NextStep(%d, %v, %d) = %+v, want %+v", tt.attempts, tt.passed, tt.level, got, tt.want)
			}
		})
	}
}

package content

import "github.com/abhisek/vault/internal/llm"

// AnswerVerdictSchema is the structured reply for a diagnostic answer.
var AnswerVerdictSchema = &llm.Schema{
	Name:        "answer-verdict",
	Description: "Pass/fail verdict on a learner's answer to a gatekeeper question, with feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"passed": map[string]any{
				"type":        "boolean",
				"description": "True when the core idea of the answer is right",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Warm 2-3 sentence feedback; on a miss, a small nudge without the answer",
			},
		},
		"required":             []any{"passed", "feedback"},
		"additionalProperties": false,
	},
}

// QuizGradeSchema is the structured reply for one quiz answer.
var QuizGradeSchema = &llm.Schema{
	Name:        "quiz-grade",
	Description: "Pass/fail grade for a single quiz answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"passed": map[string]any{
				"type": "boolean",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "1-2 sentences naming what was right or what was missing",
			},
		},
		"required":             []any{"passed", "feedback"},
		"additionalProperties": false,
	},
}

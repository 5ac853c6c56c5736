package content

import (
	"fmt"
	"strings"

	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
)

const personaPrompt = `You are Vera, the guide inside an adaptive coding tutor. You are warm, encouraging and patient. You never make a learner feel bad about a mistake, and you favour analogies and concrete examples over jargon.

Formatting:
- Wrap Mermaid diagrams in ` + "```mermaid" + ` fences only.
- Wrap code in a fence tagged with its language.
- Keep responses focused, with no filler.`

const questionsSystemPrompt = `You write quiz questions for a coding tutor. You output only a JSON array of strings.`

func buildAskMessage(kind Kind, t Target, answer string) string {
	gate := levels.Below(t.Level)
	var b strings.Builder

	switch kind {
	case KindDiagnosticQuestion:
		fmt.Fprintf(&b, "The learner wants to study %q at Level %d (%s) in %s.\n", t.Topic, t.Level, levels.Label(t.Level), t.Language)
		fmt.Fprintf(&b, "Before unlocking it, check their Level %d (%s) foundations.\n\n", gate, levels.Label(gate))
		b.WriteString(`Write ONE gatekeeper question:
- answerable in 3-5 sentences or a short code snippet
- testing real understanding, not trivia
- framed warmly, without the answer`)

	case KindCheckAnswer:
		fmt.Fprintf(&b, "Topic: %s | Level being checked: %d (%s) | Language: %s\n\n", t.Topic, gate, levels.Label(gate), t.Language)
		fmt.Fprintf(&b, "The learner answered:\n\"\"\"\n%s\n\"\"\"\n\n", answer)
		b.WriteString(`Decide whether the answer passes. Be generous: if the core idea is right, count it as a pass even if the wording is rough. Give warm feedback; on a miss, nudge without revealing the answer.`)

	case KindDiagramHint:
		fmt.Fprintf(&b, "The learner is stuck on a Level %d question about %q.\n\n", gate, t.Topic)
		b.WriteString(`Draw a Mermaid diagram (at most 12 nodes) that shows the concept needed to answer it, then add one or two encouraging sentences inviting another try.`)

	case KindPseudocodeHint:
		fmt.Fprintf(&b, "The learner is still stuck on a Level %d question about %q.\n\n", gate, t.Topic)
		fmt.Fprintf(&b, "Give an 8-12 line plain-English pseudocode sketch of the structure they need. Do not use real %s syntax and do not give the full solution. End with an encouraging line.", t.Language)

	case KindReveal:
		fmt.Fprintf(&b, "The learner missed the Level %d (%s) gatekeeper question on %q three times.\n\n", gate, levels.Label(gate), t.Topic)
		fmt.Fprintf(&b, `1. Open with an empathetic line.
2. Explain the correct answer fully, with a %s example or an analogy if it helps.
3. Close by suggesting they firm up Level %d before returning to Level %d.`, t.Language, gate, t.Level)

	case KindLesson:
		lvl, _ := levels.Get(t.Level)
		fmt.Fprintf(&b, "The learner unlocked %q at Level %d (%s). Language: %s. Format: %s.\n\n", t.Topic, t.Level, lvl.Label(), t.Language, lvl.Format)
		fmt.Fprintf(&b, "Diagram: %s Keep it under 14 nodes.\n\n", lvl.Diagram)
		fmt.Fprintf(&b, "Content: %s\n", lvl.Lesson)
		switch t.Level {
		case 1:
			b.WriteString(`
Write each flashcard exactly like this, with no bullets or markdown around it:
===FLASHCARD===
Q: question text
A: answer text
===END_FLASHCARD===
`)
		case levels.Max:
			fmt.Fprintf(&b, `
End with a section that starts with the line ===SANDBOX_START===, contains one runnable %s starter in a code fence, and ends with the line ===SANDBOX_END===.
`, t.Language)
		}
		b.WriteString("\nFinish with a short encouraging line.")
	}

	return b.String()
}

func buildQuestionsMessage(t Target, mode QuizMode, n int) string {
	label := levels.Label(t.Level)
	var scope string
	if mode == LevelUp {
		scope = fmt.Sprintf("Cover the full breadth of Level %d (%s) on %s: conceptual, code-reading, applied and edge-case questions. The result decides promotion to Level %d.",
			t.Level, label, t.Topic, levels.Above(t.Level))
	} else {
		scope = fmt.Sprintf("Pick one concept just covered at Level %d (%s) on %s. This is a quick comprehension check, not an exam.",
			t.Level, label, t.Topic)
	}

	return fmt.Sprintf(`Write exactly %d quiz question(s).
Topic: %s
Level: %d (%s)
Language: %s

Scope: %s

Each question must test understanding rather than trivia and be answerable in 2-5 sentences or a short snippet. Do not number them.
Output only a JSON array of strings, for example ["First question?", "Second question?"].`,
		n, t.Topic, t.Level, label, t.Language, scope)
}

func buildGradeMessage(t Target, question, answer string) string {
	return fmt.Sprintf(`Topic: %s | Level %d (%s) | Language: %s

Quiz question:
"""
%s
"""

Learner's answer:
"""
%s
"""

Grade generously: if the core concept is right, it passes. Feedback is 1-2 warm sentences.`,
		t.Topic, t.Level, levels.Label(t.Level), t.Language, question, answer)
}

func buildSummaryMessage(in SummaryInput, percent int, promoted bool) string {
	t := in.Target
	weak := "None, every answer passed."
	if len(in.Weak) > 0 {
		weak = "- " + strings.Join(in.Weak, "\n- ")
	}

	if in.Mode != LevelUp {
		return fmt.Sprintf(`The learner answered %d quick check question(s) on %q at Level %d (%s).
Score: %d/%d (%d%%)
Missed:
%s

This was a comprehension check and never promotes. In 2-3 conversational sentences, celebrate a clean run or name the missed concept plainly and offer to explain it again.`,
			in.Total, t.Topic, t.Level, levels.Label(t.Level), in.Score, in.Total, percent, weak)
	}

	outcome := fmt.Sprintf("They did not reach 70%% and stay at Level %d.", t.Level)
	if promoted {
		next := levels.Above(t.Level)
		outcome = fmt.Sprintf("They reached 70%% and move up to Level %d (%s).", next, levels.Label(next))
	}
	return fmt.Sprintf(`The learner finished the Level %d (%s) exam on %q.
Score: %d/%d (%d%%)
Missed:
%s

%s

Write a 4-5 sentence summary: open warmly, mention the score, name the concepts (not the questions) worth revisiting, then either build excitement for the next level or promise to work through the weak spots before a retry.`,
		t.Level, levels.Label(t.Level), t.Topic, in.Score, in.Total, percent, weak, outcome)
}

func buildConversationSystem(in ConversationInput) string {
	t := in.Target
	userTurns := 0
	for _, m := range in.History {
		if m.Role == llm.RoleUser {
			userTurns++
		}
	}

	return personaPrompt + fmt.Sprintf(`

Context: topic %s, Level %d (%s), language %s. User messages so far: %d.

Answer the learner's latest message helpfully. You may end with at most one of these tags on its own line:

%s
  A 1-2 question check. Use only when 3 to 6 user messages have been exchanged, a concept was just explained, %q does not appear in the conversation, and the learner is not confused.

%s
  The end-of-level exam. Use only when at least 7 user messages have been exchanged, every key Level %d concept has been covered, %q does not appear in the conversation, and the learner seems ready.

Never mention the tags or an upcoming quiz. Emit no tag when neither condition holds.`,
		t.Topic, t.Level, levels.Label(t.Level), t.Language, userTurns,
		PopQuizTag, QuizDoneMarker, LevelUpTag, t.Level, LevelUpDoneMarker)
}

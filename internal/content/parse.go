package content

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxFallbackQuestions caps the line-split fallback.
const maxFallbackQuestions = 8

const (
	flashcardStart = "===FLASHCARD==="
	flashcardEnd   = "===END_FLASHCARD==="
	sandboxStart   = "===SANDBOX_START==="
	sandboxEnd     = "===SANDBOX_END==="
)

var (
	mermaidRe   = regexp.MustCompile("(?s)```mermaid\\s*(.*?)```")
	codeFenceRe = regexp.MustCompile("(?s)```([\\w+#.-]*)[ \\t]*\\n(.*?)```")
)

// extractMermaid returns the body of the first mermaid fence, or "".
func extractMermaid(text string) string {
	m := mermaidRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractFlashcards collects every well-formed flashcard block. Blocks
// missing either side are skipped.
func extractFlashcards(text string) []Flashcard {
	var cards []Flashcard
	rest := text
	for {
		start := strings.Index(rest, flashcardStart)
		if start < 0 {
			break
		}
		rest = rest[start+len(flashcardStart):]
		end := strings.Index(rest, flashcardEnd)
		if end < 0 {
			break
		}
		block := rest[:end]
		rest = rest[end+len(flashcardEnd):]

		var card Flashcard
		var cur *string
		for _, line := range strings.Split(block, "\n") {
			trimmed := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(trimmed, "Q:"):
				card.Question = strings.TrimSpace(trimmed[2:])
				cur = &card.Question
			case strings.HasPrefix(trimmed, "A:"):
				card.Answer = strings.TrimSpace(trimmed[2:])
				cur = &card.Answer
			case trimmed != "" && cur != nil:
				*cur += "\n" + trimmed
			}
		}
		if card.Question != "" && card.Answer != "" {
			cards = append(cards, card)
		}
	}
	return cards
}

// extractSandbox returns the starter between the sandbox markers. When the
// section holds a code fence its body and language are used, otherwise the
// whole section is the code.
func extractSandbox(text, language string) *Sandbox {
	start := strings.Index(text, sandboxStart)
	if start < 0 {
		return nil
	}
	section := text[start+len(sandboxStart):]
	if end := strings.Index(section, sandboxEnd); end >= 0 {
		section = section[:end]
	}

	sb := &Sandbox{Language: language, Code: strings.TrimSpace(section)}
	if m := codeFenceRe.FindStringSubmatch(section); m != nil {
		if m[1] != "" && m[1] != "mermaid" {
			sb.Language = m[1]
		}
		sb.Code = strings.TrimRight(m[2], " \t\n")
	}
	if sb.Code == "" {
		return nil
	}
	return sb
}

// ParseQuestions reads a question list from raw model output. A JSON
// array of strings is preferred; anything else falls back to one question
// per line with list markers stripped and short lines dropped.
func ParseQuestions(raw string) []string {
	cleaned := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(raw))

	var list []string
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil {
		out := make([]string, 0, len(list))
		for _, q := range list {
			if q = strings.TrimSpace(q); q != "" {
				out = append(out, q)
			}
		}
		return out
	}

	var out []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "-•0123456789.) ")
		if utf8.RuneCountInString(line) <= 10 {
			continue
		}
		out = append(out, line)
		if len(out) == maxFallbackQuestions {
			break
		}
	}
	return out
}

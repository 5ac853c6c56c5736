package llm

import (
	"regexp"
	"strings"
)

// Short names accepted in config for each vendor. Anything else is sent
// to the vendor verbatim.
var (
	anthropicModels = map[string]string{
		"claude-haiku":  "claude-haiku-4-5",
		"claude-sonnet": "claude-sonnet-4-5",
	}
	openaiModels = map[string]string{
		"gpt-mini": "gpt-4.1-mini",
		"gpt-nano": "gpt-4.1-nano",
	}
	geminiModels = map[string]string{
		"gemini-flash": "gemini-2.5-flash",
		"gemini-lite":  "gemini-2.5-flash-lite",
		"gemini-pro":   "gemini-2.5-pro",
	}
)

func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}

// Dated snapshots ("-20251001", "-2024-08-06") and rolling tags share the
// price of their base model.
var snapshotSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2}|\d{3}|latest)$`)

// canonicalModel reduces a served model id to the key used in the price
// table: vendor prefixes from routers are dropped and snapshot suffixes
// trimmed.
func canonicalModel(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	for _, aliases := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		if full, ok := aliases[id]; ok {
			return full
		}
	}
	return snapshotSuffix.ReplaceAllString(id, "")
}

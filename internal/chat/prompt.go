package chat

import (
	"strings"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/pkg/oai"
)

// BuildPrompt flattens the conversation into a single text prompt. The
// policy is one "<role>: <content>" line per message, joined with newlines,
// followed by a bare "assistant:" line that primes the continuation. The
// mapping is deterministic: identical messages always yield identical
// prompt bytes.
func BuildPrompt(messages []oai.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	b.WriteString("assistant:")
	return b.String()
}

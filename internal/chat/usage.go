package chat

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/pkg/oai"
)

// TokenCounter produces best-effort token counts for the usage block.
// Counts are informational; a tokenizer failure degrades to a rough
// chars/4 estimate rather than failing the request.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter builds a counter over the cl100k_base encoding, which
// approximates most modern tokenizers well enough for usage reporting.
func NewTokenCounter() *TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &TokenCounter{enc: enc}
}

// Count returns the token count for text.
func (tc *TokenCounter) Count(text string) int {
	if tc.enc != nil {
		return len(tc.enc.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

// Usage assembles the usage block for a prompt/completion pair.
func (tc *TokenCounter) Usage(prompt, completion string) oai.Usage {
	p := tc.Count(prompt)
	c := tc.Count(completion)
	return oai.Usage{PromptTokens: p, CompletionTokens: c, TotalTokens: p + c}
}

// estimateTokens is the fallback heuristic: 1 token per ~4 characters.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

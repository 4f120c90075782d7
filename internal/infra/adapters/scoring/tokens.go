package scoring

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenBudget trims resume text so prompts stay inside the model context.
type TokenBudget struct {
	encoding  *tiktoken.Tiktoken
	maxTokens int
}

// NewTokenBudget loads cl100k_base. When the encoding cannot be loaded the
// budget falls back to a four-characters-per-token estimate.
func NewTokenBudget(maxTokens int) *TokenBudget {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &TokenBudget{encoding: enc, maxTokens: maxTokens}
}

func (b *TokenBudget) Count(text string) int {
	if b == nil {
		return 0
	}
	if b.encoding == nil {
		return (len([]rune(text)) + 3) / 4
	}
	return len(b.encoding.Encode(text, nil, nil))
}

// Truncate returns text cut to the budget and whether anything was dropped.
func (b *TokenBudget) Truncate(text string) (string, bool) {
	if b == nil || b.maxTokens <= 0 {
		return text, false
	}
	if b.encoding == nil {
		runes := []rune(text)
		if len(runes) <= b.maxTokens*4 {
			return text, false
		}
		return string(runes[:b.maxTokens*4]), true
	}
	toks := b.encoding.Encode(text, nil, nil)
	if len(toks) <= b.maxTokens {
		return text, false
	}
	return b.encoding.Decode(toks[:b.maxTokens]), true
}

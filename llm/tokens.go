package llm

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/sweetpotato0/agriadvisor/pkg/logging"
)

// promptBudget truncates oversized prompts to a token limit so decision
// context never overflows the backend's window.
type promptBudget struct {
	enc   *tiktoken.Tiktoken
	limit int
}

func newPromptBudget(model string, limit int) *promptBudget {
	if limit <= 0 {
		return &promptBudget{}
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(model)
		if err != nil {
			logging.WithComponent("llm").Warn("tokenizer unavailable, prompt budget disabled", "model", model, "error", err)
			return &promptBudget{}
		}
	}
	return &promptBudget{enc: enc, limit: limit}
}

func (b *promptBudget) truncate(prompt string) string {
	if b.enc == nil || b.limit <= 0 {
		return prompt
	}
	ids := b.enc.Encode(prompt, nil, nil)
	if len(ids) <= b.limit {
		return prompt
	}
	return b.enc.Decode(ids[:b.limit])
}

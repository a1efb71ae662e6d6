package llm

import (
	"context"
	"strings"

	"github.com/sweetpotato0/agriadvisor/pkg/logging"
)

const describeImagePrompt = `You are an agricultural expert. Describe what this photo of a crop shows: visible symptoms, discoloration, pests, or damage. Be specific and brief.`

// DescribeImage asks a vision-capable backend to describe a crop photo,
// typically to fill the symptom description slot. Backends without
// vision, and any failure, fall back to a fixed notice.
func (a *Adapter) DescribeImage(ctx context.Context, image []byte, language string) PhraseResult {
	if a.client != nil && len(image) > 0 {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()

		raw, err := a.client.Complete(ctx, &Request{
			Prompt:      describeImagePrompt,
			Image:       image,
			MaxTokens:   a.cfg.MaxTokens,
			Temperature: a.cfg.Temperature,
		})
		if err == nil && strings.TrimSpace(raw) != "" {
			return PhraseResult{Text: strings.TrimSpace(raw), Origin: OriginPrimary}
		}
		logging.WithComponent("llm").Warn("image description fell back", "error", err)
	}
	return PhraseResult{
		Text:   "I could not analyze the photo. Please describe what you see on the plants.",
		Origin: OriginFallback,
	}
}

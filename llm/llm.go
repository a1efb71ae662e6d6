// Package llm adapts a language-model backend for the three things the
// advisory uses it for: classifying intent, extracting field values, and
// phrasing responses. The model never makes farming decisions. Every
// operation has a deterministic fallback; a primary-path failure is
// caught here and never propagates.
package llm

import (
	"context"
	"time"

	"github.com/sweetpotato0/agriadvisor/evaluator/risk"
	"github.com/sweetpotato0/agriadvisor/evaluator/stage"
	"github.com/sweetpotato0/agriadvisor/evaluator/weatherimpact"
	"github.com/sweetpotato0/agriadvisor/intents"
)

// Client is the narrow interface a language-model backend implements.
type Client interface {
	// Complete returns the model's text completion for the request.
	Complete(ctx context.Context, req *Request) (string, error)
}

// Request is one completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature float64
	Image       []byte // optional image payload for vision-capable backends
}

// Origin records which path produced a result, making fallback selection
// a visible branch instead of a caught exception.
type Origin string

const (
	OriginPrimary  Origin = "primary"
	OriginFallback Origin = "fallback"
)

// IntentResult is the outcome of intent classification.
type IntentResult struct {
	Intent           intents.Intent
	Entities         map[string]string
	Confidence       float64
	DetectedLanguage string
	Origin           Origin
}

// PhraseResult is the outcome of response phrasing.
type PhraseResult struct {
	Text   string
	Origin Origin
}

// DecisionData bundles the pipeline outputs handed to response phrasing.
type DecisionData struct {
	Intent         intents.Intent
	Weather        weatherimpact.Assessment
	WeatherOK      bool
	CropStage      stage.Assessment
	CropStageOK    bool
	Risks          risk.Assessment
	RisksOK        bool
	Recommendation string
	Alerts         []string
}

// Config holds the adapter configuration.
type Config struct {
	Timeout         time.Duration
	MaxTokens       int64
	Temperature     float64
	MaxPromptTokens int // prompt budget; 0 disables truncation
	TokenizerModel  string
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		MaxTokens:       500,
		Temperature:     0.3,
		MaxPromptTokens: 3000,
		TokenizerModel:  "gpt-4o-mini",
	}
}

// Adapter wraps a Client with bounded timeouts and deterministic
// fallbacks. A nil client routes every call to the fallback path.
type Adapter struct {
	client Client
	cfg    *Config
	budget *promptBudget
	now    func() time.Time
}

// NewAdapter creates an adapter. A nil config uses defaults.
func NewAdapter(client Client, cfg *Config) *Adapter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Adapter{
		client: client,
		cfg:    cfg,
		budget: newPromptBudget(cfg.TokenizerModel, cfg.MaxPromptTokens),
		now:    time.Now,
	}
}

func (a *Adapter) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	return a.client.Complete(ctx, &Request{
		Prompt:      a.budget.truncate(prompt),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
}

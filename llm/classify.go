package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/sweetpotato0/agriadvisor/intents"
	"github.com/sweetpotato0/agriadvisor/pkg/logging"
)

const classifyPromptTemplate = `You are an agricultural assistant. Analyze this farmer's query and extract the intent.

Query: %q

Respond ONLY with valid JSON in this exact format:
{
    "intent": "<one of: irrigation_query, weather_query, crop_status_query, harvest_query, pest_disease_query, fertilizer_query, sowing_query, crop_planning_query, general_farming, greeting, unclear>",
    "entities": {
        "crop": "<crop name if mentioned, else empty>",
        "symptom": "<symptom if mentioned, else empty>",
        "date": "<date if mentioned, else empty>"
    },
    "confidence": <0.0 to 1.0>,
    "language_detected": "<en, hi, te, kn, ta, mr>"
}

JSON response:`

type classifyPayload struct {
	Intent           string            `json:"intent"`
	Entities         map[string]string `json:"entities"`
	Confidence       float64           `json:"confidence"`
	LanguageDetected string            `json:"language_detected"`
}

// ClassifyIntent determines what the farmer is asking for. The primary
// path asks the model for structured JSON; any failure falls back to
// keyword and script matching at a fixed confidence of 0.6.
func (a *Adapter) ClassifyIntent(ctx context.Context, query, language string) IntentResult {
	if a.client != nil {
		prompt := fmt.Sprintf(classifyPromptTemplate, query)
		raw, err := a.complete(ctx, prompt)
		if err == nil {
			payload, derr := decodeJSON[classifyPayload](raw)
			if derr == nil && intents.Known(intents.Intent(payload.Intent)) {
				lang := payload.LanguageDetected
				if lang == "" {
					lang = language
				}
				return IntentResult{
					Intent:           intents.Intent(payload.Intent),
					Entities:         payload.Entities,
					Confidence:       payload.Confidence,
					DetectedLanguage: lang,
					Origin:           OriginPrimary,
				}
			}
			err = derr
		}
		logging.WithComponent("llm").Warn("intent classification fell back to keywords", "error", err)
	}
	return fallbackClassify(query)
}

// Keyword lists per intent, checked in order. Mixed-script words cover
// the languages the advisory speaks.
var intentKeywords = []struct {
	intent intents.Intent
	words  []string
}{
	{intents.Irrigation, []string{"water", "irrigat", "पानी", "సించాయి", "నీరు", "ನೀರು"}},
	{intents.Weather, []string{"weather", "rain", "forecast", "मौसम", "वर्षा", "వర్షం", "వాతావరణం", "ಮಳೆ"}},
	{intents.CropStatus, []string{"status", "how is", "stage", "condition", "कैसी", "ఎలా", "ಹೇಗೆ"}},
	{intents.Harvest, []string{"harvest", "ready", "कटाई", "పంట కోత", "ಕೊಯ್ಲು"}},
	{intents.PestDisease, []string{"pest", "disease", "insect", "bug", "कीट", "रोग", "పురుగు", "ಕೀಟ"}},
	{intents.Fertilizer, []string{"fertiliz", "urea", "dap", "nutrient", "खाद", "ఎరువు", "ಗೊಬ್ಬರ"}},
	{intents.Sowing, []string{"sow", "plant", "बोना", "बुवाई", "విత్తనం", "ಬಿತ್ತನೆ"}},
	{intents.CropPlanning, []string{"next crop", "what to grow", "rotation", "अगली फसल", "తర్వాత పంట"}},
	{intents.Greeting, []string{"hello", "hi", "help", "नमस्ते", "హలో", "ನಮಸ್ಕಾರ"}},
}

func fallbackClassify(query string) IntentResult {
	lower := strings.ToLower(query)

	intent := intents.General
	for _, entry := range intentKeywords {
		if containsAny(lower, entry.words) {
			intent = entry.intent
			break
		}
	}

	return IntentResult{
		Intent:           intent,
		Entities:         map[string]string{},
		Confidence:       0.6,
		DetectedLanguage: DetectLanguage(query),
		Origin:           OriginFallback,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		// Very short keywords ("hi") match whole words only.
		if len(w) <= 2 {
			for _, f := range strings.Fields(s) {
				if strings.Trim(f, ".,!?") == w {
					return true
				}
			}
			continue
		}
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// DetectLanguage guesses the query language from its script. Latin text
// reads as English.
func DetectLanguage(text string) string {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Devanagari, r):
			return "hi"
		case unicode.Is(unicode.Telugu, r):
			return "te"
		case unicode.Is(unicode.Kannada, r):
			return "kn"
		case unicode.Is(unicode.Tamil, r):
			return "ta"
		}
	}
	return "en"
}

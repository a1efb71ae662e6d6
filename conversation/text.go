package conversation

import (
	"fmt"

	"github.com/sweetpotato0/agriadvisor/intents"
)

// DefaultLanguage is used when the farmer's language has no entry.
const DefaultLanguage = "en"

// Static per-field, per-language question text. Unlisted languages fall
// back to English; unlisted fields fall back to a generic phrasing.
var questions = map[string]map[string]string{
	intents.FieldCropType: {
		"en": "Which crop are you asking about?",
		"hi": "आप किस फसल के बारे में पूछ रहे हैं?",
		"te": "మీరు ఏ పంట గురించి అడుగుతున్నారు?",
	},
	intents.FieldSowingDate: {
		"en": "When did you sow this crop? (for example: 2026-06-15, or \"6 weeks ago\")",
		"hi": "आपने यह फसल कब बोई थी? (उदाहरण: 2026-06-15, या \"6 हफ्ते पहले\")",
		"te": "మీరు ఈ పంటను ఎప్పుడు విత్తారు? (ఉదా: 2026-06-15, లేదా \"6 వారాల క్రితం\")",
	},
	intents.FieldLocation: {
		"en": "Where is your farm located? Please share your village or district name.",
		"hi": "आपका खेत कहाँ स्थित है? कृपया अपने गाँव या जिले का नाम बताएं।",
		"te": "మీ పొలం ఎక్కడ ఉంది? దయచేసి మీ గ్రామం లేదా జిల్లా పేరు చెప్పండి.",
	},
	intents.FieldPreviousCrop: {
		"en": "Which crop did you grow in this field last season?",
		"hi": "पिछले सीज़न में आपने इस खेत में कौन सी फसल उगाई थी?",
		"te": "గత సీజన్‌లో మీరు ఈ పొలంలో ఏ పంట పండించారు?",
	},
	intents.FieldPlannedSowingDate: {
		"en": "When are you planning to sow?",
		"hi": "आप कब बोने की योजना बना रहे हैं?",
		"te": "మీరు ఎప్పుడు విత్తాలని అనుకుంటున్నారు?",
	},
	intents.FieldSymptomDescription: {
		"en": "Please describe what you see on the plants: spots, color, affected parts.",
		"hi": "कृपया बताएं कि पौधों पर क्या दिख रहा है: धब्बे, रंग, प्रभावित हिस्से।",
		"te": "మొక్కలపై ఏమి కనిపిస్తుందో చెప్పండి: మచ్చలు, రంగు, ప్రభావిత భాగాలు.",
	},
}

var clarifications = map[string]string{
	"en": "Sorry, I didn't catch that. ",
	"hi": "माफ़ कीजिए, मैं समझ नहीं पाया। ",
	"te": "క్షమించండి, నాకు అర్థం కాలేదు. ",
}

var greetings = map[string]string{
	"en": "How can I help you with your farming today?",
	"hi": "आज मैं आपकी खेती में कैसे मदद कर सकता हूँ?",
	"te": "ఈరోజు మీ వ్యవసాయంలో నేను ఎలా సహాయం చేయగలను?",
}

// Question returns the question text for a field in the given language.
func Question(field, language string) string {
	byLang, ok := questions[field]
	if !ok {
		return fmt.Sprintf("Please provide: %s", field)
	}
	if q, ok := byLang[language]; ok {
		return q
	}
	return byLang[DefaultLanguage]
}

// Clarification returns the re-ask prefix for a failed extraction.
func Clarification(language string) string {
	if c, ok := clarifications[language]; ok {
		return c
	}
	return clarifications[DefaultLanguage]
}

// Greeting returns the greeting response text.
func Greeting(language string) string {
	if g, ok := greetings[language]; ok {
		return g
	}
	return greetings[DefaultLanguage]
}

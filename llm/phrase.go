package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sweetpotato0/agriadvisor/intents"
	"github.com/sweetpotato0/agriadvisor/pkg/logging"
)

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"te": "Telugu",
	"kn": "Kannada",
	"ta": "Tamil",
	"mr": "Marathi",
}

// PhraseResponse turns the pipeline's decision data into a short, warm
// reply in the farmer's language. The primary path prompts the model;
// any failure falls back to a fixed template.
func (a *Adapter) PhraseResponse(ctx context.Context, d DecisionData, language, farmerName string) PhraseResult {
	if a.client != nil {
		raw, err := a.complete(ctx, a.phrasePrompt(d, language, farmerName))
		if err == nil && strings.TrimSpace(raw) != "" {
			return PhraseResult{Text: strings.TrimSpace(raw), Origin: OriginPrimary}
		}
		logging.WithComponent("llm").Warn("response phrasing fell back to template", "error", err)
	}
	return PhraseResult{Text: templateResponse(d, farmerName), Origin: OriginFallback}
}

func (a *Adapter) phrasePrompt(d DecisionData, language, farmerName string) string {
	langName, ok := languageNames[language]
	if !ok {
		langName = "English"
	}

	var parts []string
	if d.WeatherOK {
		parts = append(parts, fmt.Sprintf("Current weather: %g°C, %s",
			d.Weather.Current.TemperatureC, d.Weather.Current.Condition))
		parts = append(parts, fmt.Sprintf("Farming impact: spray_safe=%t, irrigation_needed=%t",
			d.Weather.Impact.SpraySafe, d.Weather.Impact.IrrigationNeeded))
	} else {
		parts = append(parts, "Weather info: unknown because the farmer's location is not set in their profile.")
	}
	if d.CropStageOK {
		parts = append(parts, fmt.Sprintf("Crop: %s, Stage: %s, Progress: %.0f%%",
			d.CropStage.CropType, d.CropStage.CurrentStage, d.CropStage.OverallProgress*100))
		parts = append(parts, fmt.Sprintf("Water need: %s", d.CropStage.WaterNeed))
	}
	if d.RisksOK && len(d.Risks.Risks) > 0 {
		var types []string
		for _, r := range d.Risks.Risks {
			types = append(types, r.Type)
		}
		parts = append(parts, fmt.Sprintf("Risks: %s", strings.Join(types, ", ")))
	}
	if d.Recommendation != "" {
		parts = append(parts, fmt.Sprintf("Recommendation: %s", d.Recommendation))
	}

	name := farmerName
	if name == "" {
		name = "Friend"
	}

	return fmt.Sprintf(`You are a friendly, helpful agricultural expert talking 1-on-1 with a farmer.

Farmer's name: %s
Query intent: %s

Information from our analysis:
%s

Guidelines:
1. Speak naturally, like a person talking to a person.
2. ONLY answer what is necessary and important based on the query.
3. If weather data is missing, kindly remind the farmer to set their location in the profile.
4. Do NOT use formal headers.
5. Keep it warm, concise (2-3 sentences), and practical.

Your response in %s:`, name, d.Intent, strings.Join(parts, "\n"), langName)
}

// templateResponse assembles the deterministic fallback reply: greeting,
// intent-specific section, alerts, and the top two risk messages.
func templateResponse(d DecisionData, farmerName string) string {
	var parts []string

	if farmerName != "" {
		parts = append(parts, fmt.Sprintf("Hello %s!", farmerName))
	}

	switch d.Intent {
	case intents.Irrigation:
		parts = append(parts, formatIrrigation(d))
	case intents.Weather:
		parts = append(parts, formatWeather(d))
	case intents.CropStatus:
		parts = append(parts, formatCropStatus(d))
	case intents.Harvest:
		parts = append(parts, formatHarvest(d))
	case intents.Greeting:
		parts = append(parts, "How can I help you with your farming today?")
	default:
		if d.Recommendation != "" {
			parts = append(parts, d.Recommendation)
		} else {
			parts = append(parts, "I'm here to help with your farming questions.")
		}
	}

	if len(d.Alerts) > 0 {
		parts = append(parts, "\n⚠️ Alerts:")
		for _, alert := range d.Alerts {
			parts = append(parts, "• "+alert)
		}
	}

	if d.RisksOK && len(d.Risks.Risks) > 0 {
		parts = append(parts, "\n📋 Things to watch:")
		for i, r := range d.Risks.Risks {
			if i >= 2 {
				break
			}
			parts = append(parts, "• "+r.Message)
		}
	}

	return strings.Join(parts, "\n")
}

func formatIrrigation(d DecisionData) string {
	impact := d.Weather.Impact
	stage := d.CropStage.CurrentStage
	waterNeed := d.CropStage.WaterNeed
	if waterNeed == "" {
		waterNeed = "medium"
	}

	switch {
	case impact.IrrigationNeeded && waterNeed == "critical":
		return fmt.Sprintf("Yes, irrigate today. Your crop is in %s stage which needs critical water. Current conditions are dry with no rain expected.", stage)
	case impact.IrrigationNeeded:
		return fmt.Sprintf("Yes, irrigation recommended. Your crop is in %s stage. No significant rain is expected in the next few days.", stage)
	case impact.RainRisk > 0.5:
		return fmt.Sprintf("Hold irrigation. There's a %.0f%% chance of rain. Wait and check tomorrow.", impact.RainRisk*100)
	case waterNeed == "low" || waterNeed == "none":
		return fmt.Sprintf("No irrigation needed. Your crop is in %s stage with low water requirement.", stage)
	default:
		return fmt.Sprintf("Irrigation is optional today. Your crop is in %s stage with %s water needs. Monitor soil moisture.", stage, waterNeed)
	}
}

func formatWeather(d DecisionData) string {
	if !d.WeatherOK {
		return "I could not fetch the weather. Please set your farm location in your profile."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current weather: %g°C, %s", d.Weather.Current.TemperatureC, d.Weather.Current.Condition)

	if len(d.Weather.Forecast3Day) > 0 {
		b.WriteString("\n\n3-day forecast:")
		for _, f := range d.Weather.Forecast3Day {
			fmt.Fprintf(&b, "\n• %s: %g-%g°C", f.Date.Format("2006-01-02"), f.TempMinC, f.TempMaxC)
			if f.RainProbability > 30 {
				fmt.Fprintf(&b, " (Rain: %g%%)", f.RainProbability)
			}
		}
	}

	b.WriteString("\n\nFor farming: ")
	if d.Weather.Impact.SpraySafe {
		b.WriteString("✅ Safe for spraying. ")
	} else {
		b.WriteString("❌ Not ideal for spraying. ")
	}
	if d.Weather.Impact.FieldWorkSafe {
		b.WriteString("✅ Field work OK.")
	} else {
		b.WriteString("⚠️ Avoid heavy field work.")
	}
	return b.String()
}

func formatCropStatus(d DecisionData) string {
	s := d.CropStage
	if !d.CropStageOK {
		return "Tell me your crop and sowing date and I can track its growth stage for you."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your crop is in %s stage (%.0f%% complete)\n", strings.ReplaceAll(s.CurrentStage, "_", " "), s.OverallProgress*100)
	fmt.Fprintf(&b, "• Days since sowing: %d\n", s.DaysSinceSowing)
	fmt.Fprintf(&b, "• Water requirement: %s\n", s.WaterNeed)
	fmt.Fprintf(&b, "• Nutrient requirement: %s", s.NutrientNeed)
	if s.HeatSensitive {
		fmt.Fprintf(&b, "\n\n⚠️ This stage is sensitive to heat. Critical temp: %g°C", s.CriticalTempMax)
	}
	return b.String()
}

func formatHarvest(d DecisionData) string {
	s := d.CropStage
	switch s.CurrentStage {
	case "harvest":
		return "Your crop is ready for harvest! Check weather for dry conditions before harvesting."
	case "maturity":
		return fmt.Sprintf("Almost there! Your crop is in maturity stage (%.0f%% complete). Harvest in about 1-2 weeks depending on conditions.", s.OverallProgress*100)
	default:
		remaining := (1 - s.OverallProgress) * 100
		msg := fmt.Sprintf("Not yet ready for harvest. Your crop is %.0f%% through its lifecycle. Still %.0f%% to go in %s stage.", s.OverallProgress*100, remaining, s.CurrentStage)
		if s.DaysToNextStage > 0 && s.DaysToNextStage < 999 {
			msg += fmt.Sprintf(" Expect the next stage in about %d days.", s.DaysToNextStage)
		}
		return msg
	}
}

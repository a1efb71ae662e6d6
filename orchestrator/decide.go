package orchestrator

import (
	"fmt"

	"github.com/sweetpotato0/agriadvisor/evaluator/risk"
	"github.com/sweetpotato0/agriadvisor/evaluator/weatherimpact"
	"github.com/sweetpotato0/agriadvisor/intents"
)

// Decide is the rule table turning evaluator outputs into one canonical
// recommendation per intent family. Pure function, no model involved;
// all decision text in the system originates here.
func Decide(intent intents.Intent, impact weatherimpact.Impact, currentStage, waterNeed string, riskLevel risk.Severity) string {
	switch intent {
	case intents.Irrigation:
		switch {
		case impact.RainRisk > 0.6:
			return "Do not irrigate today - rain is expected."
		case impact.IrrigationNeeded && (waterNeed == "high" || waterNeed == "critical"):
			return "Irrigation recommended today."
		case waterNeed == "low" || waterNeed == "none":
			return fmt.Sprintf("Irrigation not necessary - %s stage has low water needs.", currentStage)
		default:
			return "Optional irrigation - monitor soil moisture."
		}

	case intents.Harvest:
		switch currentStage {
		case "harvest":
			if impact.RainRisk < 0.3 {
				return "Your crop is ready for harvest. Weather looks good."
			}
			return "Crop ready but rain expected. Harvest quickly or wait for dry spell."
		case "maturity":
			return "Crop nearly ready. Prepare for harvest in 1-2 weeks."
		default:
			return fmt.Sprintf("Crop not ready - currently in %s stage.", currentStage)
		}

	case intents.Weather:
		if impact.SpraySafe {
			return "Good conditions for field work and spraying."
		}
		return "Weather may affect field activities. Check before spraying."

	case intents.PestDisease:
		return "For pest/disease issues, describe symptoms or upload a photo. Common issues for this stage are being assessed."

	default:
		if riskLevel == risk.High {
			return fmt.Sprintf("Alert: High risk detected for your %s stage crop. Take precautions.", currentStage)
		}
		return "Your crop is progressing well. Keep monitoring."
	}
}

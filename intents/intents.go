// Package intents defines the fixed intent vocabulary and the per-intent
// required-field table that drives slot-filling. Both are stable contracts:
// a replacement implementation must reproduce them exactly.
package intents

// Intent classifies what a farmer is asking for.
type Intent string

const (
	Irrigation   Intent = "irrigation_query"
	Weather      Intent = "weather_query"
	CropStatus   Intent = "crop_status_query"
	Harvest      Intent = "harvest_query"
	PestDisease  Intent = "pest_disease_query"
	Fertilizer   Intent = "fertilizer_query"
	Sowing       Intent = "sowing_query"
	CropPlanning Intent = "crop_planning_query"
	General      Intent = "general_farming"
	Greeting     Intent = "greeting"
	Unclear      Intent = "unclear"
)

// Field names collected during slot-filling.
const (
	FieldCropType           = "crop_type"
	FieldSowingDate         = "sowing_date"
	FieldLocation           = "location"
	FieldPreviousCrop       = "previous_crop"
	FieldPlannedSowingDate  = "planned_sowing_date"
	FieldSymptomDescription = "symptom_description"
)

// All lists every known intent.
var All = []Intent{
	Irrigation, Weather, CropStatus, Harvest, PestDisease,
	Fertilizer, Sowing, CropPlanning, General, Greeting, Unclear,
}

// requiredFields maps each intent to its ordered required-field list.
// Intents absent from the table require nothing. The ordering here is the
// order questions are asked in, one field per turn.
var requiredFields = map[Intent][]string{
	Irrigation:   {FieldCropType, FieldSowingDate, FieldLocation},
	Harvest:      {FieldCropType, FieldSowingDate, FieldLocation},
	CropStatus:   {FieldCropType, FieldSowingDate},
	Fertilizer:   {FieldCropType, FieldSowingDate},
	PestDisease:  {FieldCropType, FieldSymptomDescription},
	Sowing:       {FieldCropType, FieldLocation},
	CropPlanning: {FieldPreviousCrop, FieldLocation},
}

// RequiredFields returns a copy of the ordered required-field list for intent.
func RequiredFields(intent Intent) []string {
	fields, ok := requiredFields[intent]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Known reports whether the intent is part of the fixed vocabulary.
func Known(intent Intent) bool {
	for _, i := range All {
		if i == intent {
			return true
		}
	}
	return false
}

package cropdata

// Base temperatures in Celsius for daily heat-unit accumulation.
// GDD = max(0, (Tmax + Tmin)/2 - Tbase)
var baseTemperatures = map[string]float64{
	// Cereals
	"rice":    10.0,
	"wheat":   4.5,
	"maize":   10.0,
	"corn":    10.0,
	"sorghum": 10.0,
	"barley":  5.0,
	"millet":  10.0,

	// Pulses
	"chickpea":   5.0,
	"lentil":     5.0,
	"pigeon_pea": 10.0,
	"green_gram": 10.0,
	"black_gram": 10.0,

	// Oilseeds
	"groundnut": 13.0,
	"soybean":   10.0,
	"sunflower": 6.0,
	"mustard":   5.0,
	"sesame":    15.0,

	// Cash crops
	"cotton":    15.5,
	"sugarcane": 12.0,
	"tobacco":   13.0,

	// Vegetables
	"tomato":      10.0,
	"onion":       5.0,
	"potato":      7.0,
	"chili":       15.0,
	"brinjal":     15.0,
	"okra":        18.0,
	"cabbage":     4.5,
	"cauliflower": 4.5,
	"carrot":      7.0,
	"spinach":     2.0,

	// Fruits
	"banana":     14.0,
	"mango":      15.0,
	"papaya":     15.0,
	"watermelon": 18.0,
}

// DefaultBaseTemperature is used for crops missing from the table.
const DefaultBaseTemperature = 10.0

// BaseTemperature returns the base temperature for a crop type,
// falling back to DefaultBaseTemperature for unknown crops.
func BaseTemperature(cropType string) float64 {
	if temp, ok := baseTemperatures[Normalize(cropType)]; ok {
		return temp
	}
	return DefaultBaseTemperature
}

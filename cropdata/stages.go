package cropdata

// Stage tables for the crops the advisory covers. Ranges are accumulated
// growing degree days since sowing; each table is contiguous from zero and
// ends in the terminal harvest stage.
var crops = map[string]*Crop{
	"rice": {
		Name:             "Rice",
		Category:         "cereal",
		BaseTemperature:  10.0,
		SeasonDays:       [2]int{110, 150},
		WaterRequirement: "high",
		Stages: []Stage{
			{Name: "germination", GDDStart: 0, GDDEnd: 150, Description: "Seed sprouting and emergence", WaterNeed: "high", NutrientNeed: "low"},
			{Name: "seedling", GDDStart: 150, GDDEnd: 350, Description: "Early leaf development", WaterNeed: "high", NutrientNeed: "medium"},
			{Name: "vegetative", GDDStart: 350, GDDEnd: 900, Description: "Tillering and stem elongation", WaterNeed: "high", NutrientNeed: "high"},
			{Name: "flowering", GDDStart: 900, GDDEnd: 1200, Description: "Panicle initiation and flowering", WaterNeed: "critical", NutrientNeed: "high", HeatSensitive: true, CriticalTempMax: 35},
			{Name: "grain_filling", GDDStart: 1200, GDDEnd: 1600, Description: "Grain development and filling", WaterNeed: "high", NutrientNeed: "medium"},
			{Name: "maturity", GDDStart: 1600, GDDEnd: 1900, Description: "Grain ripening, field drying", WaterNeed: "low", NutrientNeed: "none"},
			{Name: "harvest", GDDStart: 1900, GDDEnd: 2200, Description: "Ready for harvest", WaterNeed: "none", NutrientNeed: "none"},
		},
		CommonPests:    []string{"stem borer", "brown planthopper", "leaf folder"},
		CommonDiseases: []string{"blast", "bacterial leaf blight", "sheath blight"},
	},
	"wheat": {
		Name:             "Wheat",
		Category:         "cereal",
		BaseTemperature:  4.5,
		SeasonDays:       [2]int{110, 140},
		WaterRequirement: "medium",
		Stages: []Stage{
			{Name: "germination", GDDStart: 0, GDDEnd: 120, Description: "Seed sprouting and emergence", WaterNeed: "medium", NutrientNeed: "low"},
			{Name: "seedling", GDDStart: 120, GDDEnd: 300, Description: "Crown root initiation", WaterNeed: "medium", NutrientNeed: "medium"},
			{Name: "vegetative", GDDStart: 300, GDDEnd: 800, Description: "Tillering and jointing", WaterNeed: "high", NutrientNeed: "high"},
			{Name: "flowering", GDDStart: 800, GDDEnd: 1100, Description: "Heading and anthesis", WaterNeed: "critical", NutrientNeed: "medium", HeatSensitive: true, CriticalTempMax: 32},
			{Name: "grain_filling", GDDStart: 1100, GDDEnd: 1500, Description: "Milk and dough stages", WaterNeed: "medium", NutrientNeed: "low"},
			{Name: "maturity", GDDStart: 1500, GDDEnd: 1700, Description: "Physiological maturity", WaterNeed: "low", NutrientNeed: "none"},
			{Name: "harvest", GDDStart: 1700, GDDEnd: 2000, Description: "Ready for harvest", WaterNeed: "none", NutrientNeed: "none"},
		},
		CommonPests:    []string{"aphid", "armyworm", "termite"},
		CommonDiseases: []string{"rust", "powdery mildew", "loose smut"},
	},
	"maize": {
		Name:             "Maize",
		Category:         "cereal",
		BaseTemperature:  10.0,
		SeasonDays:       [2]int{90, 120},
		WaterRequirement: "medium",
		Stages: []Stage{
			{Name: "germination", GDDStart: 0, GDDEnd: 125, Description: "Seed sprouting and emergence", WaterNeed: "medium", NutrientNeed: "low"},
			{Name: "seedling", GDDStart: 125, GDDEnd: 350, Description: "Early leaf stages", WaterNeed: "medium", NutrientNeed: "medium"},
			{Name: "vegetative", GDDStart: 350, GDDEnd: 800, Description: "Rapid stem and leaf growth", WaterNeed: "high", NutrientNeed: "high"},
			{Name: "tasseling", GDDStart: 800, GDDEnd: 1000, Description: "Tassel emergence", WaterNeed: "critical", NutrientNeed: "high", HeatSensitive: true, CriticalTempMax: 35},
			{Name: "silking", GDDStart: 1000, GDDEnd: 1200, Description: "Silk emergence and pollination", WaterNeed: "critical", NutrientNeed: "medium", HeatSensitive: true, CriticalTempMax: 35},
			{Name: "grain_filling", GDDStart: 1200, GDDEnd: 1600, Description: "Kernel development", WaterNeed: "high", NutrientNeed: "medium"},
			{Name: "maturity", GDDStart: 1600, GDDEnd: 1900, Description: "Black layer formation", WaterNeed: "low", NutrientNeed: "none"},
			{Name: "harvest", GDDStart: 1900, GDDEnd: 2100, Description: "Ready for harvest", WaterNeed: "none", NutrientNeed: "none"},
		},
		CommonPests:    []string{"fall armyworm", "stem borer", "shoot fly"},
		CommonDiseases: []string{"turcicum leaf blight", "downy mildew", "stalk rot"},
	},
	"cotton": {
		Name:             "Cotton",
		Category:         "cash crop",
		BaseTemperature:  15.5,
		SeasonDays:       [2]int{150, 180},
		WaterRequirement: "medium",
		Stages: []Stage{
			{Name: "germination", GDDStart: 0, GDDEnd: 100, Description: "Seed sprouting and emergence", WaterNeed: "medium", NutrientNeed: "low"},
			{Name: "seedling", GDDStart: 100, GDDEnd: 300, Description: "Early square formation", WaterNeed: "medium", NutrientNeed: "medium"},
			{Name: "vegetative", GDDStart: 300, GDDEnd: 900, Description: "Squaring and branch growth", WaterNeed: "high", NutrientNeed: "high"},
			{Name: "flowering", GDDStart: 900, GDDEnd: 1500, Description: "Flowering and boll set", WaterNeed: "critical", NutrientNeed: "high", HeatSensitive: true, CriticalTempMax: 38},
			{Name: "boll_development", GDDStart: 1500, GDDEnd: 1900, Description: "Boll filling", WaterNeed: "high", NutrientNeed: "medium"},
			{Name: "boll_opening", GDDStart: 1900, GDDEnd: 2200, Description: "Boll opening and fibre maturation", WaterNeed: "low", NutrientNeed: "none"},
			{Name: "harvest", GDDStart: 2200, GDDEnd: 2600, Description: "Picking ready", WaterNeed: "none", NutrientNeed: "none"},
		},
		CommonPests:    []string{"bollworm", "whitefly", "pink bollworm"},
		CommonDiseases: []string{"bacterial blight", "wilt", "leaf curl virus"},
	},
	"tomato": {
		Name:             "Tomato",
		Category:         "vegetable",
		BaseTemperature:  10.0,
		SeasonDays:       [2]int{90, 130},
		WaterRequirement: "medium",
		Stages: []Stage{
			{Name: "germination", GDDStart: 0, GDDEnd: 100, Description: "Seed sprouting", WaterNeed: "medium", NutrientNeed: "low"},
			{Name: "seedling", GDDStart: 100, GDDEnd: 300, Description: "Transplant establishment", WaterNeed: "medium", NutrientNeed: "medium"},
			{Name: "vegetative", GDDStart: 300, GDDEnd: 700, Description: "Vine and canopy growth", WaterNeed: "high", NutrientNeed: "high"},
			{Name: "flowering", GDDStart: 700, GDDEnd: 1100, Description: "Flowering and fruit set", WaterNeed: "critical", NutrientNeed: "high", HeatSensitive: true, CriticalTempMax: 32},
			{Name: "fruiting", GDDStart: 1100, GDDEnd: 1500, Description: "Fruit development", WaterNeed: "high", NutrientNeed: "medium"},
			{Name: "maturity", GDDStart: 1500, GDDEnd: 1800, Description: "Fruit ripening", WaterNeed: "medium", NutrientNeed: "low"},
			{Name: "harvest", GDDStart: 1800, GDDEnd: 2000, Description: "Picking ready", WaterNeed: "low", NutrientNeed: "none"},
		},
		CommonPests:    []string{"fruit borer", "whitefly", "leaf miner"},
		CommonDiseases: []string{"early blight", "late blight", "leaf curl virus"},
	},
}

func init() {
	// "corn" shares the maize table.
	crops["corn"] = crops["maize"]
}

package stage

import (
	"math"
	"time"

	"github.com/sweetpotato0/agriadvisor/cropdata"
	"github.com/sweetpotato0/agriadvisor/weather"
)

// upperThreshold caps the daily maximum temperature; growth stops above it.
const upperThreshold = 35.0

// GDDResult holds accumulated heat units since sowing. Derived, never
// persisted; recomputed per turn.
type GDDResult struct {
	AccumulatedGDD  float64 `json:"accumulated_gdd"`
	DaysSinceSowing int     `json:"days_since_sowing"`
	DailyGDD        float64 `json:"daily_gdd"` // today's contribution
	AverageDailyGDD float64 `json:"average_daily_gdd"`
}

// DailyGDD computes one day's heat-unit contribution using the modified
// averaging method: max(0, (min(Tmax, 35) + max(Tmin, base))/2 - base).
// Never negative.
func DailyGDD(tempMax, tempMin, baseTemp float64) float64 {
	tempMax = math.Min(tempMax, upperThreshold)
	tempMin = math.Max(tempMin, baseTemp)
	gdd := (tempMax+tempMin)/2 - baseTemp
	if gdd < 0 {
		gdd = 0
	}
	return round2(gdd)
}

// AccumulateGDD sums daily contributions over historical records.
func AccumulateGDD(records []weather.DayRecord, cropType string) GDDResult {
	baseTemp := cropdata.BaseTemperature(cropType)
	accumulated := 0.0
	for _, r := range records {
		accumulated += DailyGDD(r.TempMaxC, r.TempMinC, baseTemp)
	}

	days := len(records)
	today := 0.0
	if days > 0 {
		last := records[days-1]
		today = DailyGDD(last.TempMaxC, last.TempMinC, baseTemp)
	}

	avg := 0.0
	if days > 0 {
		avg = round2(accumulated / float64(days))
	}

	return GDDResult{
		AccumulatedGDD:  round2(accumulated),
		DaysSinceSowing: days,
		DailyGDD:        today,
		AverageDailyGDD: avg,
	}
}

// EstimateGDDFromAverage estimates accumulation from regional average
// temperatures when historical data is unavailable.
func EstimateGDDFromAverage(sowingDate time.Time, avgTempMax, avgTempMin float64, cropType string, now time.Time) GDDResult {
	days := int(now.Sub(sowingDate).Hours() / 24)
	if days < 0 {
		return GDDResult{}
	}

	baseTemp := cropdata.BaseTemperature(cropType)
	daily := DailyGDD(avgTempMax, avgTempMin, baseTemp)

	return GDDResult{
		AccumulatedGDD:  round2(daily * float64(days)),
		DaysSinceSowing: days,
		DailyGDD:        daily,
		AverageDailyGDD: daily,
	}
}

// DaysToTargetGDD estimates days until a target accumulation is reached.
// Returns 0 if already reached and 999 when no estimate is possible.
func DaysToTargetGDD(currentGDD, targetGDD, avgDailyGDD float64) int {
	if currentGDD >= targetGDD {
		return 0
	}
	if avgDailyGDD <= 0 {
		return 999
	}
	return int((targetGDD-currentGDD)/avgDailyGDD) + 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sweetpotato0/agriadvisor/cropdata"
	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
	"github.com/sweetpotato0/agriadvisor/intents"
	"github.com/sweetpotato0/agriadvisor/pkg/logging"
)

const extractDatePromptTemplate = `Extract the date the farmer means from this message. Today is %s.

Message: %q

Respond ONLY with valid JSON: {"date": "<YYYY-MM-DD or empty if no date found>"}`

type datePayload struct {
	Date string `json:"date"`
}

// ExtractField pulls the answer to the current slot-filling question out
// of the farmer's free-form message. An error means the value could not
// be parsed and the question should be re-asked; it is never a fault.
func (a *Adapter) ExtractField(ctx context.Context, field, message, language string) (string, Origin, error) {
	message = strings.TrimSpace(message)

	switch field {
	case intents.FieldSowingDate, intents.FieldPlannedSowingDate:
		return a.extractDate(ctx, message)
	case intents.FieldCropType:
		return extractCropType(message)
	case intents.FieldSymptomDescription, intents.FieldLocation, intents.FieldPreviousCrop:
		return passThrough(message)
	default:
		return passThrough(message)
	}
}

func (a *Adapter) extractDate(ctx context.Context, message string) (string, Origin, error) {
	now := a.now()
	if d, ok := ResolveRelativeDate(message, now); ok {
		return d.Format("2006-01-02"), OriginFallback, nil
	}

	if a.client != nil {
		prompt := fmt.Sprintf(extractDatePromptTemplate, now.Format("2006-01-02"), message)
		raw, err := a.complete(ctx, prompt)
		if err == nil {
			payload, derr := decodeJSON[datePayload](raw)
			if derr == nil && payload.Date != "" {
				if _, perr := time.Parse("2006-01-02", payload.Date); perr == nil {
					return payload.Date, OriginPrimary, nil
				}
			}
		} else {
			logging.WithComponent("llm").Warn("date extraction fell back", "error", err)
		}
	}

	return "", OriginFallback, fmt.Errorf("no date found in %q: %w", message, agrierrors.ErrInvalidInput)
}

func extractCropType(message string) (string, Origin, error) {
	if message == "" {
		return "", OriginFallback, fmt.Errorf("empty crop answer: %w", agrierrors.ErrInvalidInput)
	}
	// Prefer a known crop name mentioned anywhere in the message.
	lower := strings.ToLower(message)
	for _, name := range cropdata.AvailableCrops() {
		if strings.Contains(lower, strings.ReplaceAll(name, "_", " ")) || strings.Contains(lower, name) {
			return name, OriginFallback, nil
		}
	}
	// Short answers pass through as-is.
	if len(strings.Fields(message)) <= 3 {
		return cropdata.Normalize(message), OriginFallback, nil
	}
	return "", OriginFallback, fmt.Errorf("no crop name found in %q: %w", message, agrierrors.ErrInvalidInput)
}

func passThrough(message string) (string, Origin, error) {
	if len(message) < 2 {
		return "", OriginFallback, fmt.Errorf("answer too short: %w", agrierrors.ErrInvalidInput)
	}
	return message, OriginFallback, nil
}

var (
	agoPattern = regexp.MustCompile(`(?i)(\d+)\s*(day|week|month)s?\s*(ago|back)`)
	inPattern  = regexp.MustCompile(`(?i)in\s+(\d+)\s*(day|week|month)s?`)
	isoPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	dmyPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
)

// ResolveRelativeDate resolves relative date phrases ("today",
// "tomorrow", "3 weeks ago", "next week") and literal dates against a
// reference time. Fixed offsets only.
func ResolveRelativeDate(text string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(lower, "today"):
		return day, true
	case strings.Contains(lower, "yesterday"):
		return day.AddDate(0, 0, -1), true
	case strings.Contains(lower, "tomorrow"):
		return day.AddDate(0, 0, 1), true
	case strings.Contains(lower, "last week"):
		return day.AddDate(0, 0, -7), true
	case strings.Contains(lower, "next week"):
		return day.AddDate(0, 0, 7), true
	case strings.Contains(lower, "last month"):
		return day.AddDate(0, -1, 0), true
	case strings.Contains(lower, "next month"):
		return day.AddDate(0, 1, 0), true
	}

	if m := agoPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return addUnits(day, -n, m[2]), true
	}
	if m := inPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return addUnits(day, n, m[2]), true
	}

	if m := isoPattern.FindString(text); m != "" {
		if d, err := time.ParseInLocation("2006-01-02", m, now.Location()); err == nil {
			return d, true
		}
	}
	if m := dmyPattern.FindStringSubmatch(text); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if mo >= 1 && mo <= 12 && d >= 1 && d <= 31 {
			return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, now.Location()), true
		}
	}

	return time.Time{}, false
}

func addUnits(day time.Time, n int, unit string) time.Time {
	switch unit {
	case "week":
		return day.AddDate(0, 0, n*7)
	case "month":
		return day.AddDate(0, n, 0)
	}
	return day.AddDate(0, 0, n)
}

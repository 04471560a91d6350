package agent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/tools"
)

// Pattern rules used to pull missing tool parameters out of a confirmation
// message. These are deliberately narrow: they run only on the follow-up
// turn of a confirmation cycle, where the user was just asked for one
// specific value.
var (
	weightPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:kg|kilos?|kilograms?)?`)
	durationPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(min(?:ute)?s?|h(?:ou)?rs?|h\b)`)
	waterPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(ml|milliliters?|l\b|liters?|litres?|glass(?:es)?|cups?)`)
	sleepPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:h(?:ou)?rs?)?`)
	numberPattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

var mealTypeKeywords = []struct {
	keyword  string
	mealType string
}{
	{"breakfast", "breakfast"},
	{"brunch", "breakfast"},
	{"lunch", "lunch"},
	{"dinner", "dinner"},
	{"supper", "dinner"},
	{"snack", "snack"},
}

// extractField attempts to recover one missing parameter for a tool from
// the user's message. Returns the value and whether extraction succeeded.
func extractField(toolName, field, message string) (any, bool) {
	lower := strings.ToLower(message)

	switch toolName {
	case tools.ToolLogWeight:
		if field == "weight" {
			return extractNumber(weightPattern, lower)
		}
	case tools.ToolLogExercise:
		switch field {
		case "duration":
			return extractDurationMinutes(lower)
		case "activity":
			if activity := stripDurationPhrase(message); activity != "" {
				return activity, true
			}
		}
	case tools.ToolLogWater:
		if field == "amount" {
			return extractWaterMl(lower)
		}
	case tools.ToolLogSleep:
		if field == "hours" {
			return extractNumber(sleepPattern, lower)
		}
	case tools.ToolLogMeal:
		switch field {
		case "description":
			if desc := strings.TrimSpace(message); desc != "" {
				return desc, true
			}
		case "meal_type":
			for _, kw := range mealTypeKeywords {
				if strings.Contains(lower, kw.keyword) {
					return kw.mealType, true
				}
			}
		}
	}

	// A bare number answers whichever single numeric field was asked for.
	if isNumericField(field) {
		if m := numberPattern.FindString(lower); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return f, true
			}
		}
	}
	return nil, false
}

func extractNumber(pattern *regexp.Regexp, s string) (any, bool) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func extractDurationMinutes(s string) (any, bool) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, false
	}
	if strings.HasPrefix(m[2], "h") {
		f *= 60
	}
	return f, true
}

func extractWaterMl(s string) (any, bool) {
	m := waterPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, false
	}
	unit := m[2]
	switch {
	case strings.HasPrefix(unit, "l"):
		f *= 1000
	case strings.HasPrefix(unit, "glass"), strings.HasPrefix(unit, "cup"):
		f *= 250
	}
	return f, true
}

// stripDurationPhrase removes a duration token from a message so the rest
// can stand as the activity description ("ran 30 minutes" -> "ran").
func stripDurationPhrase(s string) string {
	stripped := durationPattern.ReplaceAllString(strings.ToLower(s), "")
	stripped = strings.Trim(stripped, " .,!?-")
	stripped = strings.TrimPrefix(stripped, "for ")
	stripped = strings.TrimSuffix(stripped, " for")
	return strings.TrimSpace(stripped)
}

func isNumericField(field string) bool {
	switch field {
	case "weight", "duration", "amount", "hours", "calories", "calories_burned":
		return true
	}
	return false
}

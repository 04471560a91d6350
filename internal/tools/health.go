package tools

import (
	"context"
	"fmt"
	"time"
)

// CheckinWriter is the persistence surface the health tools write through.
// *store.Store satisfies it.
type CheckinWriter interface {
	AppendWeight(userID string, ts time.Time, weightKg float64, source string) error
	AppendMeal(userID string, ts time.Time, description, mealType string, calories float64, source string) error
	AppendExercise(userID string, ts time.Time, activity string, durationMin, caloriesBurned float64, source string) error
	AppendWater(userID string, ts time.Time, amountMl float64, source string) error
	AppendSleep(userID string, ts time.Time, hours float64, quality, source string) error
}

// checkinSource marks rows written from the chat path.
const checkinSource = "chat"

// Tool names the plan stage dispatches on.
const (
	ToolLogWeight   = "log_weight"
	ToolLogMeal     = "log_meal"
	ToolLogExercise = "log_exercise"
	ToolLogWater    = "log_water"
	ToolLogSleep    = "log_sleep"
)

// RegisterHealthTools installs the five checkin tools into the registry.
// Each handler performs exactly one persistent write. Handlers are not
// deduplicated: repeated calls create repeated records.
func RegisterHealthTools(r *Registry, w CheckinWriter) {
	r.MustRegister(&Tool{
		Name:        ToolLogWeight,
		Description: "Record the user's body weight in kilograms.",
		Schema: Schema{
			Required: []string{"weight"},
			Properties: map[string]Property{
				"weight": {Type: "number", Description: "Body weight in kg", Positive: true},
			},
		},
		Execute: func(ctx context.Context, userID string, args map[string]any) (string, map[string]any, error) {
			weight := args["weight"].(float64)
			if err := w.AppendWeight(userID, time.Now(), weight, checkinSource); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("Recorded your weight: %.1f kg.", weight),
				map[string]any{"weight_kg": weight}, nil
		},
	})

	r.MustRegister(&Tool{
		Name:        ToolLogMeal,
		Description: "Record a meal with an optional type (breakfast/lunch/dinner/snack) and calories.",
		Schema: Schema{
			Required: []string{"description"},
			Properties: map[string]Property{
				"description": {Type: "string", Description: "What was eaten"},
				"meal_type":   {Type: "string", Description: "breakfast, lunch, dinner, or snack"},
				"calories":    {Type: "number", Description: "Estimated calories", Positive: true},
			},
		},
		Execute: func(ctx context.Context, userID string, args map[string]any) (string, map[string]any, error) {
			desc := args["description"].(string)
			mealType, _ := args["meal_type"].(string)
			calories, _ := args["calories"].(float64)
			if err := w.AppendMeal(userID, time.Now(), desc, mealType, calories, checkinSource); err != nil {
				return "", nil, err
			}
			payload := map[string]any{"description": desc}
			msg := fmt.Sprintf("Logged your meal: %s.", desc)
			if mealType != "" {
				payload["meal_type"] = mealType
				msg = fmt.Sprintf("Logged your %s: %s.", mealType, desc)
			}
			if calories > 0 {
				payload["calories"] = calories
			}
			return msg, payload, nil
		},
	})

	r.MustRegister(&Tool{
		Name:        ToolLogExercise,
		Description: "Record an exercise session with its duration in minutes.",
		Schema: Schema{
			Required: []string{"activity", "duration"},
			Properties: map[string]Property{
				"activity":        {Type: "string", Description: "Kind of exercise"},
				"duration":        {Type: "number", Description: "Duration in minutes", Positive: true},
				"calories_burned": {Type: "number", Description: "Estimated calories burned", Positive: true},
			},
		},
		Execute: func(ctx context.Context, userID string, args map[string]any) (string, map[string]any, error) {
			activity := args["activity"].(string)
			duration := args["duration"].(float64)
			burned, _ := args["calories_burned"].(float64)
			if err := w.AppendExercise(userID, time.Now(), activity, duration, burned, checkinSource); err != nil {
				return "", nil, err
			}
			payload := map[string]any{"activity": activity, "duration_min": duration}
			if burned > 0 {
				payload["calories_burned"] = burned
			}
			return fmt.Sprintf("Logged %.0f minutes of %s.", duration, activity), payload, nil
		},
	})

	r.MustRegister(&Tool{
		Name:        ToolLogWater,
		Description: "Record water intake in milliliters.",
		Schema: Schema{
			Required: []string{"amount"},
			Properties: map[string]Property{
				"amount": {Type: "number", Description: "Amount in ml", Positive: true},
			},
		},
		Execute: func(ctx context.Context, userID string, args map[string]any) (string, map[string]any, error) {
			amount := args["amount"].(float64)
			if err := w.AppendWater(userID, time.Now(), amount, checkinSource); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("Logged %.0f ml of water.", amount),
				map[string]any{"amount_ml": amount}, nil
		},
	})

	r.MustRegister(&Tool{
		Name:        ToolLogSleep,
		Description: "Record last night's sleep duration in hours.",
		Schema: Schema{
			Required: []string{"hours"},
			Properties: map[string]Property{
				"hours":   {Type: "number", Description: "Hours slept", Positive: true},
				"quality": {Type: "string", Description: "Optional sleep quality note"},
			},
		},
		Execute: func(ctx context.Context, userID string, args map[string]any) (string, map[string]any, error) {
			hours := args["hours"].(float64)
			quality, _ := args["quality"].(string)
			if err := w.AppendSleep(userID, time.Now(), hours, quality, checkinSource); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("Logged %.1f hours of sleep.", hours),
				map[string]any{"hours": hours}, nil
		},
	})
}

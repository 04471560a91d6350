package store

import "time"

// CheckinType identifies one of the five tracked activity categories.
type CheckinType string

const (
	CheckinWeight   CheckinType = "weight"
	CheckinMeal     CheckinType = "meal"
	CheckinExercise CheckinType = "exercise"
	CheckinWater    CheckinType = "water"
	CheckinSleep    CheckinType = "sleep"
)

// CheckinTypes lists all categories in digest order.
var CheckinTypes = []CheckinType{
	CheckinWeight, CheckinMeal, CheckinExercise, CheckinWater, CheckinSleep,
}

// Profile is a user's persistent attributes.
type Profile struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	HeightCm       float64   `json:"height_cm"`
	TargetWeightKg float64   `json:"target_weight_kg"`
	ActivityLevel  string    `json:"activity_level"`
	Goal           string    `json:"goal"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Checkin is one recorded health-activity entry in the unified shape the
// context cache hands to the plan stage. Fields holds the type-specific
// payload (weight_kg, description, duration_min, ...).
type Checkin struct {
	Type      CheckinType            `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields"`
	Source    string                 `json:"source"`
}

// HistoryEntry is one persisted conversation turn half.
type HistoryEntry struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"` // user or assistant
	Content   string    `json:"content"`
}

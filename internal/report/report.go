// Package report computes summary statistics over a user's checkins:
// weekly aggregates per category plus the standard body metrics derived
// from the profile.
package report

import (
	"math"
	"time"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
)

// WeeklyReport is the aggregate view over one trailing week.
type WeeklyReport struct {
	UserID    string    `json:"user_id"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Weight    *Weight   `json:"weight,omitempty"`
	Meals     Meals     `json:"meals"`
	Exercise  Exercise  `json:"exercise"`
	WaterMl   float64   `json:"water_ml"`
	AvgSleepH float64   `json:"avg_sleep_hours"`
	BMI       float64   `json:"bmi,omitempty"`
	BMR       float64   `json:"bmr,omitempty"`
}

// Weight summarizes weight entries over the window.
type Weight struct {
	LatestKg float64 `json:"latest_kg"`
	FirstKg  float64 `json:"first_kg"`
	DeltaKg  float64 `json:"delta_kg"`
	Entries  int     `json:"entries"`
}

// Meals summarizes meal entries over the window.
type Meals struct {
	Count         int     `json:"count"`
	TotalCalories float64 `json:"total_calories"`
}

// Exercise summarizes exercise entries over the window.
type Exercise struct {
	Sessions       int     `json:"sessions"`
	TotalMinutes   float64 `json:"total_minutes"`
	CaloriesBurned float64 `json:"calories_burned"`
}

// CheckinSource is the read surface reports are built from.
// *store.Store satisfies it.
type CheckinSource interface {
	CheckinsSince(userID string, since time.Time) ([]store.Checkin, error)
	GetProfile(userID string) (*store.Profile, error)
}

// Weekly builds the trailing-7-day report for a user. A missing profile is
// not an error; body metrics are simply omitted.
func Weekly(src CheckinSource, userID string, now time.Time) (*WeeklyReport, error) {
	from := now.AddDate(0, 0, -7)
	checkins, err := src.CheckinsSince(userID, from)
	if err != nil {
		return nil, err
	}

	rep := &WeeklyReport{UserID: userID, From: from, To: now}

	var sleepTotal float64
	var sleepEntries int
	var firstWeightTs, latestWeightTs time.Time

	for _, c := range checkins {
		switch c.Type {
		case store.CheckinWeight:
			kg := num(c.Fields["weight_kg"])
			if rep.Weight == nil {
				rep.Weight = &Weight{FirstKg: kg, LatestKg: kg}
				firstWeightTs, latestWeightTs = c.Timestamp, c.Timestamp
			}
			rep.Weight.Entries++
			if c.Timestamp.Before(firstWeightTs) {
				rep.Weight.FirstKg = kg
				firstWeightTs = c.Timestamp
			}
			if !c.Timestamp.Before(latestWeightTs) {
				rep.Weight.LatestKg = kg
				latestWeightTs = c.Timestamp
			}
		case store.CheckinMeal:
			rep.Meals.Count++
			rep.Meals.TotalCalories += num(c.Fields["calories"])
		case store.CheckinExercise:
			rep.Exercise.Sessions++
			rep.Exercise.TotalMinutes += num(c.Fields["duration_min"])
			rep.Exercise.CaloriesBurned += num(c.Fields["calories_burned"])
		case store.CheckinWater:
			rep.WaterMl += num(c.Fields["amount_ml"])
		case store.CheckinSleep:
			sleepTotal += num(c.Fields["hours"])
			sleepEntries++
		}
	}

	if rep.Weight != nil {
		rep.Weight.DeltaKg = round1(rep.Weight.LatestKg - rep.Weight.FirstKg)
	}
	if sleepEntries > 0 {
		rep.AvgSleepH = round1(sleepTotal / float64(sleepEntries))
	}

	if profile, err := src.GetProfile(userID); err == nil {
		weightKg := profile.TargetWeightKg
		if rep.Weight != nil {
			weightKg = rep.Weight.LatestKg
		}
		rep.BMI = BMI(weightKg, profile.HeightCm)
		rep.BMR = BMR(weightKg, profile.HeightCm, profile.Age, profile.Gender)
	}
	return rep, nil
}

// BMI computes body mass index from weight in kg and height in cm.
// Returns 0 when either input is unusable.
func BMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	h := heightCm / 100
	return round1(weightKg / (h * h))
}

// BMR computes basal metabolic rate via the Mifflin-St Jeor equation.
// Returns 0 when inputs are incomplete.
func BMR(weightKg, heightCm float64, age int, gender string) float64 {
	if weightKg <= 0 || heightCm <= 0 || age <= 0 {
		return 0
	}
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case "male", "m":
		bmr += 5
	case "female", "f":
		bmr -= 161
	default:
		// Unknown gender: midpoint of the two offsets.
		bmr -= 78
	}
	return math.Round(bmr)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}

package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
)

type fakeSource struct {
	checkins []store.Checkin
	profile  *store.Profile
}

func (f *fakeSource) CheckinsSince(userID string, since time.Time) ([]store.Checkin, error) {
	return f.checkins, nil
}

func (f *fakeSource) GetProfile(userID string) (*store.Profile, error) {
	if f.profile == nil {
		return nil, store.ErrProfileNotFound
	}
	return f.profile, nil
}

func checkin(t store.CheckinType, age time.Duration, fields map[string]interface{}) store.Checkin {
	return store.Checkin{Type: t, Timestamp: time.Now().Add(-age), Fields: fields}
}

func TestWeeklyAggregates(t *testing.T) {
	src := &fakeSource{
		checkins: []store.Checkin{
			checkin(store.CheckinWeight, time.Hour, map[string]interface{}{"weight_kg": 64.8}),
			checkin(store.CheckinWeight, 6*24*time.Hour, map[string]interface{}{"weight_kg": 66.0}),
			checkin(store.CheckinMeal, 2*time.Hour, map[string]interface{}{"description": "oatmeal", "calories": 320.0}),
			checkin(store.CheckinMeal, 26*time.Hour, map[string]interface{}{"description": "salad", "calories": 410.0}),
			checkin(store.CheckinExercise, 3*time.Hour, map[string]interface{}{"activity": "jogging", "duration_min": 30.0, "calories_burned": 250.0}),
			checkin(store.CheckinWater, 4*time.Hour, map[string]interface{}{"amount_ml": 500.0}),
			checkin(store.CheckinWater, 5*time.Hour, map[string]interface{}{"amount_ml": 750.0}),
			checkin(store.CheckinSleep, 10*time.Hour, map[string]interface{}{"hours": 7.0}),
			checkin(store.CheckinSleep, 34*time.Hour, map[string]interface{}{"hours": 8.0}),
		},
		profile: &store.Profile{
			UserID: "u1", Name: "Alex", Age: 30, Gender: "female", HeightCm: 170,
		},
	}

	rep, err := Weekly(src, "u1", time.Now())
	require.NoError(t, err)

	require.NotNil(t, rep.Weight)
	assert.Equal(t, 66.0, rep.Weight.FirstKg)
	assert.Equal(t, 64.8, rep.Weight.LatestKg)
	assert.Equal(t, -1.2, rep.Weight.DeltaKg)
	assert.Equal(t, 2, rep.Weight.Entries)

	assert.Equal(t, 2, rep.Meals.Count)
	assert.Equal(t, 730.0, rep.Meals.TotalCalories)

	assert.Equal(t, 1, rep.Exercise.Sessions)
	assert.Equal(t, 30.0, rep.Exercise.TotalMinutes)
	assert.Equal(t, 250.0, rep.Exercise.CaloriesBurned)

	assert.Equal(t, 1250.0, rep.WaterMl)
	assert.Equal(t, 7.5, rep.AvgSleepH)

	// Body metrics from the latest weight and the profile.
	assert.Equal(t, 22.4, rep.BMI)
	assert.InDelta(t, 1400, rep.BMR, 5)
}

func TestWeeklyWithoutProfileOmitsBodyMetrics(t *testing.T) {
	src := &fakeSource{
		checkins: []store.Checkin{
			checkin(store.CheckinWeight, time.Hour, map[string]interface{}{"weight_kg": 70.0}),
		},
	}

	rep, err := Weekly(src, "u1", time.Now())
	require.NoError(t, err)
	assert.Zero(t, rep.BMI)
	assert.Zero(t, rep.BMR)
	require.NotNil(t, rep.Weight)
}

func TestWeeklyEmptyWindow(t *testing.T) {
	rep, err := Weekly(&fakeSource{}, "u1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, rep.Weight)
	assert.Zero(t, rep.Meals.Count)
	assert.Zero(t, rep.WaterMl)
	assert.Zero(t, rep.AvgSleepH)
}

func TestBMI(t *testing.T) {
	assert.Equal(t, 22.5, BMI(65.0, 170))
	assert.Zero(t, BMI(0, 170))
	assert.Zero(t, BMI(65, 0))
}

func TestBMR(t *testing.T) {
	// Mifflin-St Jeor, male: 10*70 + 6.25*175 - 5*25 + 5 = 1673.75
	assert.Equal(t, 1674.0, BMR(70, 175, 25, "male"))
	// Female: 10*60 + 6.25*165 - 5*30 - 161 = 1320.25
	assert.Equal(t, 1320.0, BMR(60, 165, 30, "female"))
	assert.Zero(t, BMR(0, 165, 30, "female"))
}

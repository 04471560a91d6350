package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
)

// AppendWeight records one weight checkin. Repeated calls create repeated
// rows; deduplication is not a storage concern.
func (s *Store) AppendWeight(userID string, ts time.Time, weightKg float64, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO weight_logs (user_id, ts, weight_kg, source) VALUES (?, ?, ?, ?)`,
		userID, ts.UTC(), weightKg, source,
	)
	return s.logAppend("weight", userID, err)
}

// AppendMeal records one meal checkin.
func (s *Store) AppendMeal(userID string, ts time.Time, description, mealType string, calories float64, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO meal_logs (user_id, ts, description, meal_type, calories, source) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, ts.UTC(), description, mealType, nullIfZero(calories), source,
	)
	return s.logAppend("meal", userID, err)
}

// AppendExercise records one exercise checkin.
func (s *Store) AppendExercise(userID string, ts time.Time, activity string, durationMin, caloriesBurned float64, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO exercise_logs (user_id, ts, activity, duration_min, calories_burned, source) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, ts.UTC(), activity, durationMin, nullIfZero(caloriesBurned), source,
	)
	return s.logAppend("exercise", userID, err)
}

// AppendWater records one water checkin.
func (s *Store) AppendWater(userID string, ts time.Time, amountMl float64, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO water_logs (user_id, ts, amount_ml, source) VALUES (?, ?, ?, ?)`,
		userID, ts.UTC(), amountMl, source,
	)
	return s.logAppend("water", userID, err)
}

// AppendSleep records one sleep checkin.
func (s *Store) AppendSleep(userID string, ts time.Time, hours float64, quality, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO sleep_logs (user_id, ts, hours, quality, source) VALUES (?, ?, ?, ?, ?)`,
		userID, ts.UTC(), hours, quality, source,
	)
	return s.logAppend("sleep", userID, err)
}

func (s *Store) logAppend(kind, userID string, err error) error {
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to append %s checkin for %s: %v", kind, userID, err)
		return err
	}
	logging.StoreDebug("Appended %s checkin for %s", kind, userID)
	return nil
}

func nullIfZero(v float64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// CheckinsSince returns all checkins for a user across every category with
// ts >= since, normalized to the unified Checkin shape and sorted by
// timestamp descending.
func (s *Store) CheckinsSince(userID string, since time.Time) ([]Checkin, error) {
	timer := logging.StartTimer(logging.CategoryStore, "CheckinsSince")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Checkin
	for _, ct := range CheckinTypes {
		entries, err := s.checkinsOfType(ct, userID, since)
		if err != nil {
			return nil, fmt.Errorf("query %s checkins: %w", ct, err)
		}
		out = append(out, entries...)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	logging.StoreDebug("Loaded %d checkins for %s since %s", len(out), userID, since.Format(time.RFC3339))
	return out, nil
}

func (s *Store) checkinsOfType(ct CheckinType, userID string, since time.Time) ([]Checkin, error) {
	var rows *sql.Rows
	var err error

	switch ct {
	case CheckinWeight:
		rows, err = s.db.Query(
			`SELECT ts, weight_kg, source FROM weight_logs WHERE user_id = ? AND ts >= ? ORDER BY ts DESC`,
			userID, since.UTC(),
		)
	case CheckinMeal:
		rows, err = s.db.Query(
			`SELECT ts, description, meal_type, calories, source FROM meal_logs WHERE user_id = ? AND ts >= ? ORDER BY ts DESC`,
			userID, since.UTC(),
		)
	case CheckinExercise:
		rows, err = s.db.Query(
			`SELECT ts, activity, duration_min, calories_burned, source FROM exercise_logs WHERE user_id = ? AND ts >= ? ORDER BY ts DESC`,
			userID, since.UTC(),
		)
	case CheckinWater:
		rows, err = s.db.Query(
			`SELECT ts, amount_ml, source FROM water_logs WHERE user_id = ? AND ts >= ? ORDER BY ts DESC`,
			userID, since.UTC(),
		)
	case CheckinSleep:
		rows, err = s.db.Query(
			`SELECT ts, hours, quality, source FROM sleep_logs WHERE user_id = ? AND ts >= ? ORDER BY ts DESC`,
			userID, since.UTC(),
		)
	default:
		return nil, fmt.Errorf("unknown checkin type %q", ct)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Checkin
	for rows.Next() {
		c := Checkin{Type: ct, Fields: make(map[string]interface{})}
		var source sql.NullString

		switch ct {
		case CheckinWeight:
			var weight float64
			if err := rows.Scan(&c.Timestamp, &weight, &source); err != nil {
				continue
			}
			c.Fields["weight_kg"] = weight
		case CheckinMeal:
			var desc string
			var mealType sql.NullString
			var calories sql.NullFloat64
			if err := rows.Scan(&c.Timestamp, &desc, &mealType, &calories, &source); err != nil {
				continue
			}
			c.Fields["description"] = desc
			if mealType.Valid && mealType.String != "" {
				c.Fields["meal_type"] = mealType.String
			}
			if calories.Valid {
				c.Fields["calories"] = calories.Float64
			}
		case CheckinExercise:
			var activity string
			var duration float64
			var burned sql.NullFloat64
			if err := rows.Scan(&c.Timestamp, &activity, &duration, &burned, &source); err != nil {
				continue
			}
			c.Fields["activity"] = activity
			c.Fields["duration_min"] = duration
			if burned.Valid {
				c.Fields["calories_burned"] = burned.Float64
			}
		case CheckinWater:
			var amount float64
			if err := rows.Scan(&c.Timestamp, &amount, &source); err != nil {
				continue
			}
			c.Fields["amount_ml"] = amount
		case CheckinSleep:
			var hours float64
			var quality sql.NullString
			if err := rows.Scan(&c.Timestamp, &hours, &quality, &source); err != nil {
				continue
			}
			c.Fields["hours"] = hours
			if quality.Valid && quality.String != "" {
				c.Fields["quality"] = quality.String
			}
		}

		c.Source = source.String
		out = append(out, c)
	}
	return out, rows.Err()
}

package store

import (
	"database/sql"
	"time"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
)

// GetProfile reads a user's profile. Returns ErrProfileNotFound if no row
// exists; profile reads are always fresh, there is no caching layer.
func (s *Store) GetProfile(userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT user_id, name, age, gender, height_cm, target_weight_kg, activity_level, goal, updated_at
		 FROM profiles WHERE user_id = ?`,
		userID,
	)

	var p Profile
	var name, gender, activity, goal sql.NullString
	var age sql.NullInt64
	var height, target sql.NullFloat64
	err := row.Scan(&p.UserID, &name, &age, &gender, &height, &target, &activity, &goal, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to read profile for %s: %v", userID, err)
		return nil, err
	}

	p.Name = name.String
	p.Age = int(age.Int64)
	p.Gender = gender.String
	p.HeightCm = height.Float64
	p.TargetWeightKg = target.Float64
	p.ActivityLevel = activity.String
	p.Goal = goal.String
	return &p, nil
}

// UpsertProfile creates or replaces a user's profile.
func (s *Store) UpsertProfile(p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Upserting profile: user=%s", p.UserID)

	_, err := s.db.Exec(
		`INSERT INTO profiles (user_id, name, age, gender, height_cm, target_weight_kg, activity_level, goal, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			name=excluded.name, age=excluded.age, gender=excluded.gender,
			height_cm=excluded.height_cm, target_weight_kg=excluded.target_weight_kg,
			activity_level=excluded.activity_level, goal=excluded.goal,
			updated_at=excluded.updated_at`,
		p.UserID, p.Name, p.Age, p.Gender, p.HeightCm, p.TargetWeightKg, p.ActivityLevel, p.Goal, time.Now().UTC(),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to upsert profile for %s: %v", p.UserID, err)
	}
	return err
}

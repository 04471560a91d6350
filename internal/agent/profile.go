package agent

import (
	"errors"
	"fmt"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
)

// ProfileReader is the storage surface the profile loader reads from.
// *store.Store satisfies it.
type ProfileReader interface {
	GetProfile(userID string) (*store.Profile, error)
}

// ProfileLoader reads a user's persistent attributes. Always a fresh read:
// profile edits must be reflected on the very next turn, unlike checkins
// which tolerate cache staleness.
type ProfileLoader struct {
	reader ProfileReader
}

// NewProfileLoader creates a loader over the given reader.
func NewProfileLoader(reader ProfileReader) *ProfileLoader {
	return &ProfileLoader{reader: reader}
}

// Load returns the profile, ErrUserNotFound if none exists, or
// ErrStorageUnavailable on a storage failure.
func (l *ProfileLoader) Load(userID string) (*store.Profile, error) {
	profile, err := l.reader.GetProfile(userID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return profile, nil
}

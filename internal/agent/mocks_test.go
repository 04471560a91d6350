package agent

import (
	"context"
	"sync"
	"time"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
)

// fakeProfiles implements ProfileReader.
type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*store.Profile
	err      error
	calls    int
}

func newFakeProfiles(profiles ...*store.Profile) *fakeProfiles {
	m := make(map[string]*store.Profile)
	for _, p := range profiles {
		m[p.UserID] = p
	}
	return &fakeProfiles{profiles: m}
}

func (f *fakeProfiles) GetProfile(userID string) (*store.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	return p, nil
}

// fakeCheckins implements CheckinReader with call counting for cache
// hit/miss assertions. A non-zero delay makes each read slow enough for
// concurrent refreshes to overlap.
type fakeCheckins struct {
	mu       sync.Mutex
	checkins []store.Checkin
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeCheckins) CheckinsSince(userID string, since time.Time) ([]store.Checkin, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]store.Checkin, len(f.checkins))
	copy(out, f.checkins)
	return out, nil
}

func (f *fakeCheckins) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeHistory implements HistoryWriter.
type fakeHistory struct {
	mu      sync.Mutex
	entries []store.HistoryEntry
	err     error
}

func (f *fakeHistory) AppendHistory(userID string, ts time.Time, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, store.HistoryEntry{UserID: userID, Timestamp: ts, Role: role, Content: content})
	return nil
}

func (f *fakeHistory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// fakeWriter implements tools.CheckinWriter, recording every write with
// optional per-category error injection.
type write struct {
	kind   string
	fields map[string]any
}

type fakeWriter struct {
	mu      sync.Mutex
	writes  []write
	failOn  string
	failErr error
}

func (f *fakeWriter) record(kind string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == kind {
		return f.failErr
	}
	f.writes = append(f.writes, write{kind: kind, fields: fields})
	return nil
}

func (f *fakeWriter) AppendWeight(userID string, ts time.Time, weightKg float64, source string) error {
	return f.record("weight", map[string]any{"weight_kg": weightKg, "source": source})
}

func (f *fakeWriter) AppendMeal(userID string, ts time.Time, description, mealType string, calories float64, source string) error {
	return f.record("meal", map[string]any{"description": description, "meal_type": mealType, "calories": calories})
}

func (f *fakeWriter) AppendExercise(userID string, ts time.Time, activity string, durationMin, caloriesBurned float64, source string) error {
	return f.record("exercise", map[string]any{"activity": activity, "duration_min": durationMin})
}

func (f *fakeWriter) AppendWater(userID string, ts time.Time, amountMl float64, source string) error {
	return f.record("water", map[string]any{"amount_ml": amountMl})
}

func (f *fakeWriter) AppendSleep(userID string, ts time.Time, hours float64, quality, source string) error {
	return f.record("sleep", map[string]any{"hours": hours, "quality": quality})
}

func (f *fakeWriter) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	for i, w := range f.writes {
		out[i] = w.kind
	}
	return out
}

// scriptClient implements llm.Client, returning queued responses in order.
// A response with err set fails that call. After the script runs out every
// call returns the last response.
type scriptResponse struct {
	reply string
	err   error
}

type scriptClient struct {
	mu        sync.Mutex
	responses []scriptResponse
	calls     int
}

func (s *scriptClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, "", prompt)
}

func (s *scriptClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.responses) == 0 {
		return "", nil
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	return r.reply, r.err
}

func (s *scriptClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/tally/internal/domain/model"
)

// BackendMemory names the in-memory store.
const BackendMemory = "memory"

type scoreKey struct {
	contestant string
	judge      string
}

// MemoryStore is an in-memory Store. It is safe for concurrent use and
// enforces the (contestant, judge) uniqueness of score entries.
type MemoryStore struct {
	opts options

	mu          sync.RWMutex
	contestants map[string]model.Contestant
	scores      []model.ScoreEntry
	scoreIndex  map[scoreKey]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:        defaultOptions(opts),
		contestants: make(map[string]model.Contestant),
		scoreIndex:  make(map[scoreKey]int),
	}
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return BackendMemory }

// PutContestant implements Store.
func (s *MemoryStore) PutContestant(_ context.Context, c model.Contestant) error {
	defer observe(BackendMemory, "put_contestant", time.Now())
	if err := validateContestant(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.contestants {
		if id != c.ID && other.Code == c.Code {
			return fmt.Errorf("%w: code %q already used by %q", ErrInvalidContestant, c.Code, id)
		}
	}
	s.contestants[c.ID] = c
	return nil
}

// GetContestant implements Store.
func (s *MemoryStore) GetContestant(_ context.Context, id string) (model.Contestant, error) {
	defer observe(BackendMemory, "get_contestant", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contestants[id]
	if !ok {
		return model.Contestant{}, fmt.Errorf("%w: contestant %q", ErrNotFound, id)
	}
	return c, nil
}

// ListContestants implements Store.
func (s *MemoryStore) ListContestants(_ context.Context, f Filter) ([]model.Contestant, error) {
	defer observe(BackendMemory, "list_contestants", time.Now())
	s.mu.RLock()
	out := make([]model.Contestant, 0, len(s.contestants))
	for _, c := range s.contestants {
		if f.MatchContestant(c) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpsertScore implements Store.
func (s *MemoryStore) UpsertScore(_ context.Context, e model.ScoreEntry) (model.ScoreEntry, bool, error) {
	defer observe(BackendMemory, "upsert_score", time.Now())
	if err := validateScore(e); err != nil {
		return model.ScoreEntry{}, false, err
	}
	e = e.Clone()
	now := s.opts.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contestants[e.ContestantID]; !ok {
		return model.ScoreEntry{}, false, fmt.Errorf("%w: contestant %q", ErrNotFound, e.ContestantID)
	}

	key := scoreKey{contestant: e.ContestantID, judge: e.JudgeID}
	e.UpdatedAt = now
	if i, ok := s.scoreIndex[key]; ok {
		prev := s.scores[i]
		e.ID = prev.ID
		e.CreatedAt = prev.CreatedAt
		s.scores[i] = e
		return e.Clone(), true, nil
	}
	if e.ID == "" {
		e.ID = s.opts.newID()
	}
	e.CreatedAt = now
	s.scoreIndex[key] = len(s.scores)
	s.scores = append(s.scores, e)
	return e.Clone(), false, nil
}

// ListScores implements Store.
func (s *MemoryStore) ListScores(_ context.Context, f Filter) ([]model.ScoreEntry, error) {
	defer observe(BackendMemory, "list_scores", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ScoreEntry, 0, len(s.scores))
	for _, e := range s.scores {
		if f.MatchScore(e) {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{Contestants: len(s.contestants), Scores: len(s.scores)}, nil
}

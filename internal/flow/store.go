package flow

import (
	"context"
	"errors"
	"time"

	"limoride/internal/utils"
	"limoride/pkg/cache"
)

var ErrSessionNotFound = errors.New("no flow state for session")

// Store persists flow state between requests so the flow survives page loads
// and the login redirect. Entries expire on their own after the TTL.
type Store struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

func NewStore(cache *cache.RedisCache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = utils.FlowStateTTL
	}
	return &Store{cache: cache, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, state *State) error {
	return s.cache.Set(ctx, s.key(state.SessionID), state, s.ttl)
}

func (s *Store) Load(ctx context.Context, sessionID string) (*State, error) {
	var state State
	err := s.cache.Get(ctx, s.key(sessionID), &state)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &state, nil
}

// LoadOrNew returns the stored state for a session, or a fresh one when none
// exists yet.
func (s *Store) LoadOrNew(ctx context.Context, sessionID string) (*State, error) {
	state, err := s.Load(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return NewState(sessionID), nil
	}
	return state, err
}

// Delete drops the state once a booking has been created from it.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, s.key(sessionID))
}

func (s *Store) key(sessionID string) string {
	return utils.CacheKeyFlowState + sessionID
}

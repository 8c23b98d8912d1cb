package common

import (
	"encoding/json"
	"fmt"

	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/models/dtos"
)

// RunStatusStore keeps the most recent orchestrator result in the cache.
// The result is stored as a JSON string so both cache backends round-trip it.
type RunStatusStore struct {
	cache CacheInterface
}

func NewRunStatusStore(cache CacheInterface) *RunStatusStore {
	return &RunStatusStore{cache: cache}
}

func (s *RunStatusStore) Save(result dtos.RunResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode run result: %w", err)
	}
	s.cache.Set(constants.RunStatusCacheKey, string(data), 0)
	return nil
}

// Last returns the stored result, nil if no run has been recorded
func (s *RunStatusStore) Last() (*dtos.RunResult, error) {
	val, ok := s.cache.Get(constants.RunStatusCacheKey)
	if !ok {
		return nil, nil
	}

	raw, ok := val.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected run status type %T", val)
	}

	var result dtos.RunResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode run result: %w", err)
	}
	return &result, nil
}

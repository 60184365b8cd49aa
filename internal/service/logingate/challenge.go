package logingate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"twiller-backend/internal/domain"
	"twiller-backend/pkg/cache"
)

const challengeNamespace = "login_otp"

// RedisChallengeStore keeps challenges in Redis under login_otp:<userID>
// with the TTL matching the challenge expiry.
type RedisChallengeStore struct {
	cache *cache.Cache
}

func NewRedisChallengeStore(c *cache.Cache) *RedisChallengeStore {
	return &RedisChallengeStore{cache: c}
}

func (s *RedisChallengeStore) Put(ctx context.Context, userID string, ch *domain.LoginChallenge, ttl time.Duration) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, challengeNamespace, userID, payload, ttl)
}

func (s *RedisChallengeStore) Get(ctx context.Context, userID string) (*domain.LoginChallenge, error) {
	val, err := s.cache.Get(ctx, challengeNamespace, userID)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ch domain.LoginChallenge
	if err := json.Unmarshal([]byte(val), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// ConsumeIf re-marshals the challenge and deletes the key only when the
// stored payload still matches, making consumption atomic.
func (s *RedisChallengeStore) ConsumeIf(ctx context.Context, userID string, ch *domain.LoginChallenge) (bool, error) {
	payload, err := json.Marshal(ch)
	if err != nil {
		return false, err
	}
	return s.cache.CompareAndDelete(ctx, challengeNamespace, userID, string(payload))
}

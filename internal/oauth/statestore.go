package oauth

import (
	"context"
	"strings"
	"time"
)

// stateTTL bounds how long an unconsumed state token remains valid
// (spec §4.4: "short TTL (≤10 min)").
const stateTTL = 10 * time.Minute

// redisClient is the subset of shared/redis.Client this package needs,
// accepted locally per this module's established interface-at-the-edge
// pattern.
type redisClient interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
}

// StateStore persists pending authorization state in Redis, consumed
// exactly once via GETDEL (grounded on the teacher's
// ValidateAndConsumeState, which used GET+DEL — this module collapses
// that to Redis's atomic GETDEL so there's no window between the read
// and the delete).
type StateStore struct {
	client redisClient
}

func NewStateStore(client redisClient) *StateStore {
	return &StateStore{client: client}
}

// stateKeyPrefix namespaces state tokens in the shared Redis keyspace.
const stateKeyPrefix = "oauth:state:"

// Put stores provider+redirectURI bound to the caller-generated state
// token for stateTTL. It returns only an error; the caller embeds the
// token in the authorization URL.
func (s *StateStore) Put(ctx context.Context, state, provider, redirectURI string) error {
	return s.client.SetWithTTL(ctx, stateKeyPrefix+state, provider+"|"+redirectURI, stateTTL)
}

// Consume retrieves and deletes the state atomically. ok is false if the
// state was never issued, already consumed, or expired.
func (s *StateStore) Consume(ctx context.Context, state string) (provider, redirectURI string, ok bool, err error) {
	val, err := s.client.GetDel(ctx, stateKeyPrefix+state)
	if err != nil {
		return "", "", false, nil
	}
	provider, redirectURI, found := strings.Cut(val, "|")
	if !found {
		return "", "", false, nil
	}
	return provider, redirectURI, true, nil
}

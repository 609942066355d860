package state

import (
	"context"
	"time"

	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/redis"
)

type redisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	StateKey(sessionID, name string) string
}

// RedisStore keeps session state in Redis under shop:state:<session>:<key>.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
	logg   *logger.Logger
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redisClient, ttl time.Duration, logg *logger.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redis client is required")
	}
	return &RedisStore{client: client, ttl: ttl, logg: logg, now: time.Now}, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID, key string, value any) error {
	raw, err := encode(value, r.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode state")
	}
	if err := r.client.Set(ctx, r.client.StateKey(sessionID, key), string(raw), r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session state")
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, sessionID, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, r.client.StateKey(sessionID, key))
	if err != nil {
		if redis.IsNil(err) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session state")
	}
	found, err := decode([]byte(raw), dest)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode state")
	}
	if !found && r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{"state_key": key})
		r.logg.Warn(ctx, "ignoring session state written by another schema version")
	}
	return found, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, r.client.StateKey(sessionID, key))
	}
	if err := r.client.Del(ctx, full...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session state")
	}
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/storage"
)

// ErrTxRetriesExhausted is returned when an optimistic transaction keeps
// losing to concurrent writers
var ErrTxRetriesExhausted = errors.New("redis: transaction retries exhausted")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// watch runs fn as an optimistic transaction over keys, retrying when a
// watched key changes underneath it
func (s *Storage) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for range s.cfg.MaxTxRetries {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTxRetriesExhausted
}

// getJSON loads and decodes key, mapping a missing key to notFound
func getJSON[T any](ctx context.Context, c redis.Cmdable, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return &v, nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Claim the username first; SETNX makes concurrent registrations race safely
	claimed, err := s.client.SetNX(ctx, usernameIndexKey(player.Username), player.ID.String(), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrUsernameTaken
	}

	if err := s.client.Set(ctx, playerKey(player.ID), data, 0).Err(); err != nil {
		_ = s.client.Del(ctx, usernameIndexKey(player.Username)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	// Look up player ID from username index
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	playerID, err := uuid.Parse(playerIDStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt username index for %q: %w", username, err)
	}
	return s.GetPlayer(ctx, playerID)
}

func (s *Storage) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.Del(ctx, usernameIndexKey(player.Username))
	_, err = pipe.Exec(ctx)
	return err
}

// Session operations

func (s *Storage) ReplaceActiveSessions(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	setKey := activeSessionsKey(session.PlayerID)

	return s.watch(ctx, func(tx *redis.Tx) error {
		tokens, err := tx.SMembers(ctx, setKey).Result()
		if err != nil {
			return err
		}

		stale := make(map[string][]byte, len(tokens))
		for _, token := range tokens {
			old, err := getJSON[model.Session](ctx, tx, sessionKey(token), model.ErrSessionNotFound)
			if errors.Is(err, model.ErrSessionNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			old.IsActive = false
			b, err := json.Marshal(old)
			if err != nil {
				return err
			}
			stale[token] = b
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for token, b := range stale {
				pipe.Set(ctx, sessionKey(token), b, s.cfg.InactiveSessionTTL)
				pipe.SAdd(ctx, inactiveSessionsKey(), token)
			}
			pipe.Del(ctx, setKey)
			pipe.Set(ctx, sessionKey(session.Token), data, 0)
			pipe.SAdd(ctx, setKey, session.Token)
			return nil
		})
		return err
	}, setKey)
}

func (s *Storage) GetActiveSession(ctx context.Context, token string) (*model.Session, error) {
	session, err := getJSON[model.Session](ctx, s.client, sessionKey(token), model.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeactivateSession(ctx context.Context, token string) error {
	key := sessionKey(token)

	return s.watch(ctx, func(tx *redis.Tx) error {
		session, err := getJSON[model.Session](ctx, tx, key, model.ErrSessionNotFound)
		if err != nil {
			return err
		}
		if !session.IsActive {
			return model.ErrSessionNotFound
		}

		session.IsActive = false
		data, err := json.Marshal(session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.InactiveSessionTTL)
			pipe.SRem(ctx, activeSessionsKey(session.PlayerID), token)
			pipe.SAdd(ctx, inactiveSessionsKey(), token)
			return nil
		})
		return err
	}, key)
}

func (s *Storage) DeleteInactiveSessions(ctx context.Context) (int64, error) {
	tokens, err := s.client.SMembers(ctx, inactiveSessionsKey()).Result()
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	// Inactive sessions never come back, so the index can be drained without a watch
	pipe := s.client.Pipeline()
	dels := make([]*redis.IntCmd, len(tokens))
	for i, token := range tokens {
		dels[i] = pipe.Del(ctx, sessionKey(token))
		pipe.SRem(ctx, inactiveSessionsKey(), token)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	var deleted int64
	for _, cmd := range dels {
		deleted += cmd.Val()
	}
	return deleted, nil
}

// Run operations

func (s *Storage) CreateRun(ctx context.Context, run *model.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, runKey(run.ID), data, 0)
	pipe.ZAdd(ctx, playerRunsKey(run.PlayerID), redis.Z{Score: float64(run.Score), Member: run.ID.String()})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRun(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	return getJSON[model.Run](ctx, s.client, runKey(id), model.ErrRunNotFound)
}

func (s *Storage) UpdateRun(ctx context.Context, id uuid.UUID, patch model.RunPatch) (*model.Run, error) {
	key := runKey(id)
	var updated *model.Run

	err := s.watch(ctx, func(tx *redis.Tx) error {
		run, err := getJSON[model.Run](ctx, tx, key, model.ErrRunNotFound)
		if err != nil {
			return err
		}
		patch.Apply(run)
		data, err := json.Marshal(run)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, playerRunsKey(run.PlayerID), redis.Z{Score: float64(run.Score), Member: run.ID.String()})
			return nil
		})
		if err == nil {
			updated = run
		}
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteRun(ctx context.Context, id uuid.UUID) error {
	key := runKey(id)

	return s.watch(ctx, func(tx *redis.Tx) error {
		run, err := getJSON[model.Run](ctx, tx, key, model.ErrRunNotFound)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, playerRunsKey(run.PlayerID), run.ID.String())
			return nil
		})
		return err
	}, key)
}

func (s *Storage) ListRunsByPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.Run, error) {
	ids, err := s.client.ZRevRange(ctx, playerRunsKey(playerID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	runs := make([]*model.Run, 0, len(ids))
	if len(ids) == 0 {
		return runs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		runID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt run index for player %s: %w", playerID, err)
		}
		keys[i] = runKey(runID)
	}

	// Fetch all runs in one round trip using MGET
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted between ZREVRANGE and MGET
		}
		var run model.Run
		if err := json.Unmarshal([]byte(str), &run); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", keys[i], err)
		}
		runs = append(runs, &run)
	}

	// The sorted set orders equal scores by member; restore creation order
	model.SortRunsByScore(runs)
	return runs, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

const (
	defaultRedisPrefix = "itinerary:session:"
	maxUpdateAttempts  = 10
)

// RedisConfig параметры подключения к Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix префикс ключей (по умолчанию "itinerary:session:")
	Prefix string
	// TTL время жизни неактивной сессии (0 - без ограничения)
	TTL time.Duration
}

// RedisStore хранит сессии в Redis, обновление идет через WATCH/MULTI
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// NewRedisStore подключается к Redis и проверяет соединение
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStoreFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStoreFromClient создает хранилище поверх готового клиента (удобно для miniredis)
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisStore) checkOpen() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*model.UserSession, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	return load(ctx, r.client, r.key(userID), userID)
}

func (r *RedisStore) Update(ctx context.Context, userID string, fn UpdateFunc) error {
	if err := r.checkOpen(); err != nil {
		return err
	}

	key := r.key(userID)
	txf := func(tx *redis.Tx) error {
		s, err := load(ctx, tx, key, userID)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		s.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			// ключ изменился параллельно, повторяем
			continue
		}
		return err
	}
	return fmt.Errorf("update session %s: too many concurrent modifications", userID)
}

func (r *RedisStore) Reset(ctx context.Context, userID string) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c stringGetter, key, userID string) (*model.UserSession, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewUserSession(userID), nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s model.UserSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if !s.Step.Valid() {
		return nil, fmt.Errorf("session %s has invalid step %d", userID, s.Step)
	}
	if s.Items == nil {
		s.Items = []model.ItineraryEntry{}
	}
	return &s, nil
}

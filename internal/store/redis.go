package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fitlogapp/fitlog/internal/records"
	"github.com/redis/go-redis/v9"
)

// RedisConfig represents the Redis store connection settings
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379)
	Password string
	DB       int
	Prefix   string // Key prefix (default: "fitlog")
}

// RedisStore implements Store on Redis.
// Each kind and user owns a sorted set of record ids scored by unix millis
// and a hash of id -> JSON payload.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func newRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.Prefix == "" {
		cfg.Prefix = "fitlog"
	}

	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) indexKey(kind records.Kind, userID string) string {
	return fmt.Sprintf("%s:records:%s:%s", s.prefix, kind, userID)
}

func (s *RedisStore) payloadKey(kind records.Kind, userID string) string {
	return fmt.Sprintf("%s:payloads:%s:%s", s.prefix, kind, userID)
}

// Put inserts or replaces a record
func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, s.indexKey(e.Kind, e.UserID), redis.Z{
		Score:  float64(e.Time.UnixMilli()),
		Member: e.ID,
	})
	pipe.HSet(ctx, s.payloadKey(e.Kind, e.UserID), e.ID, e.Data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store %s record %s: %w", e.Kind, e.ID, err)
	}
	return nil
}

// Get returns a single record
func (s *RedisStore) Get(ctx context.Context, kind records.Kind, userID, id string) (Entry, error) {
	score, err := s.client.ZScore(ctx, s.indexKey(kind, userID), id).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read %s record %s: %w", kind, id, err)
	}

	data, err := s.client.HGet(ctx, s.payloadKey(kind, userID), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read %s record %s: %w", kind, id, err)
	}

	return Entry{
		Kind:   kind,
		UserID: userID,
		ID:     id,
		Time:   time.UnixMilli(int64(score)),
		Data:   data,
	}, nil
}

// List returns matching records newest first
func (s *RedisStore) List(ctx context.Context, q Query) (Page, error) {
	q = q.normalize()
	index := s.indexKey(q.Kind, q.UserID)

	rng := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if !q.From.IsZero() {
		rng.Min = strconv.FormatInt(q.From.UnixMilli(), 10)
	}
	if !q.To.IsZero() {
		rng.Max = strconv.FormatInt(q.To.UnixMilli(), 10)
	}

	total, err := s.client.ZCount(ctx, index, rng.Min, rng.Max).Result()
	if err != nil {
		return Page{}, fmt.Errorf("failed to count %s records: %w", q.Kind, err)
	}

	if q.PageSize > 0 {
		rng.Offset = int64((q.Page - 1) * q.PageSize)
		rng.Count = int64(q.PageSize)
	}

	members, err := s.client.ZRevRangeByScoreWithScores(ctx, index, rng).Result()
	if err != nil {
		return Page{}, fmt.Errorf("failed to list %s records: %w", q.Kind, err)
	}

	page := Page{
		Entries:  make([]Entry, 0, len(members)),
		Total:    int(total),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if len(members) == 0 {
		return page, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = fmt.Sprint(m.Member)
	}

	payloads, err := s.client.HMGet(ctx, s.payloadKey(q.Kind, q.UserID), ids...).Result()
	if err != nil {
		return Page{}, fmt.Errorf("failed to load %s payloads: %w", q.Kind, err)
	}

	for i, raw := range payloads {
		data, ok := raw.(string)
		if !ok {
			// index entry without payload; skip it
			continue
		}
		page.Entries = append(page.Entries, Entry{
			Kind:   q.Kind,
			UserID: q.UserID,
			ID:     ids[i],
			Time:   time.UnixMilli(int64(members[i].Score)),
			Data:   []byte(data),
		})
	}
	return page, nil
}

// Delete removes ids and returns how many existed
func (s *RedisStore) Delete(ctx context.Context, kind records.Kind, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	removed := pipe.ZRem(ctx, s.indexKey(kind, userID), members...)
	pipe.HDel(ctx, s.payloadKey(kind, userID), ids...)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to delete %s records: %w", kind, err)
	}
	return int(removed.Val()), nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/visitlens/visitlens/internal/domain"
)

// Cache stores hot dialogue state, page analyses and classifications with
// a shared TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis.Cache.Close: %w", err)
	}
	return nil
}

// GetState loads the dialogue state for a session. A missing key maps to
// domain.ErrNotFound, which the session layer reports as an expired
// session.
func (c *Cache) GetState(ctx context.Context, sessionID uuid.UUID) (*domain.SessionState, error) {
	var state domain.SessionState
	err := c.getJSON(ctx, StateKey(sessionID), &state)
	if err != nil {
		return nil, fmt.Errorf("redis.Cache.GetState: %w", err)
	}
	return &state, nil
}

func (c *Cache) SetState(ctx context.Context, sessionID uuid.UUID, state *domain.SessionState) error {
	if err := c.setJSON(ctx, StateKey(sessionID), state); err != nil {
		return fmt.Errorf("redis.Cache.SetState: %w", err)
	}
	return nil
}

// GetPage loads the cached analysis for a URL.
func (c *Cache) GetPage(ctx context.Context, url string) (*domain.PageSnapshot, error) {
	var page domain.PageSnapshot
	err := c.getJSON(ctx, PageKey(url), &page)
	if err != nil {
		return nil, fmt.Errorf("redis.Cache.GetPage: %w", err)
	}
	return &page, nil
}

func (c *Cache) SetPage(ctx context.Context, url string, page *domain.PageSnapshot) error {
	if err := c.setJSON(ctx, PageKey(url), page); err != nil {
		return fmt.Errorf("redis.Cache.SetPage: %w", err)
	}
	return nil
}

// GetClassification loads a cached terminal classification for a session.
func (c *Cache) GetClassification(ctx context.Context, sessionID uuid.UUID) (*domain.Classification, error) {
	var cls domain.Classification
	err := c.getJSON(ctx, ClassificationKey(sessionID), &cls)
	if err != nil {
		return nil, fmt.Errorf("redis.Cache.GetClassification: %w", err)
	}
	return &cls, nil
}

func (c *Cache) SetClassification(ctx context.Context, sessionID uuid.UUID, cls *domain.Classification) error {
	if err := c.setJSON(ctx, ClassificationKey(sessionID), cls); err != nil {
		return fmt.Errorf("redis.Cache.SetClassification: %w", err)
	}
	return nil
}

func (c *Cache) getJSON(ctx context.Context, key string, out any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *Cache) setJSON(ctx context.Context, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// StateKey returns the cache key for a session's dialogue state.
func StateKey(sessionID uuid.UUID) string {
	return "session:" + sessionID.String()
}

// PageKey returns the cache key for a scraped page's analysis.
func PageKey(url string) string {
	return "page:" + url
}

// ClassificationKey returns the cache key for a session's classification.
func ClassificationKey(sessionID uuid.UUID) string {
	return "classification:" + sessionID.String()
}

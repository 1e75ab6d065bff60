package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// ErrNotFound is returned when a post exists in neither cache nor database.
var ErrNotFound = errors.New("post not found")

const (
	postKeyPrefix = "post:"
	postCacheTTL  = 15 * time.Minute
)

// Store defines the contract for caching and persisting synced content.
type Store interface {
	UpsertPost(ctx context.Context, post model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context, limit int) ([]model.Post, error)
	RecordSessionEvent(ctx context.Context, event, note string) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed store. An empty
// pgURL leaves Postgres off: reads fall back to cache only and audit
// writes become no-ops.
func NewHybrid(redisAddr string, redisDB int, redisPass, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		DB:       redisDB,
		Password: redisPass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

// UpsertPost writes the post through to cache and, when available, the
// database. A cache write failure is logged but never fails the upsert.
func (s *HybridStore) UpsertPost(ctx context.Context, post model.Post) error {
	if err := s.SetJSON(ctx, postKeyPrefix+post.ID, post, postCacheTTL); err != nil {
		s.logger.Warn("store.redis.post_cache_failed",
			zap.String("post_id", post.ID),
			zap.Error(err))
	}

	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO content.posts (id, title, body, author, created_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			author = EXCLUDED.author,
			created_at = EXCLUDED.created_at,
			synced_at = NOW();
	`, post.ID, post.Title, post.Body, post.Author, post.CreatedAt)
	if err != nil {
		s.logger.Error("store.pg.upsert_post_failed",
			zap.String("post_id", post.ID),
			zap.Error(err))
	}
	return err
}

// GetPost reads from cache first, falling back to the database and
// backfilling the cache on a hit.
func (s *HybridStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	key := postKeyPrefix + id
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == nil {
		var post model.Post
		if err := json.Unmarshal(data, &post); err != nil {
			return nil, err
		}
		return &post, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	if s.PG == nil {
		return nil, ErrNotFound
	}

	row := s.PG.QueryRow(ctx, `
		SELECT id, title, body, author, created_at
		FROM content.posts
		WHERE id = $1
		LIMIT 1;
	`, id)

	var post model.Post
	if err := row.Scan(&post.ID, &post.Title, &post.Body, &post.Author, &post.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetPost scan failed: %w", err)
	}

	if err := s.SetJSON(ctx, key, post, postCacheTTL); err != nil {
		s.logger.Warn("store.redis.backfill_failed",
			zap.String("post_id", id),
			zap.Error(err))
	}
	return &post, nil
}

func (s *HybridStore) ListPosts(ctx context.Context, limit int) ([]model.Post, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.PG.Query(ctx, `
		SELECT id, title, body, author, created_at
		FROM content.posts
		ORDER BY created_at DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Author, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// RecordSessionEvent inserts an immutable row into audit.session_events.
func (s *HybridStore) RecordSessionEvent(ctx context.Context, event, note string) error {
	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO audit.session_events (event, note, recorded_at)
		VALUES ($1, $2, NOW());
	`, event, note)
	if err != nil {
		s.logger.Error("store.pg.insert_session_event_failed", zap.Error(err))
	}
	return err
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"school_admin/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		log.Println("Redis connection closed")
	}
}

// TermLock serializes term rotation across processes with a SetNX lease.
type TermLock struct {
	rdb *redis.Client
}

func NewTermLock(rdb *redis.Client) *TermLock {
	return &TermLock{rdb: rdb}
}

func (l *TermLock) Acquire(ctx context.Context) (bool, error) {
	ttl := time.Duration(config.AppConfig.TermLockTTLSeconds) * time.Second
	ok, err := l.rdb.SetNX(ctx, config.AppConfig.TermLockKey, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("TermLock.Acquire: %w", err)
	}
	return ok, nil
}

func (l *TermLock) Release(ctx context.Context) error {
	if err := l.rdb.Del(ctx, config.AppConfig.TermLockKey).Err(); err != nil {
		return fmt.Errorf("TermLock.Release: %w", err)
	}
	return nil
}

// SessionEpochStore records the unix time of the last term rotation. Tokens
// issued before the stored epoch are treated as expired sessions.
type SessionEpochStore struct {
	rdb *redis.Client
}

func NewSessionEpochStore(rdb *redis.Client) *SessionEpochStore {
	return &SessionEpochStore{rdb: rdb}
}

func (s *SessionEpochStore) Bump(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.rdb.Set(ctx, config.AppConfig.SessionEpochKey, now, 0).Err(); err != nil {
		return fmt.Errorf("SessionEpochStore.Bump: %w", err)
	}
	return nil
}

func (s *SessionEpochStore) Epoch(ctx context.Context) (int64, error) {
	val, err := s.rdb.Get(ctx, config.AppConfig.SessionEpochKey).Result()
	if err == redis.Nil {
		return 0, nil // never rotated, all tokens valid
	}
	if err != nil {
		return 0, fmt.Errorf("SessionEpochStore.Epoch: %w", err)
	}
	epoch, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("SessionEpochStore.Epoch: malformed value %q: %w", val, err)
	}
	return epoch, nil
}

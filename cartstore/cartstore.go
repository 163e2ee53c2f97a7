// Package cartstore keeps the server copy of each signed-in shopper's cart.
// Redis is used when configured, otherwise the cart_snapshots table.
package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ashish5180/vibe-bites/client/cart"
	"github.com/Ashish5180/vibe-bites/models"
)

// TTL is how long an untouched cart survives in redis.
const TTL = 30 * 24 * time.Hour

var ErrNotFound = errors.New("cart not found")

type Store interface {
	Get(ctx context.Context, userID uint) (cart.State, error)
	// Put replaces the user's cart with s normalized.
	Put(ctx context.Context, userID uint, s cart.State) (cart.State, error)
	Delete(ctx context.Context, userID uint) error
}

func encode(s cart.State) (cart.State, []byte, error) {
	s = cart.Normalize(s)
	data, err := json.Marshal(s)
	if err != nil {
		return s, nil, fmt.Errorf("encode cart: %w", err)
	}
	return s, data, nil
}

func decode(data []byte) (cart.State, error) {
	var s cart.State
	if err := json.Unmarshal(data, &s); err != nil {
		return cart.State{}, fmt.Errorf("decode cart: %w", err)
	}
	return cart.Normalize(s), nil
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: TTL}
}

func redisKey(userID uint) string {
	return "vibebites:cart:" + strconv.FormatUint(uint64(userID), 10)
}

func (r *RedisStore) Get(ctx context.Context, userID uint) (cart.State, error) {
	data, err := r.client.Get(ctx, redisKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.State{}, ErrNotFound
	}
	if err != nil {
		return cart.State{}, fmt.Errorf("redis get cart: %w", err)
	}
	return decode(data)
}

func (r *RedisStore) Put(ctx context.Context, userID uint, s cart.State) (cart.State, error) {
	s, data, err := encode(s)
	if err != nil {
		return s, err
	}
	if err := r.client.Set(ctx, redisKey(userID), data, r.ttl).Err(); err != nil {
		return s, fmt.Errorf("redis set cart: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, userID uint) error {
	if err := r.client.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Get(ctx context.Context, userID uint) (cart.State, error) {
	var snap models.CartSnapshot
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cart.State{}, ErrNotFound
	}
	if err != nil {
		return cart.State{}, fmt.Errorf("load cart snapshot: %w", err)
	}
	return decode(snap.State)
}

func (g *GormStore) Put(ctx context.Context, userID uint, s cart.State) (cart.State, error) {
	s, data, err := encode(s)
	if err != nil {
		return s, err
	}
	snap := models.CartSnapshot{UserID: userID, State: data, UpdatedAt: time.Now()}
	err = g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return s, fmt.Errorf("save cart snapshot: %w", err)
	}
	return s, nil
}

func (g *GormStore) Delete(ctx context.Context, userID uint) error {
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartSnapshot{}).Error; err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

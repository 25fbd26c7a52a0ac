// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every key this application writes to Redis.
const keyPrefix = "livepoll:"

// RedisKV stores each blob as a plain string key with a companion
// "<key>:version" counter.
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV connects to Redis and verifies the connection.
func NewRedisKV(ctx context.Context, addr, password string, db int) (*RedisKV, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &RedisKV{rdb: rdb}, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) (Entry, error) {
	var value, version *redis.StringCmd
	_, err := r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		value = p.Get(ctx, keyPrefix+key)
		version = p.Get(ctx, keyPrefix+key+":version")
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, fmt.Errorf("redis: get %s: %w", key, err)
	}

	raw, err := value.Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("redis: get %s: %w", key, err)
	}

	// A missing counter means the value was written by something else
	v, err := version.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, fmt.Errorf("redis: get %s version: %w", key, err)
	}

	return Entry{Value: raw, Version: v}, nil
}

// Put writes all values in a MULTI/EXEC block.
func (r *RedisKV) Put(ctx context.Context, values map[string][]byte) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for key, value := range values {
			p.Set(ctx, keyPrefix+key, value, 0)
			p.Incr(ctx, keyPrefix+key+":version")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: put: %w", err)
	}
	return nil
}

func (r *RedisKV) Close() error {
	return r.rdb.Close()
}

// Client exposes the connection so the event bus can share it.
func (r *RedisKV) Client() *redis.Client {
	return r.rdb
}

var _ KV = (*RedisKV)(nil)

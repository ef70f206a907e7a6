// Package cache 诗歌列表的 Redis 缓存
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/daily-poem/internal/model"
)

const (
	listKey = "poems:list"
	genKey  = "poems:list:gen"
)

var (
	// ErrMiss 缓存中没有列表
	ErrMiss = errors.New("cache miss")
	// ErrStale 回填期间发生过失效，快照已过期，放弃写入
	ErrStale = errors.New("cache generation changed")
)

// PoemCache 在 Redis 中保存完整诗歌列表的 JSON 快照。
// 每次失效递增 genKey；回填只在代数未变时写入。
type PoemCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewPoemCache ttl <= 0 表示不过期
func NewPoemCache(client *redis.Client, ttl time.Duration) *PoemCache {
	return &PoemCache{client: client, ttl: ttl}
}

func (c *PoemCache) GetList(ctx context.Context) ([]*model.Poem, error) {
	data, err := c.client.Get(ctx, listKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var out []*model.Poem
	if err := json.Unmarshal(data, &out); err != nil {
		c.misses.Add(1)
		return nil, ErrMiss
	}
	c.hits.Add(1)
	return out, nil
}

// Generation 当前失效代数，需在读库之前取得
func (c *PoemCache) Generation(ctx context.Context) (int64, error) {
	return readGen(ctx, c.client)
}

func readGen(ctx context.Context, cmd redis.Cmdable) (int64, error) {
	gen, err := cmd.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetList 仅当代数仍为 gen 时写入快照，否则返回 ErrStale
func (c *PoemCache) SetList(ctx context.Context, gen int64, poems []*model.Poem) error {
	payload, err := json.Marshal(poems)
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readGen(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listKey, payload, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// Invalidate 递增代数并删除快照
func (c *PoemCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Del(ctx, listKey)
		return nil
	})
	return err
}

func (c *PoemCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Stats 启动以来的命中/未命中次数
func (c *PoemCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

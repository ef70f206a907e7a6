package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/daily-poem/internal/cache"
	"github.com/d60-Lab/daily-poem/internal/model"
	"github.com/d60-Lab/daily-poem/pkg/logger"
)

// cachedPoemRepository 列表读走 Redis，任何写操作成功后失效缓存。
// 缓存异常只记日志，回落到数据库。
type cachedPoemRepository struct {
	PoemRepository
	cache *cache.PoemCache
}

func NewCachedPoemRepository(inner PoemRepository, c *cache.PoemCache) PoemRepository {
	return &cachedPoemRepository{PoemRepository: inner, cache: c}
}

func (r *cachedPoemRepository) List(ctx context.Context) ([]*model.Poem, error) {
	poems, err := r.cache.GetList(ctx)
	if err == nil {
		return poems, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn("poem cache read failed", zap.Error(err))
		return r.PoemRepository.List(ctx)
	}

	// 代数必须在读库之前取，读库后发生的失效会让回填作废
	gen, err := r.cache.Generation(ctx)
	if err != nil {
		logger.Warn("poem cache generation read failed", zap.Error(err))
		return r.PoemRepository.List(ctx)
	}
	poems, err = r.PoemRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	switch err := r.cache.SetList(ctx, gen, poems); {
	case errors.Is(err, cache.ErrStale):
		logger.Debug("poem cache fill skipped, list changed meanwhile")
	case err != nil:
		logger.Warn("poem cache write failed", zap.Error(err))
	}
	return poems, nil
}

func (r *cachedPoemRepository) invalidate(ctx context.Context) {
	if err := r.cache.Invalidate(ctx); err != nil {
		logger.Warn("poem cache invalidate failed", zap.Error(err))
	}
}

func (r *cachedPoemRepository) Create(ctx context.Context, poem *model.Poem) error {
	if err := r.PoemRepository.Create(ctx, poem); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedPoemRepository) CreateMany(ctx context.Context, poems []*model.Poem) (int64, error) {
	n, err := r.PoemRepository.CreateMany(ctx, poems)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx)
	return n, nil
}

func (r *cachedPoemRepository) Replace(ctx context.Context, id uint, fields model.PoemFields) error {
	if err := r.PoemRepository.Replace(ctx, id, fields); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedPoemRepository) Delete(ctx context.Context, id uint) error {
	if err := r.PoemRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedPoemRepository) MarkPosted(ctx context.Context, id uint) error {
	if err := r.PoemRepository.MarkPosted(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedPoemRepository) ResetPosted(ctx context.Context) (int64, error) {
	n, err := r.PoemRepository.ResetPosted(ctx)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx)
	return n, nil
}

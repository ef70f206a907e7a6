package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/daily-poem/internal/model"
)

var ErrNotFound = errors.New("poem not found")

const bulkBatchSize = 100

// PoemRepository 诗歌仓储接口
type PoemRepository interface {
	// Create 新建，写入后 poem.ID 为生成的主键
	Create(ctx context.Context, poem *model.Poem) error

	// CreateMany 单事务批量写入，返回写入条数
	CreateMany(ctx context.Context, poems []*model.Poem) (int64, error)

	// List 全部诗歌（按 id 升序）
	List(ctx context.Context) ([]*model.Poem, error)

	// ListUnposted 未发布的诗歌
	ListUnposted(ctx context.Context) ([]*model.Poem, error)

	Get(ctx context.Context, id uint) (*model.Poem, error)

	// Replace 覆盖全部可变字段
	Replace(ctx context.Context, id uint, fields model.PoemFields) error

	Delete(ctx context.Context, id uint) error

	// MarkPosted 标记为已发布
	MarkPosted(ctx context.Context, id uint) error

	// ResetPosted 把所有条目重置为未发布，返回受影响条数
	ResetPosted(ctx context.Context) (int64, error)
}

type poemRepository struct {
	db *gorm.DB
}

func NewPoemRepository(db *gorm.DB) PoemRepository { return &poemRepository{db: db} }

// InitSchema 初始化表结构
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Poem{}); err != nil {
		return fmt.Errorf("failed to migrate poems table: %w", err)
	}
	return nil
}

func (r *poemRepository) Create(ctx context.Context, poem *model.Poem) error {
	poem.ID = 0
	poem.IsPosted = false
	return r.db.WithContext(ctx).Create(poem).Error
}

func (r *poemRepository) CreateMany(ctx context.Context, poems []*model.Poem) (int64, error) {
	if len(poems) == 0 {
		return 0, nil
	}
	for _, p := range poems {
		p.ID = 0
		p.IsPosted = false
	}
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.CreateInBatches(poems, bulkBatchSize)
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *poemRepository) List(ctx context.Context) ([]*model.Poem, error) {
	var res []*model.Poem
	err := r.db.WithContext(ctx).Order("id").Find(&res).Error
	return res, err
}

func (r *poemRepository) ListUnposted(ctx context.Context) ([]*model.Poem, error) {
	var res []*model.Poem
	err := r.db.WithContext(ctx).Where("is_posted = ?", false).Order("id").Find(&res).Error
	return res, err
}

func (r *poemRepository) Get(ctx context.Context, id uint) (*model.Poem, error) {
	var poem model.Poem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&poem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &poem, nil
}

func (r *poemRepository) Replace(ctx context.Context, id uint, fields model.PoemFields) error {
	updates := map[string]any{
		"title":   fields.Title,
		"content": fields.Content,
		"author":  fields.Author,
		"source":  fields.Source,
	}
	if fields.IsPosted != nil {
		updates["is_posted"] = *fields.IsPosted
	}
	res := r.db.WithContext(ctx).Model(&model.Poem{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *poemRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Poem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *poemRepository) MarkPosted(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Poem{}).Where("id = ?", id).Update("is_posted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *poemRepository) ResetPosted(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Poem{}).Where("is_posted = ?", true).Update("is_posted", false)
	return res.RowsAffected, res.Error
}

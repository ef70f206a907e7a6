package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/daily-poem/internal/model"
	"github.com/d60-Lab/daily-poem/internal/repository"
)

var (
	ErrInvalidPoem = errors.New("invalid poem")
	ErrEmptyBatch  = fmt.Errorf("%w: empty batch", ErrInvalidPoem)
)

// PoemInput 新建/更新时的输入字段
type PoemInput struct {
	Title   string `validate:"required,max=100"`
	Content string `validate:"required"`
	Author  string `validate:"required,max=100"`
	Source  string `validate:"required,max=100"`
}

// PoemService 诗歌管理服务
type PoemService interface {
	Create(ctx context.Context, in PoemInput) (*model.Poem, error)
	CreateBulk(ctx context.Context, in []PoemInput) (int64, error)
	List(ctx context.Context) ([]*model.Poem, error)
	Get(ctx context.Context, id uint) (*model.Poem, error)
	Update(ctx context.Context, id uint, in PoemInput, isPosted *bool) error
	Delete(ctx context.Context, id uint) error
	ResetPosted(ctx context.Context) (int64, error)
}

type poemService struct {
	repo     repository.PoemRepository
	validate *validator.Validate
}

func NewPoemService(repo repository.PoemRepository) PoemService {
	return &poemService{repo: repo, validate: validator.New()}
}

func (s *poemService) check(in PoemInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidPoem, strings.Join(msgs, ", "))
}

func (in PoemInput) toModel() *model.Poem {
	return &model.Poem{Title: in.Title, Content: in.Content, Author: in.Author, Source: in.Source}
}

func (s *poemService) Create(ctx context.Context, in PoemInput) (*model.Poem, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	p := in.toModel()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateBulk 任一条不合法则整批拒绝
func (s *poemService) CreateBulk(ctx context.Context, in []PoemInput) (int64, error) {
	if len(in) == 0 {
		return 0, ErrEmptyBatch
	}
	poems := make([]*model.Poem, len(in))
	for i, it := range in {
		if err := s.check(it); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		poems[i] = it.toModel()
	}
	return s.repo.CreateMany(ctx, poems)
}

func (s *poemService) List(ctx context.Context) ([]*model.Poem, error) {
	return s.repo.List(ctx)
}

func (s *poemService) Get(ctx context.Context, id uint) (*model.Poem, error) {
	return s.repo.Get(ctx, id)
}

func (s *poemService) Update(ctx context.Context, id uint, in PoemInput, isPosted *bool) error {
	if err := s.check(in); err != nil {
		return err
	}
	return s.repo.Replace(ctx, id, model.PoemFields{
		Title:    in.Title,
		Content:  in.Content,
		Author:   in.Author,
		Source:   in.Source,
		IsPosted: isPosted,
	})
}

func (s *poemService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *poemService) ResetPosted(ctx context.Context) (int64, error) {
	return s.repo.ResetPosted(ctx)
}

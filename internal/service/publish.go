package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/d60-Lab/daily-poem/internal/model"
	"github.com/d60-Lab/daily-poem/internal/publisher"
	"github.com/d60-Lab/daily-poem/internal/repository"
	"github.com/d60-Lab/daily-poem/pkg/logger"
)

var tracer = otel.Tracer("github.com/d60-Lab/daily-poem/internal/service")

// ErrMarkFailed 诗已发布到平台，但 is_posted 未能写回
var ErrMarkFailed = errors.New("poem published but not marked as posted")

// SelectionResult 一次选诗发布的结果；Posted=false 表示没有可发布的诗
type SelectionResult struct {
	Posted bool
	PoemID uint
}

// SelectionJob 随机选一首未发布的诗发布到平台，成功后标记已发布
type SelectionJob struct {
	repo      repository.PoemRepository
	publisher publisher.Publisher

	// mu 串行化 读候选 -> 发布 -> 标记 整个过程
	mu  sync.Mutex
	rnd *rand.Rand
}

type SelectionOption func(*SelectionJob)

// WithRand 注入随机源（测试中固定种子）
func WithRand(r *rand.Rand) SelectionOption {
	return func(j *SelectionJob) { j.rnd = r }
}

func NewSelectionJob(repo repository.PoemRepository, pub publisher.Publisher, opts ...SelectionOption) *SelectionJob {
	j := &SelectionJob{repo: repo, publisher: pub}
	for _, o := range opts {
		o(j)
	}
	if j.rnd == nil {
		j.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return j
}

// Pick 从候选集中均匀随机取一个；空集返回 nil
func Pick(candidates []*model.Poem, rnd *rand.Rand) *model.Poem {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rnd.Intn(len(candidates))]
}

// Run 执行一次：无候选时直接返回；发布失败时不修改 is_posted，也不重试
func (j *SelectionJob) Run(ctx context.Context) (res *SelectionResult, err error) {
	ctx, span := tracer.Start(ctx, "SelectionJob.Run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	j.mu.Lock()
	defer j.mu.Unlock()

	candidates, err := j.repo.ListUnposted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unposted poems: %w", err)
	}
	span.SetAttributes(attribute.Int("poem.candidates", len(candidates)))

	poem := Pick(candidates, j.rnd)
	if poem == nil {
		logger.Info("no unposted poems, nothing to publish")
		return &SelectionResult{}, nil
	}
	span.SetAttributes(attribute.Int64("poem.id", int64(poem.ID)))

	text := publisher.ComposeText(poem.Content, poem.Author, poem.Source)
	if err := j.publisher.Publish(ctx, text); err != nil {
		logger.Warn("publish poem failed", zap.Uint("poem_id", poem.ID), zap.Error(err))
		return nil, fmt.Errorf("publish poem %d: %w", poem.ID, err)
	}

	if err := j.repo.MarkPosted(ctx, poem.ID); err != nil {
		// 已发布但记录失败（例如并发删除），只能如实上报
		logger.Error("poem published but not marked", zap.Uint("poem_id", poem.ID), zap.Error(err))
		return &SelectionResult{Posted: true, PoemID: poem.ID}, fmt.Errorf("%w: poem %d: %w", ErrMarkFailed, poem.ID, err)
	}

	logger.Info("poem published", zap.Uint("poem_id", poem.ID), zap.Int("candidates", len(candidates)))
	return &SelectionResult{Posted: true, PoemID: poem.ID}, nil
}

// Package scheduler 每天在固定时刻触发选诗发布
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/d60-Lab/daily-poem/config"
	"github.com/d60-Lab/daily-poem/pkg/logger"
	"github.com/d60-Lab/daily-poem/pkg/monitoring"
)

// Job 调度器触发的任务
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc 函数适配为 Job
type JobFunc func(ctx context.Context) error

func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// Scheduler 每天在 cfg.Timezone 的 cfg.Hour:cfg.Minute 执行一次 Job
type Scheduler struct {
	job      Job
	cron     *cron.Cron
	schedule cron.Schedule
	loc      *time.Location
	timeout  time.Duration

	mu      sync.Mutex
	started bool
}

type Option func(*Scheduler)

// WithRunTimeout 单次运行超时，0 表示不限
func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

func New(job Job, cfg config.ScheduleConfig, opts ...Option) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	spec := fmt.Sprintf("CRON_TZ=%s %d %d * * *", loc.String(), cfg.Minute, cfg.Hour)
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	s := &Scheduler{
		job:      job,
		schedule: sched,
		loc:      loc,
		timeout:  5 * time.Minute,
	}
	for _, o := range opts {
		o(s)
	}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	s.cron.Schedule(sched, cron.FuncJob(s.fire))
	return s, nil
}

// Start 在后台开始调度，重复调用无副作用
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	logger.Info("scheduler started", zap.Time("next_run", s.Next(time.Now())))
}

// Stop 停止后续触发，等待正在执行的任务结束或 ctx 到期
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next 返回 t 之后的下一次触发时间
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// fire 执行一次任务；错误与 panic 只记录并上报，不向外传播
func (s *Scheduler) fire() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled run panicked", zap.Any("panic", r))
			monitoring.CapturePanic(r, map[string]string{"component": "scheduler"})
		}
	}()

	start := time.Now()
	if err := s.job.Run(ctx); err != nil {
		logger.Error("scheduled run failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		monitoring.CaptureError(err, map[string]string{"component": "scheduler"})
		return
	}
	logger.Info("scheduled run finished", zap.Duration("elapsed", time.Since(start)))
}

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/d60-Lab/daily-poem/config"
	"github.com/d60-Lab/daily-poem/pkg/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	prev := logger.L()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })
	return logs
}

func noop(context.Context) error { return nil }

func TestNew_InvalidTimezone(t *testing.T) {
	_, err := New(JobFunc(noop), config.ScheduleConfig{Hour: 9, Timezone: "Nowhere/Special"})
	assert.Error(t, err)
}

func TestNext_DailyAtConfiguredHour(t *testing.T) {
	s, err := New(JobFunc(noop), config.ScheduleConfig{Hour: 9, Timezone: "GMT"})
	require.NoError(t, err)

	gmt, _ := time.LoadLocation("GMT")
	before := time.Date(2024, 3, 1, 8, 59, 0, 0, gmt)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, gmt).Unix(), s.Next(before).Unix())

	after := time.Date(2024, 3, 1, 9, 0, 0, 0, gmt)
	assert.Equal(t, time.Date(2024, 3, 2, 9, 0, 0, 0, gmt).Unix(), s.Next(after).Unix())
}

func TestNext_UsesConfiguredZoneNotCaller(t *testing.T) {
	s, err := New(JobFunc(noop), config.ScheduleConfig{Hour: 9, Minute: 30, Timezone: "Asia/Tokyo"})
	require.NoError(t, err)

	tokyo, _ := time.LoadLocation("Asia/Tokyo")
	// 2024-03-01 00:00 UTC 即东京 09:00，下一次触发是当天东京 09:30
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	next := s.Next(now)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, tokyo).Unix(), next.Unix())
}

func TestFire_ErrorIsSwallowedAndLogged(t *testing.T) {
	logs := observeLogs(t)
	var calls atomic.Int32
	s, err := New(JobFunc(func(context.Context) error {
		calls.Add(1)
		return errors.New("publish failed: status 503")
	}), config.ScheduleConfig{Hour: 9, Timezone: "GMT"})
	require.NoError(t, err)

	assert.NotPanics(t, s.fire)
	assert.NotPanics(t, s.fire)
	assert.EqualValues(t, 2, calls.Load(), "a failed run does not stop later runs")
	assert.Equal(t, 2, logs.FilterMessage("scheduled run failed").Len())
}

func TestFire_RecoversPanic(t *testing.T) {
	logs := observeLogs(t)
	s, err := New(JobFunc(func(context.Context) error { panic("boom") }), config.ScheduleConfig{Hour: 9, Timezone: "GMT"})
	require.NoError(t, err)

	assert.NotPanics(t, s.fire)
	assert.Equal(t, 1, logs.FilterMessage("scheduled run panicked").Len())
}

func TestFire_AppliesRunTimeout(t *testing.T) {
	var deadline atomic.Bool
	s, err := New(JobFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		deadline.Store(ok)
		return nil
	}), config.ScheduleConfig{Hour: 9, Timezone: "GMT"}, WithRunTimeout(time.Second))
	require.NoError(t, err)

	s.fire()
	assert.True(t, deadline.Load())
}

func TestStartStop(t *testing.T) {
	s, err := New(JobFunc(noop), config.ScheduleConfig{Hour: 9, Timezone: "GMT"})
	require.NoError(t, err)

	// 未启动时 Stop 无副作用
	require.NoError(t, s.Stop(context.Background()))

	s.Start()
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

// soonSchedule 每隔 d 触发一次，让测试不必等到每日时间点
type soonSchedule struct{ d time.Duration }

func (s soonSchedule) Next(t time.Time) time.Time { return t.Add(s.d) }

// startBlocked 启动调度器并等到一次运行卡在 release 上
func startBlocked(t *testing.T) (s *Scheduler, release chan struct{}) {
	t.Helper()
	started := make(chan struct{}, 1)
	release = make(chan struct{})
	s, err := New(JobFunc(func(context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}), config.ScheduleConfig{Hour: 9, Timezone: "GMT"})
	require.NoError(t, err)
	s.cron.Schedule(soonSchedule{d: 5 * time.Millisecond}, cron.FuncJob(s.fire))
	s.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}
	return s, release
}

func TestStop_WaitsForRunningJob(t *testing.T) {
	s, release := startBlocked(t)

	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop(context.Background()) }()

	select {
	case err := <-stopped:
		t.Fatalf("Stop returned while a run was in flight: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the run finished")
	}
}

func TestStop_ReturnsOnContextDeadline(t *testing.T) {
	s, release := startBlocked(t)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := s.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

// Package monitoring 把无人值守的失败（定时任务、panic）上报到 Sentry
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/d60-Lab/daily-poem/config"
)

var enabled bool

// Init 初始化 Sentry 客户端，DSN 为空时不上报
func Init(cfg config.SentryConfig) error {
	if cfg.DSN == "" {
		enabled = false
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
	}); err != nil {
		return err
	}
	enabled = true
	return nil
}

// Enabled 是否启用上报
func Enabled() bool { return enabled }

// CaptureError 带标签上报错误，未启用时不做任何事
func CaptureError(err error, tags map[string]string) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// CapturePanic 上报 recover 得到的 panic 值
func CapturePanic(v any, tags map[string]string) {
	if !enabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CurrentHub().Recover(v)
	})
}

// Flush 等待缓冲事件发送完毕
func Flush(timeout time.Duration) {
	if enabled {
		sentry.Flush(timeout)
	}
}

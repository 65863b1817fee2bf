package telemetry

import (
	"context"
	"fmt"

	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap"

	"learnhub/backend/config"
)

// Reporter 错误上报接口（生产实现基于 Rollbar）
type Reporter interface {
	ReportError(ctx context.Context, err error, extras map[string]interface{})
	ReportPanic(ctx context.Context, recovered interface{}, extras map[string]interface{})
	Close()
}

// NewReporter 根据配置创建错误上报器
// 未配置 rollbar_token 时返回 NopReporter
func NewReporter(cfg *config.Config, logger *zap.Logger) Reporter {
	if cfg.Telemetry.RollbarToken == "" {
		logger.Info("未配置 Rollbar Token，错误上报已禁用")
		return NopReporter{}
	}

	client := rollbar.NewAsync(
		cfg.Telemetry.RollbarToken,
		cfg.Server.Env,
		cfg.Telemetry.Version,
		"",
		"",
	)
	client.SetEnabled(true)
	client.SetServerRoot("learnhub/backend")

	logger.Info("Rollbar 错误上报已启用", zap.String("env", cfg.Server.Env))

	return &rollbarReporter{client: client, logger: logger}
}

type rollbarReporter struct {
	client *rollbar.Client
	logger *zap.Logger
}

func (r *rollbarReporter) ReportError(ctx context.Context, err error, extras map[string]interface{}) {
	if err == nil {
		return
	}
	r.client.ErrorWithExtrasAndContext(ctx, rollbar.ERR, err, withTrace(ctx, extras))
}

func (r *rollbarReporter) ReportPanic(ctx context.Context, recovered interface{}, extras map[string]interface{}) {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	r.client.ErrorWithExtrasAndContext(ctx, rollbar.CRIT, err, withTrace(ctx, extras))
}

// Close 等待异步队列发送完毕
func (r *rollbarReporter) Close() {
	r.client.Close()
}

// NopReporter 空实现，用于测试或未启用上报的环境
type NopReporter struct{}

func (NopReporter) ReportError(context.Context, error, map[string]interface{})       {}
func (NopReporter) ReportPanic(context.Context, interface{}, map[string]interface{}) {}
func (NopReporter) Close()                                                           {}

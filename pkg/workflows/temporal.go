// Package workflows connects the service to Temporal. The inventory bulk
// import runs as a workflow so a large batch survives API restarts.
package workflows

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/logger"
)

const defaultActivityConcurrency = 4

// TemporalClient is a dialed Temporal client bound to the inventory task
// queue.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	TaskQueue string

	activityConcurrency int
	log                 logger.Logger
}

// NewTemporalClient dials cfg.TemporalHostPort with OTel tracing on every
// workflow and activity call. Close it on shutdown.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("larder/workflows"),
	})
	if err != nil {
		return nil, fmt.Errorf("create temporal tracing interceptor: %w", err)
	}

	log = log.With("component", "temporal", "namespace", cfg.TemporalNamespace)
	c, err := client.DialContext(ctx, client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Logger:       sdkLogger{log},
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal at %s: %w", cfg.TemporalHostPort, err)
	}

	concurrency := cfg.TemporalActivityConcurrency
	if concurrency <= 0 {
		concurrency = defaultActivityConcurrency
	}
	log.Info("temporal connected", "host_port", cfg.TemporalHostPort, "task_queue", cfg.TemporalTaskQueue)
	return &TemporalClient{
		Client:              c,
		Namespace:           cfg.TemporalNamespace,
		TaskQueue:           cfg.TemporalTaskQueue,
		activityConcurrency: concurrency,
		log:                 log,
	}, nil
}

// NewWorker returns a worker polling the inventory task queue. Register
// workflows and activities before Start.
func (tc *TemporalClient) NewWorker() worker.Worker {
	return worker.New(tc.Client, tc.TaskQueue, workerOptions(tc.activityConcurrency))
}

func workerOptions(activityConcurrency int) worker.Options {
	return worker.Options{
		MaxConcurrentActivityExecutionSize:     activityConcurrency,
		MaxConcurrentWorkflowTaskExecutionSize: activityConcurrency,
	}
}

// Ping asks the Temporal frontend for its health so the service can report
// it on /health.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health check: %w", err)
	}
	return nil
}

func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal connection closed")
}

// sdkLogger sends SDK log lines through the service logger. The SDK's info
// output (poller start, sticky cache) is chatty, so it is logged at debug.
type sdkLogger struct {
	log logger.Logger
}

var _ temporallog.WithLogger = sdkLogger{}

func (l sdkLogger) Debug(msg string, keyvals ...any) { l.log.Debug(msg, keyvals...) }
func (l sdkLogger) Info(msg string, keyvals ...any)  { l.log.Debug(msg, keyvals...) }
func (l sdkLogger) Warn(msg string, keyvals ...any)  { l.log.Warn(msg, keyvals...) }
func (l sdkLogger) Error(msg string, keyvals ...any) { l.log.Error(msg, keyvals...) }

func (l sdkLogger) With(keyvals ...any) temporallog.Logger {
	return sdkLogger{l.log.With(keyvals...)}
}

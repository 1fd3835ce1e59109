package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MikeRez0/tutorpay/internal/adapter/config"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TaskAdminAlert = "alert:admin"
	queueName      = "alerts"
	maxRetry       = 5
)

func redisOpt(cfg *config.Redis) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// Queue hands admin alerts to an asynq worker so a slow channel never delays
// the request that raised them.
type Queue struct {
	client *asynq.Client
}

var _ port.Alerter = (*Queue)(nil)

func NewQueue(cfg *config.Redis) *Queue {
	return &Queue{client: asynq.NewClient(redisOpt(cfg))}
}

func (q *Queue) Alert(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("error encoding alert: %w", err)
	}

	task := asynq.NewTask(TaskAdminAlert, payload)
	_, err = q.client.EnqueueContext(ctx, task, asynq.Queue(queueName), asynq.MaxRetry(maxRetry))
	return err
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// Processor consumes queued alerts.
type Processor struct {
	server *asynq.Server
	logger *zap.Logger
}

func NewProcessor(cfg *config.Redis, log *zap.Logger) *Processor {
	server := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{queueName: 1},
	})
	return &Processor{server: server, logger: log}
}

func (p *Processor) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskAdminAlert, HandleAdminAlert(p.logger))
	return p.server.Start(mux)
}

func (p *Processor) Shutdown() {
	p.server.Shutdown()
}

func HandleAdminAlert(log *zap.Logger) func(context.Context, *asynq.Task) error {
	return func(_ context.Context, t *asynq.Task) error {
		var alert domain.Alert
		if err := json.Unmarshal(t.Payload(), &alert); err != nil {
			return fmt.Errorf("error decoding alert: %w: %w", err, asynq.SkipRetry)
		}
		logAlert(log, alert)
		return nil
	}
}

func logAlert(log *zap.Logger, alert domain.Alert) {
	fields := []zap.Field{
		zap.String("kind", alert.Kind),
		zap.String("order", alert.OrderID),
		zap.Time("sent_at", alert.SentAt),
	}
	if alert.Severity == domain.AlertSeverityCritical {
		log.Error("ADMIN ALERT: "+alert.Message, fields...)
		return
	}
	log.Warn("ADMIN ALERT: "+alert.Message, fields...)
}

// Logger writes alerts straight to the log. It is used when Redis is not configured.
type Logger struct {
	logger *zap.Logger
}

var _ port.Alerter = (*Logger)(nil)

func NewLogger(log *zap.Logger) *Logger {
	return &Logger{logger: log}
}

func (l *Logger) Alert(_ context.Context, alert domain.Alert) error {
	logAlert(l.logger, alert)
	return nil
}

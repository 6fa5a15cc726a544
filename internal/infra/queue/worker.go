package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// JobHandler runs one dispatch job.
type JobHandler interface {
	HandleDispatchJob(ctx context.Context, job DispatchJob) error
}

type Consumer interface {
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Handler JobHandler
	Log     *zap.Logger
}

func NewWorker(ch Consumer, handler JobHandler, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		Channel: ch,
		Handler: handler,
		Log:     log,
	}
}

// Start consumes until ctx is cancelled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx, queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Log.Info("dispatch worker waiting", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.Log.Warn("delivery channel closed", zap.String("queue", queueName))
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

// Acknowledger is implemented by amqp.Delivery.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	w.process(ctx, d.Body, &d)
}

func (w *Worker) process(ctx context.Context, body []byte, ack Acknowledger) {
	var job DispatchJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Log.Error("invalid dispatch job", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	log := w.Log.With(zap.String("job_id", job.JobID), zap.String("source", job.Source))
	log.Info("dispatch job received")

	// Rows already dispatched cannot be rolled back, so failed jobs go to the DLQ instead of being requeued.
	if err := w.Handler.HandleDispatchJob(ctx, job); err != nil {
		log.Error("dispatch job failed", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	log.Info("dispatch job done")
	_ = ack.Ack(false)
}

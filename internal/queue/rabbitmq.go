package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// DefaultQueueName is the default queue name
	DefaultQueueName = "career_coach_jobs"
	// DefaultDLQName is the default dead letter queue name
	DefaultDLQName = "career_coach_jobs_dlq"
	// DefaultExchangeName is the default exchange name
	DefaultExchangeName = "career_coach"
	// DefaultDelayedExchangeName is the default delayed exchange name (requires plugin)
	DefaultDelayedExchangeName = "career_coach_delayed"

	jobsRoutingKey = "jobs"
	dlqRoutingKey  = "dlq"
)

// RabbitMQQueue implements JobQueue using RabbitMQ
type RabbitMQQueue struct {
	conn                *amqp.Connection
	channel             *amqp.Channel
	publishMu           sync.Mutex
	queueName           string
	dlqName             string
	exchangeName        string
	delayedExchangeName string
	delayedAvailable    bool
	logger              *zap.Logger
}

var (
	_ JobQueue  = (*RabbitMQQueue)(nil)
	_ DLQPurger = (*RabbitMQQueue)(nil)
)

// NewRabbitMQQueue connects and declares the exchanges and queues
func NewRabbitMQQueue(amqpURL string, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q := &RabbitMQQueue{
		conn:                conn,
		channel:             ch,
		queueName:           DefaultQueueName,
		dlqName:             DefaultDLQName,
		exchangeName:        DefaultExchangeName,
		delayedExchangeName: DefaultDelayedExchangeName,
		logger:              logger,
	}

	if err := q.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup queues: %w", err)
	}

	return q, nil
}

// setup configures exchanges and queues
func (q *RabbitMQQueue) setup() error {
	// Delayed delivery needs the rabbitmq_delayed_message_exchange plugin.
	err := q.channel.ExchangeDeclare(
		q.delayedExchangeName,
		"x-delayed-message",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "direct"},
	)
	if err != nil {
		// A failed declare closes the channel.
		if q.channel.IsClosed() {
			newCh, openErr := q.conn.Channel()
			if openErr != nil {
				return fmt.Errorf("failed to reopen channel after delayed exchange error: %w", openErr)
			}
			q.channel = newCh
		}
		q.logger.Warn("delayed_exchange_unavailable", zap.Error(err))
	} else {
		q.delayedAvailable = true
	}

	if err := q.channel.ExchangeDeclare(q.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := q.channel.QueueDeclare(q.dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := q.channel.QueueBind(q.dlqName, dlqRoutingKey, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    q.exchangeName,
		"x-dead-letter-routing-key": dlqRoutingKey,
	}
	if _, err := q.channel.QueueDeclare(q.queueName, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := q.channel.QueueBind(q.queueName, jobsRoutingKey, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to exchange: %w", err)
	}
	if q.delayedAvailable {
		if err := q.channel.QueueBind(q.queueName, jobsRoutingKey, q.delayedExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to delayed exchange: %w", err)
		}
	}

	return nil
}

// publishing builds the AMQP message for job and picks the exchange.
func (q *RabbitMQQueue) publishing(job *Job, body []byte) (string, amqp.Publishing) {
	p := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID.String(),
		Timestamp:    job.CreatedAt,
		Type:         string(job.Type),
	}

	if job.NotAfter != nil {
		if ttl := time.Until(*job.NotAfter); ttl > 0 {
			p.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
		}
	}

	exchange := q.exchangeName
	if job.NotBefore != nil && q.delayedAvailable {
		if delay := time.Until(*job.NotBefore); delay > 0 {
			exchange = q.delayedExchangeName
			p.Headers = amqp.Table{"x-delay": delay.Milliseconds()}
		}
	}
	return exchange, p
}

// Enqueue adds a job to the queue
func (q *RabbitMQQueue) Enqueue(ctx context.Context, job *Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	exchange, publishing := q.publishing(job, body)

	// amqp channels are not safe for concurrent publishing.
	q.publishMu.Lock()
	defer q.publishMu.Unlock()

	if err := q.channel.PublishWithContext(ctx, exchange, jobsRoutingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	return nil
}

// Consume returns a channel of messages from the queue using async delivery
func (q *RabbitMQQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error) {
	// Consumers get a dedicated channel so acks never contend with publishes.
	consumeCh, err := q.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}

	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		q.queueName,
		"",    // consumer tag (empty = auto-generate)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	msgChan := make(chan *Message, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		defer func() { _ = consumeCh.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					errChan <- fmt.Errorf("delivery channel closed")
					return
				}

				var job Job
				if err := json.Unmarshal(delivery.Body, &job); err != nil {
					// Undecodable messages go to the DLQ.
					_ = delivery.Nack(false, false)
					q.logger.Warn("job_decode_failed", zap.Error(err))
					continue
				}

				if job.IsExpired() {
					_ = delivery.Ack(false)
					q.logger.Info("job_expired", zap.String("job_id", job.ID.String()), zap.String("type", string(job.Type)))
					continue
				}

				if !job.ShouldProcess() {
					_ = delivery.Nack(false, true)
					continue
				}

				msg := &Message{
					Job:         &job,
					DeliveryTag: delivery.DeliveryTag,
					Channel:     consumeCh,
				}

				select {
				case <-ctx.Done():
					_ = delivery.Nack(false, true)
					return
				case msgChan <- msg:
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

// PurgeOlderThan drops dead-lettered jobs created before now-retention. The
// DLQ is read in order and the scan stops at the first younger message.
func (q *RabbitMQQueue) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return 0, fmt.Errorf("failed to open purge channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	cutoff := time.Now().Add(-retention)
	purged := 0
	for {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		msg, ok, err := ch.Get(q.dlqName, false)
		if err != nil {
			return purged, fmt.Errorf("failed to read DLQ: %w", err)
		}
		if !ok {
			return purged, nil
		}
		if !msg.Timestamp.IsZero() && msg.Timestamp.After(cutoff) {
			_ = msg.Nack(false, true)
			return purged, nil
		}
		if err := msg.Ack(false); err != nil {
			return purged, fmt.Errorf("failed to drop DLQ message: %w", err)
		}
		purged++
	}
}

// HealthCheck verifies the connection and queue are usable
func (q *RabbitMQQueue) HealthCheck(ctx context.Context) error {
	if q.conn == nil || q.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclarePassive(q.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue %s unavailable: %w", q.queueName, err)
	}
	return ctx.Err()
}

// Close closes the queue connection
func (q *RabbitMQQueue) Close() error {
	var err error
	if q.channel != nil {
		err = q.channel.Close()
	}
	if q.conn != nil {
		if closeErr := q.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

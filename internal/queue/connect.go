package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	connectAttempts     = 10
	connectInitialDelay = 2 * time.Second
	connectMaxDelay     = 30 * time.Second
)

// ConnectRabbitMQ dials the broker, retrying with exponential backoff while
// RabbitMQ is still starting up. It gives up after ten attempts or when ctx
// is cancelled.
func ConnectRabbitMQ(ctx context.Context, amqpURL string, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := range connectAttempts {
		q, err := NewRabbitMQQueue(amqpURL, logger)
		if err == nil {
			logger.Info("connected_to_rabbitmq", zap.Int("attempt", attempt+1))
			return q, nil
		}
		lastErr = err

		if attempt == connectAttempts-1 {
			break
		}
		delay := min(connectInitialDelay*time.Duration(1<<attempt), connectMaxDelay)
		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", connectAttempts),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", connectAttempts, lastErr)
}

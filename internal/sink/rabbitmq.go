package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ultimatum-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	publishAttempts = 3
	publishTimeout  = 10 * time.Second
)

// Publisher: часть *amqp.Channel, нужная для публикации.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQSink публикует строки результатов в очередь как JSON.
type RabbitMQSink struct {
	channel   Publisher
	queueName string
	backoff   time.Duration
	logger    *zap.Logger
}

// NewRabbitMQSink открывает канал и объявляет durable-очередь.
func NewRabbitMQSink(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQSink, *amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("results publisher: не удалось открыть канал: %w", err)
	}
	if _, err = ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("results publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}
	logger.Info("Results queue declared", zap.String("queue", queueName))
	return NewRabbitMQSinkWithChannel(ch, queueName, logger), ch, nil
}

// NewRabbitMQSinkWithChannel использует уже открытый канал; очередь не объявляется.
func NewRabbitMQSinkWithChannel(ch Publisher, queueName string, logger *zap.Logger) *RabbitMQSink {
	return &RabbitMQSink{
		channel:   ch,
		queueName: queueName,
		backoff:   100 * time.Millisecond,
		logger:    logger.Named("RabbitMQSink"),
	}
}

func (s *RabbitMQSink) Name() string { return "rabbitmq" }

func (s *RabbitMQSink) Append(ctx context.Context, row models.Row) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("ошибка сериализации строки результатов: %w", err)
	}
	return s.publishMessage(ctx, body)
}

func (s *RabbitMQSink) publishMessage(ctx context.Context, body []byte) error {
	if s.channel == nil {
		return errors.New("канал RabbitMQ не инициализирован")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = s.channel.PublishWithContext(ctx,
			"",          // default exchange
			s.queueName, // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "ultimatum-server",
			},
		)
		if err == nil {
			return nil
		}
		s.logger.Warn("Publish attempt failed",
			zap.Int("attempt", attempt),
			zap.String("queue", s.queueName),
			zap.Error(err),
		)
		if attempt == publishAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ошибка публикации в очередь %s: %w", s.queueName, ctx.Err())
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}
	return fmt.Errorf("ошибка публикации в очередь %s после retries: %w", s.queueName, err)
}

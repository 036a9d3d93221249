package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ultimatum-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	failures int
	calls    int
	last     amqp.Publishing
	key      string
}

func (f *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.calls++
	f.key = key
	f.last = msg
	if f.calls <= f.failures {
		return errors.New("channel/connection is not open")
	}
	return nil
}

func newTestRabbitSink(p Publisher) *RabbitMQSink {
	s := NewRabbitMQSinkWithChannel(p, "experiment_results", zap.NewNop())
	s.backoff = 0
	return s
}

func TestRabbitMQSink_Publishes(t *testing.T) {
	p := &fakePublisher{}
	s := newTestRabbitSink(p)

	row := models.Row{"kind": models.RowKindTrial, "trial": 1, "session_id": "s-1"}
	require.NoError(t, s.Append(context.Background(), row))

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "experiment_results", p.key)
	assert.Equal(t, "application/json", p.last.ContentType)
	assert.Equal(t, amqp.Persistent, p.last.DeliveryMode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(p.last.Body, &decoded))
	assert.Equal(t, "s-1", decoded["session_id"])
}

func TestRabbitMQSink_RetriesThenSucceeds(t *testing.T) {
	p := &fakePublisher{failures: 2}
	s := newTestRabbitSink(p)

	require.NoError(t, s.Append(context.Background(), models.Row{"kind": models.RowKindSummary}))
	assert.Equal(t, 3, p.calls)
}

func TestRabbitMQSink_GivesUpAfterThreeAttempts(t *testing.T) {
	p := &fakePublisher{failures: 5}
	s := newTestRabbitSink(p)

	err := s.Append(context.Background(), models.Row{"kind": models.RowKindSummary})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "experiment_results")
	assert.Equal(t, publishAttempts, p.calls)
}

func TestRabbitMQSink_NilChannel(t *testing.T) {
	s := NewRabbitMQSinkWithChannel(nil, "q", zap.NewNop())
	assert.Error(t, s.Append(context.Background(), models.Row{}))
}

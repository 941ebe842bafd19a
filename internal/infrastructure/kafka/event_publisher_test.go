package kafka_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadrisk/acadrisk/internal/domain/event"
	"github.com/acadrisk/acadrisk/internal/infrastructure/kafka"
	"github.com/acadrisk/acadrisk/pkg/events"
	pkgkafka "github.com/acadrisk/acadrisk/pkg/kafka"
	"github.com/acadrisk/acadrisk/pkg/observability"
)

type mockWriter struct {
	publishFunc func(ctx context.Context, topic string, messages ...pkgkafka.Message) error
	topic       string
	messages    []pkgkafka.Message
}

func (m *mockWriter) Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error {
	m.topic = topic
	m.messages = append(m.messages, messages...)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, topic, messages...)
	}
	return nil
}

func completedEvent(t *testing.T, id uuid.UUID) events.DomainEvent {
	t.Helper()
	evt, err := event.NewPredictionCompleted(event.PredictionCompleted{
		PredictionID:   id,
		PredictedLabel: "at_risk",
		RiskCategory:   "high",
		RiskScore:      0.91,
		OracleKind:     "heuristic",
	})
	require.NoError(t, err)
	return evt
}

func TestPublisher_Publish(t *testing.T) {
	writer := &mockWriter{}
	pub := kafka.NewPublisher(writer, "prediction.events", observability.Discard())
	id := uuid.New()

	err := pub.Publish(context.Background(), completedEvent(t, id))
	require.NoError(t, err)

	assert.Equal(t, "prediction.events", writer.topic)
	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, id.String(), string(msg.Key))
	assert.Equal(t, event.EventTypePredictionCompleted, msg.Headers["event_type"])

	env, err := events.Unmarshal(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, id, env.AggregateID)
	assert.JSONEq(t, `"high"`, string(mustField(t, env.Payload, "risk_category")))
}

func TestPublisher_NoEvents(t *testing.T) {
	writer := &mockWriter{publishFunc: func(context.Context, string, ...pkgkafka.Message) error {
		t.Fatal("writer must not be called")
		return nil
	}}
	pub := kafka.NewPublisher(writer, "prediction.events", observability.Discard())

	require.NoError(t, pub.Publish(context.Background()))
}

func TestPublisher_WriterError(t *testing.T) {
	writer := &mockWriter{publishFunc: func(context.Context, string, ...pkgkafka.Message) error {
		return errors.New("broker unavailable")
	}}
	pub := kafka.NewPublisher(writer, "prediction.events", observability.Discard())

	err := pub.Publish(context.Background(), completedEvent(t, uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prediction.events")
}

func TestLogPublisher(t *testing.T) {
	pub := kafka.NewLogPublisher(observability.Discard())
	assert.NoError(t, pub.Publish(context.Background(), completedEvent(t, uuid.New())))
}

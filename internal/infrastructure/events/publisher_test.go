package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewEvent(t *testing.T) {
	saleID, userID := uuid.New(), uuid.New()

	event, err := NewEvent(EventSaleCreated, saleID, userID, map[string]any{"final_amount": 299.7})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, saleID.String(), event.SaleID)
	assert.Equal(t, userID.String(), event.UserID)
	assert.JSONEq(t, `{"final_amount":299.7}`, string(event.Data))

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "sale.created", decoded["type"])
	assert.Contains(t, decoded, "timestamp")
}

func TestNewPublisher_NoBrokersIsNoop(t *testing.T) {
	p := NewPublisher(config.KafkaConfig{SalesTopic: "pos.sales"}, zap.NewNop())
	_, ok := p.(NoopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), &Event{}))
	assert.NoError(t, p.Close())
}

func TestNewPublisher_WithBrokersIsKafka(t *testing.T) {
	p := NewPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, SalesTopic: "pos.sales"}, zap.NewNop())
	kp, ok := p.(*KafkaPublisher)
	require.True(t, ok)
	assert.Equal(t, "pos.sales", kp.writer.Topic)
	assert.NoError(t, kp.Close())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	e1, _ := NewEvent(EventSaleCreated, uuid.New(), uuid.New(), nil)
	e2, _ := NewEvent(EventPaymentRecorded, uuid.New(), uuid.New(), nil)
	require.NoError(t, r.Publish(context.Background(), e1))
	require.NoError(t, r.Publish(context.Background(), e2))

	assert.Equal(t, []EventType{EventSaleCreated, EventPaymentRecorded}, r.Types())
	assert.Len(t, r.Events(), 2)
}

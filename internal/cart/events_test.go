package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafkaGo.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestMetrics_CountsMutations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	svc := NewService(NewMemStore(), testProducts(), nil, m.Observe)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", "p2", 1)
	require.NoError(t, err)
	_, err = svc.Clear(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues(string(EventItemAdded))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues(string(EventCartCleared))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Mutations.WithLabelValues(string(EventItemRemoved))))
}

func TestKafkaPublisher_PublishesKeyedByOwner(t *testing.T) {
	w := &recordingWriter{}
	pub := newKafkaPublisher(w, nil)

	svc := NewService(NewMemStore(), testProducts(), nil, pub.Publish)
	_, err := svc.Add(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "u1", string(w.msgs[0].Key))

	var e Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &e))
	assert.Equal(t, EventItemAdded, e.Kind)
	assert.Equal(t, "p1", e.ProductID)
	assert.Equal(t, 3, e.Quantity)
	assert.Equal(t, 3, e.ItemCount)

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_FailureDoesNotFailMutation(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	pub := newKafkaPublisher(w, nil)

	svc := NewService(NewMemStore(), testProducts(), nil, pub.Publish)
	c, err := svc.Add(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount())
}

package cart

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Metrics struct {
	Mutations *prometheus.CounterVec
	Items     prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_mutations_total",
				Help: "Cart mutations by kind",
			},
			[]string{"kind"},
		),
		Items: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cart_item_count",
			Help:    "Cart item count after a mutation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
	}

	reg.MustRegister(m.Mutations, m.Items)
	return m
}

// Observe is a Listener.
func (m *Metrics) Observe(e Event) {
	m.Mutations.WithLabelValues(string(e.Kind)).Inc()
	m.Items.Observe(float64(e.ItemCount))
}

const publishTimeout = 2 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// KafkaPublisher forwards cart events to a topic, keyed by owner so one cart's
// events stay ordered within a partition. Publishing is best effort: failures
// are logged and never fail the mutation.
type KafkaPublisher struct {
	w       messageWriter
	log     *zap.Logger
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkaGo.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkaGo.RequireOne,
	}, log)
}

func newKafkaPublisher(w messageWriter, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{w: w, log: log, timeout: publishTimeout}
}

// Publish is a Listener.
func (p *KafkaPublisher) Publish(e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		p.log.Error("encode cart event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.w.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(e.Owner),
		Value: value,
		Time:  e.At,
	}); err != nil {
		p.log.Warn("publish cart event failed",
			zap.Error(err),
			zap.String("kind", string(e.Kind)),
			zap.String("owner", e.Owner),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

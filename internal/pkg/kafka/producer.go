package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"validascan/internal/entity"
)

type Producer interface {
	PublishScanEvent(ctx context.Context, event entity.ScanEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

// NewProducer connects to the brokers and ensures the topic exists. When the
// brokers are unreachable the gateway keeps working: a no-op producer is
// returned and events are only logged.
func NewProducer(brokers, topic string) Producer {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers)
	if err != nil {
		logrus.Warnf("kafka unreachable at %s, scan events will only be logged: %s", brokers, err.Error())
		return &noopProducer{}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Debugf("could not create topic %s (might already exist): %s", topic, err.Error())
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logrus.Infof("kafka producer connected to %s, topic %s", brokers, topic)
	return &kafkaProducer{writer: writer}
}

func (p *kafkaProducer) PublishScanEvent(ctx context.Context, event entity.ScanEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.ScanID),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

type noopProducer struct{}

func (n *noopProducer) PublishScanEvent(_ context.Context, event entity.ScanEvent) error {
	logrus.Debugf("scan event (kafka disabled): id=%s status=%s detections=%d",
		event.ScanID, event.Status, event.Detections)
	return nil
}

func (n *noopProducer) Close() error {
	return nil
}

package messaging

import (
	"context"
	"encoding/json"
	"time"

	"fusion/internal/domain/model"

	"github.com/segmentio/kafka-go"
)

type Logger interface {
	Errorf(format string, args ...interface{})
}

// 注文イベントをkafkaへ送る
// Asyncなので送信失敗はCompletionでログに出すだけ
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string, logger Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Errorf("kafka: failed to deliver %d message(s): %v", len(messages), err)
			}
		},
	}
	return &Producer{writer: writer}
}

func (p *Producer) PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error {
	return p.Publish(ctx, ev.OrderID, ev)
}

// 同じ注文のイベントは同じkey（パーティション）へ
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	msg, err := newMessage(key, event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func newMessage(key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}, nil
}

// KAFKA_BROKERS未設定のとき
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error { return nil }

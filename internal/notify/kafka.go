package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "mail_events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier hands mail off to the mailer service through a topic; the
// recipient is the message key so one inbox stays on one partition.
type KafkaNotifier struct {
	writer messageWriter
	links  Links
}

func NewKafkaNotifier(brokers []string, topic string, links Links) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaNotifier{writer: w, links: links}, nil
}

func (n *KafkaNotifier) SendActivation(ctx context.Context, to, token string) error {
	return n.publish(ctx, newActivationEvent(n.links, to, token))
}

func (n *KafkaNotifier) SendPasswordReset(ctx context.Context, to, token string) error {
	return n.publish(ctx, newPasswordResetEvent(n.links, to, token))
}

func (n *KafkaNotifier) publish(ctx context.Context, event MailEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.To),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

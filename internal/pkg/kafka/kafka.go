package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is the broker-neutral shape the outbox relay publishes.
type Message struct {
	Topic string
	Key   string
	Value []byte
}

// Publisher writes messages to Kafka. The topic is taken from each message.
type Publisher struct {
	writer *kafka.Writer
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewPublisher(brokers []string) *Publisher {
	return &Publisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *Publisher) Publish(ctx context.Context, msgs ...Message) error {
	out := make([]kafka.Message, 0, len(msgs))
	now := time.Now().UTC()
	for _, m := range msgs {
		out = append(out, kafka.Message{Topic: m.Topic, Key: []byte(m.Key), Value: m.Value, Time: now})
	}
	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("kafka: write %d messages: %w", len(out), err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

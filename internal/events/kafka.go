package events

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

// DefaultTopic carries publication events unless configured otherwise.
const DefaultTopic = "content.publications"

var _ Notifier = (*KafkaNotifier)(nil)

// KafkaNotifier produces events keyed by content id, so the events of a content stay ordered.
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaNotifier(brokers, topic string) (*KafkaNotifier, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}
	if topic == "" {
		topic = DefaultTopic
	}

	return &KafkaNotifier{producer: producer, topic: topic}, nil
}

func (k *KafkaNotifier) Notify(ctx context.Context, event Event) error {
	value, err := event.Marshal()
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.ContentID),
		Value:          value,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery report %v", e)
		}
		if msg.TopicPartition.Error != nil {
			return msg.TopicPartition.Error
		}
		logrus.Infof("%s event for %s delivered to %v", event.Kind, event.ContentID, msg.TopicPartition)
		return nil
	}
}

func (k *KafkaNotifier) Close() error {
	if remaining := k.producer.Flush(5000); remaining > 0 {
		logrus.Warnf("%d publication events not flushed", remaining)
	}
	k.producer.Close()
	return nil
}

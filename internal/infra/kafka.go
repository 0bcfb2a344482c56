// README: Kafka writer for order-submitted events consumed by the assignment process.
package infra

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter returns nil when no brokers are configured.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if len(brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

package services

import (
	"context"
	"log"

	"golang-cart-backend/pkg/messaging"
)

// Event types emitted by the cart engine. The host UI (or a test harness)
// subscribes through a NotificationSink; the engine never renders messages
// itself.
type CartEventType string

const (
	EventItemAdded       CartEventType = "item_added"
	EventItemUpdated     CartEventType = "item_updated"
	EventItemRemoved     CartEventType = "item_removed"
	EventCartCleared     CartEventType = "cart_cleared"
	EventCartSynced      CartEventType = "cart_synced"
	EventCouponApplied   CartEventType = "coupon_applied"
	EventCouponCleared   CartEventType = "coupon_cleared"
	EventPricesUpdated   CartEventType = "prices_updated"
	EventItemsPruned     CartEventType = "items_pruned"
	EventOperationFailed CartEventType = "operation_failed"
)

const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

type CartEvent struct {
	Type      CartEventType          `json:"type"`
	SessionID string                 `json:"session_id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NotificationSink renders semantic engine events to the user. Sinks must not
// fail the operation that emitted the event.
type NotificationSink interface {
	Notify(ctx context.Context, event CartEvent)
}

// kafkaNotificationSink publishes cart events to a Kafka topic keyed by
// session so per-session ordering is preserved.
type kafkaNotificationSink struct {
	producer *messaging.KafkaProducer
	brokers  []string
	topic    string
}

func NewKafkaNotificationSink(producer *messaging.KafkaProducer, brokers []string, topic string) NotificationSink {
	return &kafkaNotificationSink{
		producer: producer,
		brokers:  brokers,
		topic:    topic,
	}
}

func (s *kafkaNotificationSink) Notify(ctx context.Context, event CartEvent) {
	if err := s.producer.SendMessage(s.topic, s.brokers, event.SessionID, event); err != nil {
		log.Printf("Failed to publish cart event %s: %v", event.Type, err)
	}
}

// logNotificationSink is the fallback sink when Kafka is not configured.
type logNotificationSink struct{}

func NewLogNotificationSink() NotificationSink {
	return logNotificationSink{}
}

func (logNotificationSink) Notify(_ context.Context, event CartEvent) {
	log.Printf("[cart:%s] %s (%s): %s", event.SessionID, event.Type, event.Level, event.Message)
}

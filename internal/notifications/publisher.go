package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/familyjustice/orders-api/internal/services"
)

// PubSubOrderEventPublisher publishes order lifecycle events to the topic the
// notification service consumes to email served parties.
type PubSubOrderEventPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubOrderEventPublisher constructs a Pub/Sub backed event publisher.
func NewPubSubOrderEventPublisher(topic *pubsub.Topic) (*PubSubOrderEventPublisher, error) {
	if topic == nil {
		return nil, errors.New("order event publisher: topic is required")
	}
	return &PubSubOrderEventPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

type orderEventMessage struct {
	Type       string            `json:"type"`
	CaseID     string            `json:"caseId"`
	OrderID    string            `json:"orderId,omitempty"`
	OrderType  string            `json:"orderType,omitempty"`
	ActorName  string            `json:"actorName,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// PublishOrderEvent enqueues the event on the configured topic.
func (p *PubSubOrderEventPublisher) PublishOrderEvent(ctx context.Context, event services.OrderEvent) error {
	if p == nil || p.topic == nil {
		return errors.New("order event publisher: not initialised")
	}
	if strings.TrimSpace(event.Type) == "" {
		return errors.New("order event publisher: event type is required")
	}

	data, err := p.marshal(orderEventMessage{
		Type:       event.Type,
		CaseID:     event.CaseID,
		OrderID:    event.OrderID,
		OrderType:  string(event.OrderType),
		ActorName:  event.ActorName,
		OccurredAt: event.OccurredAt,
		Metadata:   event.Metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "eventType", event.Type)
	setAttr(attrs, "caseId", event.CaseID)
	setAttr(attrs, "orderId", event.OrderID)
	setAttr(attrs, "orderType", string(event.OrderType))

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func setAttr(attrs map[string]string, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}

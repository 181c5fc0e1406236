package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"vendora/internal/domain/entity"
)

// NotificationPublisher fans notifications out to a Pub/Sub topic so other
// services (mail, push) can react to them.
type NotificationPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

func NewNotificationPublisher(topic *pubsub.Topic) (*NotificationPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub notification publisher: topic is required")
	}
	return &NotificationPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

func (p *NotificationPublisher) PublishNotification(ctx context.Context, n *entity.Notification) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub notification publisher: not initialised")
	}

	data, err := p.marshal(n)
	if err != nil {
		return "", fmt.Errorf("marshal notification: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "notificationId", n.ID)
	setAttr(attrs, "userId", n.UserID)
	setAttr(attrs, "type", n.Type)
	setAttr(attrs, "relatedId", n.RelatedID)

	id, err := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish notification: %w", err)
	}
	return id, nil
}

func (p *NotificationPublisher) Stop() {
	if p != nil && p.topic != nil {
		p.topic.Stop()
	}
}

func setAttr(attrs map[string]string, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"discovery-api/models"
)

// EventPublisher fans created notifications out to other consumers.
type EventPublisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
	Close()
}

// NotificationCreatedEvent is the payload sent on notifications.<type>.
type NotificationCreatedEvent struct {
	EventType      string    `json:"event_type"`
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Priority       string    `json:"priority"`
	Title          string    `json:"title"`
	ProjectID      *string   `json:"project_id,omitempty"`
	DeliverableID  *string   `json:"deliverable_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type NatsPublisher struct {
	conn *nats.Conn
}

// NewNatsPublisher connects to natsURL.
func NewNatsPublisher(natsURL string) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("discovery-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) PublishNotification(_ context.Context, n models.Notification) error {
	event := NotificationCreatedEvent{
		EventType:      "notification.created",
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Priority:       string(n.Priority),
		Title:          n.Title,
		ProjectID:      n.ProjectID,
		DeliverableID:  n.DeliverableID,
		CreatedAt:      n.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	subject := "notifications." + string(n.Type)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *NatsPublisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			log.Printf("Warning: failed to drain NATS connection: %v", err)
		}
	}
}

// noopPublisher is used when NATS_URL is not configured.
type noopPublisher struct{}

func (noopPublisher) PublishNotification(context.Context, models.Notification) error { return nil }
func (noopPublisher) Close()                                                       {}

// NewEventPublisher returns a NATS publisher when natsURL is set and a no-op
// publisher otherwise. A failed connection is logged and degrades to no-op.
func NewEventPublisher(natsURL string) EventPublisher {
	if natsURL == "" {
		return noopPublisher{}
	}
	p, err := NewNatsPublisher(natsURL)
	if err != nil {
		log.Printf("Warning: failed to connect to NATS at %s, notification events disabled: %v", natsURL, err)
		return noopPublisher{}
	}
	log.Printf("Connected to NATS at %s", natsURL)
	return p
}

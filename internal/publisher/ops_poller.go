package publisher

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/yashgautam99/jewellry/internal/order"
)

// EventSource is the slice of the order repository the poller needs.
type EventSource interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*order.OpsEvent, error)
	MarkEventProcessed(ctx context.Context, id uuid.UUID) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OpsPoller drains the ops outbox to the operator topic. line_item_gap events
// are how line write failures reach a human without ever touching the
// customer-facing response. Delivery is at-least-once: an event is only
// marked processed after a successful publish.
type OpsPoller struct {
	tick   time.Duration
	repo   EventSource
	writer messageWriter
}

func NewOpsPoller(repo EventSource, brokers ...string) *OpsPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-ops",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OpsPoller{tick: time.Second, repo: repo, writer: w}
}

func (p *OpsPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OpsPoller) Close() {
	if w, ok := p.writer.(*kafka.Writer); ok {
		if err := w.Close(); err != nil {
			log.Printf("error closing kafka writer: %v", err)
		}
	}
}

func (p *OpsPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch ops events: %v", err)
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			log.Printf("failed to publish ops event id=%v: %v", event.ID, errPublish)
			continue
		}

		if errMark := p.repo.MarkEventProcessed(ctx, event.ID); errMark != nil {
			log.Printf("failed to mark ops event processed id=%v: %v", event.ID, errMark)
			continue
		}
	}
}

func (p *OpsPoller) publish(ctx context.Context, event *order.OpsEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()), // order_id for ordering
		Value: event.Payload,                  // already JSON from the database
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

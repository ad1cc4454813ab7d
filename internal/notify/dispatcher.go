package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"ridebooking/internal/domain/models"
)

const TopicBookingCreated = "booking.created"

// Dispatcher publishes booking lifecycle events for the notification worker.
type Dispatcher struct {
	Publisher message.Publisher
}

func NewDispatcher(pub message.Publisher) Dispatcher {
	return Dispatcher{Publisher: pub}
}

func (d Dispatcher) BookingCreated(ctx context.Context, b models.Booking) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode booking %s: %w", b.BookingID, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("booking_id", b.BookingID)
	msg.SetContext(ctx)

	if err := d.Publisher.Publish(TopicBookingCreated, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicBookingCreated, err)
	}
	return nil
}

// Nop drops every event. Used when NOTIFY_TRANSPORT=none.
type Nop struct{}

func (Nop) BookingCreated(context.Context, models.Booking) error { return nil }

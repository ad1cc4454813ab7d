package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.uber.org/zap"

	"ridebooking/internal/domain/models"
)

const (
	HandlerCustomerConfirmation = "customer_confirmation"
	HandlerStaffAlert           = "staff_alert"
)

type WorkerConfig struct {
	CompanyEmail    string
	MaxRetries      int
	InitialInterval time.Duration
}

// Worker consumes booking events and sends the customer and staff emails.
type Worker struct {
	cfg    WorkerConfig
	sender Sender
	log    *zap.Logger
}

func NewWorker(cfg WorkerConfig, sender Sender, log *zap.Logger) *Worker {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.CompanyEmail == "" {
		cfg.CompanyEmail = "bookings@zoomgorides.com"
	}
	return &Worker{cfg: cfg, sender: sender, log: log}
}

// NewRouter wires both email handlers onto the transport. Each handler gets
// its own consumer group so a booking produces both emails.
func (w *Worker) NewRouter(t *Transport, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		w.dropFailed,
		middleware.Retry{
			MaxRetries:      w.cfg.MaxRetries,
			InitialInterval: w.cfg.InitialInterval,
			Logger:          logger,
		}.Middleware,
		middleware.Recoverer,
	)

	handlers := map[string]func(models.Booking) (Email, error){
		HandlerCustomerConfirmation: CustomerConfirmation,
		HandlerStaffAlert: func(b models.Booking) (Email, error) {
			return StaffAlert(b, w.cfg.CompanyEmail)
		},
	}
	for name, render := range handlers {
		sub, err := t.Subscriber(name)
		if err != nil {
			return nil, err
		}
		router.AddNoPublisherHandler(name, TopicBookingCreated, sub, w.handle(render))
	}
	return router, nil
}

func (w *Worker) handle(render func(models.Booking) (Email, error)) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var b models.Booking
		if err := json.Unmarshal(msg.Payload, &b); err != nil {
			w.log.Error("undecodable booking event",
				zap.String("message_uuid", msg.UUID),
				zap.Error(err),
			)
			return nil
		}
		email, err := render(b)
		if err != nil {
			return err
		}
		ctx := msg.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return w.sender.Send(ctx, email)
	}
}

// dropFailed acks messages that still fail after retries. Email delivery is
// best effort and must not block the subscription.
func (w *Worker) dropFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			w.log.Error("notification dropped",
				zap.String("handler", message.HandlerNameFromCtx(msg.Context())),
				zap.String("booking_id", msg.Metadata.Get("booking_id")),
				zap.Error(err),
			)
			return nil, nil
		}
		return out, nil
	}
}

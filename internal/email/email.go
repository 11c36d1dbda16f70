package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/railbooking/railbooking/internal/kafka"
)

// Sender turns ticket events into passenger notifications. Delivery is
// a log line until a mail provider is wired in.
type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	subject, ok := Subject(event)
	if !ok {
		s.logger.DebugContext(ctx, "no notification for event", "type", event.Type)
		return nil
	}
	s.logger.InfoContext(ctx, "send notification",
		"user_id", event.UserID,
		"subject", subject,
		"pnr_no", event.PNR,
		"train_no", event.TrainNo,
	)
	return nil
}

// Subject returns the notification subject for passenger-facing events.
func Subject(event kafka.TicketEvent) (string, bool) {
	switch event.Type {
	case kafka.EventTicketBooked:
		return fmt.Sprintf("Ticket booked: PNR %d on train %d", event.PNR, event.TrainNo), true
	case kafka.EventTicketCancelled:
		return fmt.Sprintf("Ticket cancelled: PNR %d", event.PNR), true
	default:
		return "", false
	}
}

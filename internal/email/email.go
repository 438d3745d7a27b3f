package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/carebooking/internal/kafka"
	"go.uber.org/zap"
)

// Sender delivers patient notifications. It only logs; no mail transport is wired.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.AppointmentEvent) error {
	if event.PatientEmail == "" && event.PatientID == "" {
		return nil
	}
	s.logger.Info("send appointment email",
		zap.String("to", event.PatientEmail),
		zap.String("patient_id", event.PatientID),
		zap.String("subject", Subject(event)),
		zap.String("reference", event.Reference),
	)
	return nil
}

// Subject is the mail subject line for an event.
func Subject(event kafka.AppointmentEvent) string {
	switch event.Type {
	case kafka.EventPaymentFailed:
		return fmt.Sprintf("Payment for appointment %s did not go through", event.Reference)
	default:
		return fmt.Sprintf("Appointment %s with %s on %s at %s", event.Reference, event.DoctorName,
			event.SlotDate.Format("Mon, Jan 2"), event.SlotTime)
	}
}

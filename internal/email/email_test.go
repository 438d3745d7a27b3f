package email

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/carebooking/internal/kafka"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSender_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSender(zap.New(core))

	event := kafka.AppointmentEvent{
		Type:         kafka.EventAppointmentCreated,
		Reference:    "STMA-DRWH-20250303-042",
		PatientID:    "p1",
		PatientEmail: "jane@example.com",
		DoctorName:   "Dr. Who",
		SlotDate:     time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		SlotTime:     "09:30 AM",
	}
	assert.NoError(t, s.Send(context.Background(), event))
	assert.Equal(t, 1, logs.FilterMessage("send appointment email").Len())
}

func TestSender_SkipsAnonymous(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSender(zap.New(core))

	assert.NoError(t, s.Send(context.Background(), kafka.AppointmentEvent{Type: kafka.EventAppointmentCreated}))
	assert.Equal(t, 0, logs.Len())
}

func TestSubject(t *testing.T) {
	created := kafka.AppointmentEvent{
		Type:       kafka.EventAppointmentCreated,
		Reference:  "REF",
		DoctorName: "Dr. Who",
		SlotDate:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		SlotTime:   "09:30 AM",
	}
	assert.Equal(t, "Appointment REF with Dr. Who on Mon, Mar 3 at 09:30 AM", Subject(created))

	failed := kafka.AppointmentEvent{Type: kafka.EventPaymentFailed, Reference: "REF"}
	assert.Equal(t, "Payment for appointment REF did not go through", Subject(failed))
}

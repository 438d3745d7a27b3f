package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventAppointmentCreated = "appointment_created"
	EventPaymentFailed      = "payment_failed"
)

// AppointmentEvent is published after a submit. The notifications consumer
// mails the patient from it.
type AppointmentEvent struct {
	Type          string    `json:"type"`
	SessionID     string    `json:"session_id"`
	Reference     string    `json:"reference"`
	AppointmentID string    `json:"appointment_id"`
	PaymentID     string    `json:"payment_id,omitempty"`
	PatientID     string    `json:"patient_id"`
	PatientEmail  string    `json:"patient_email,omitempty"`
	HospitalName  string    `json:"hospital_name"`
	DoctorName    string    `json:"doctor_name"`
	SlotDate      time.Time `json:"slot_date"`
	SlotTime      string    `json:"slot_time"`
	PaymentMethod string    `json:"payment_method"`
	Error         string    `json:"error,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	brokers []string
	writer  messageWriter
	logger  *zap.Logger
}

func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return newProducer(brokers, writer, logger)
}

func newProducer(brokers []string, w messageWriter, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{brokers: brokers, writer: w, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.Debug("published to kafka", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	p.logger.Info("connected to kafka", zap.Int("partitions", len(partitions)))
	return nil
}

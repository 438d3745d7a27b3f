package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/Domenick1991/carebooking/internal/kafka"
	"github.com/Domenick1991/carebooking/internal/wizard"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("carebooking/internal/service/booking")

var (
	ErrSessionNotFound  = errors.New("booking session not found")
	ErrSlotUnavailable  = errors.New("slot is not available")
	ErrSubmitInProgress = errors.New("submit already in progress")
	ErrNoConfirmation   = errors.New("session has no confirmed appointment")
	ErrInvalidWeekShift = errors.New("week shift must not be zero")
	ErrSessionChanged   = errors.New("session changed while the appointment was being booked")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every field that blocks an operation.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate returns nil when s can be submitted.
func Validate(s wizard.Session) ValidationErrors {
	var errs ValidationErrors
	if s.Department == nil || s.Department.ID == "" {
		errs = append(errs, FieldError{Field: "department", Message: "please select a department"})
	}
	if s.Service == nil || s.Service.ID == "" {
		errs = append(errs, FieldError{Field: "service", Message: "please select a service"})
	}
	if s.Doctor == nil {
		errs = append(errs, FieldError{Field: "doctor", Message: "please select a doctor"})
	}
	if s.Slot == nil {
		errs = append(errs, FieldError{Field: "slot", Message: "please select a date and time"})
	}
	if strings.TrimSpace(s.ReasonForVisit) == "" {
		errs = append(errs, FieldError{Field: "reason_for_visit", Message: "please describe the reason for your visit"})
	}
	if !s.PaymentMethod.Valid() {
		errs = append(errs, FieldError{Field: "payment_method", Message: "unsupported payment method"})
	}
	return errs
}

// ReferenceCode builds HOSP-DOCT-YYYYMMDD-SEQ. It is for display and is not unique.
func ReferenceCode(hospitalName, doctorName string, date time.Time, seq int) string {
	dateCode := "00000000"
	if !date.IsZero() {
		dateCode = date.Format("20060102")
	}
	return fmt.Sprintf("%s-%s-%s-%03d", nameCode(hospitalName), nameCode(doctorName), dateCode, seq%1000)
}

func nameCode(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	code := b.String()
	return code + strings.Repeat("X", 4-len(code))
}

// Submit validates the session, resolves the patient and creates the
// appointment and, when due, the payment. A payment failure leaves the
// appointment standing.
func (s *BookingService) Submit(ctx context.Context, id string) (Wizard, error) {
	ctx, span := tracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(attribute.String("booking.session_id", id))

	w, err := s.store.Get(id)
	if err != nil {
		return Wizard{}, err
	}
	if w.Confirmation != nil && w.ConfirmedRevision == w.Session.Revision {
		return w, nil
	}
	if verrs := Validate(w.Session); len(verrs) > 0 {
		s.metrics.ObserveSubmission("invalid")
		return w, verrs
	}

	if s.lock != nil {
		ok, err := s.lock.AcquireSubmitLock(ctx, id, s.lockTTL)
		if err != nil {
			s.logger.Warn("submit lock unavailable, continuing without it", zap.String("session_id", id), zap.Error(err))
		} else if !ok {
			return w, ErrSubmitInProgress
		} else {
			defer func() {
				if err := s.lock.ReleaseSubmitLock(context.WithoutCancel(ctx), id); err != nil {
					s.logger.Warn("release submit lock", zap.String("session_id", id), zap.Error(err))
				}
			}()
		}
	}

	conf, err := s.submit(ctx, w)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return w, err
	}

	updated, err := s.store.Update(id, s.now(), func(cur *Wizard) error {
		if cur.Session.Revision != w.Session.Revision {
			return ErrSessionChanged
		}
		cur.Confirmation = conf
		cur.ConfirmedRevision = w.Session.Revision
		return nil
	})
	if errors.Is(err, ErrSessionChanged) {
		s.logger.Warn("session changed during submit, confirmation kept in the ledger only",
			zap.String("session_id", id),
			zap.String("appointment_id", conf.AppointmentID),
		)
		span.SetStatus(codes.Error, "session changed")
	}
	return updated, err
}

func (s *BookingService) submit(ctx context.Context, w Wizard) (*domain.Confirmation, error) {
	sess := w.Session

	patient, err := s.api.CurrentPatient(ctx)
	if err != nil {
		s.metrics.ObserveSubmission("patient_failed")
		return nil, &domain.ExternalCallError{Op: "resolve patient", Err: err}
	}
	if patient == nil || patient.ID == "" {
		s.metrics.ObserveSubmission("invalid")
		return nil, ValidationErrors{{Field: "patient", Message: "could not resolve the signed-in patient"}}
	}

	hospitalName, hospitalID := "", ""
	if sess.Hospital != nil {
		hospitalName, hospitalID = sess.Hospital.Name, sess.Hospital.ID
	}
	reference := ReferenceCode(hospitalName, sess.Doctor.Name, sess.Slot.Date, s.sequence())

	appointmentID, err := s.api.CreateAppointment(ctx, domain.AppointmentRequest{
		PatientID:     patient.ID,
		DoctorID:      sess.Doctor.ID,
		HospitalID:    hospitalID,
		DepartmentID:  sess.Department.ID,
		ServiceID:     sess.Service.ID,
		Date:          sess.Slot.Date.Format("2006-01-02"),
		Time:          sess.Slot.TimeLabel,
		Reason:        strings.TrimSpace(sess.ReasonForVisit),
		Notes:         sess.AdditionalNotes,
		HasInsurance:  sess.HasInsurance,
		PaymentMethod: sess.PaymentMethod,
		ReferenceCode: reference,
	})
	if err != nil {
		s.metrics.ObserveSubmission("appointment_failed")
		return nil, &domain.ExternalCallError{Op: "create appointment", Err: err}
	}

	conf := &domain.Confirmation{
		SessionID:     w.ID,
		Reference:     reference,
		AppointmentID: appointmentID,
		PatientID:     patient.ID,
		HospitalName:  hospitalName,
		DoctorName:    sess.Doctor.Name,
		SlotDate:      sess.Slot.Date,
		SlotTime:      sess.Slot.TimeLabel,
		PaymentMethod: sess.PaymentMethod,
		ConfirmedAt:   s.now(),
	}

	outcome := "success"
	if sess.Hospital.IsPrivate() && sess.PaymentMethod != domain.PaymentMethodPayOnSite {
		paymentID, err := s.api.CreatePayment(ctx, domain.PaymentRequest{
			AppointmentID: appointmentID,
			PatientID:     patient.ID,
			AmountCents:   s.feeCents,
			Currency:      s.currency,
			Method:        sess.PaymentMethod,
		})
		if err != nil {
			outcome = "payment_failed"
			s.metrics.ObservePaymentFailure()
			s.logger.Error("payment failed after appointment was created",
				zap.String("session_id", w.ID),
				zap.String("appointment_id", appointmentID),
				zap.String("reference", reference),
				zap.Error(err),
			)
			s.publish(ctx, kafka.EventPaymentFailed, conf, patient, err)
		} else {
			conf.PaymentID = paymentID
		}
	}
	s.metrics.ObserveSubmission(outcome)

	if s.ledger != nil {
		if err := s.ledger.Save(ctx, conf); err != nil {
			s.logger.Error("record confirmation", zap.String("appointment_id", appointmentID), zap.Error(err))
		}
	}
	s.publish(ctx, kafka.EventAppointmentCreated, conf, patient, nil)

	s.logger.Info("appointment booked",
		zap.String("session_id", w.ID),
		zap.String("appointment_id", appointmentID),
		zap.String("reference", reference),
	)
	return conf, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, conf *domain.Confirmation, patient *domain.Patient, cause error) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.AppointmentEvent{
		Type:          eventType,
		SessionID:     conf.SessionID,
		Reference:     conf.Reference,
		AppointmentID: conf.AppointmentID,
		PaymentID:     conf.PaymentID,
		PatientID:     conf.PatientID,
		PatientEmail:  patient.Email,
		HospitalName:  conf.HospitalName,
		DoctorName:    conf.DoctorName,
		SlotDate:      conf.SlotDate,
		SlotTime:      conf.SlotTime,
		PaymentMethod: string(conf.PaymentMethod),
		OccurredAt:    s.now(),
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if err := s.producer.Publish(ctx, s.topic, conf.AppointmentID, event); err != nil {
		s.logger.Warn("publish appointment event", zap.String("type", eventType), zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, conf.AppointmentID, event); err != nil {
			s.logger.Warn("publish notification event", zap.String("type", eventType), zap.Error(err))
		}
	}
}

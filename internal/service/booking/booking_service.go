package booking

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/Domenick1991/carebooking/internal/hospitalapi"
	"github.com/Domenick1991/carebooking/internal/metrics"
	"github.com/Domenick1991/carebooking/internal/repository"
	"github.com/Domenick1991/carebooking/internal/wizard"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	Start(ctx context.Context) (Wizard, error)
	Get(ctx context.Context, id string) (Wizard, error)
	SelectHospital(ctx context.Context, id string, h *domain.Hospital) (Wizard, error)
	SelectDepartment(ctx context.Context, id string, d *domain.Department) (Wizard, error)
	SelectService(ctx context.Context, id string, svc *domain.Service) (Wizard, error)
	SelectDoctor(ctx context.Context, id string, doc *domain.Doctor) (Wizard, error)
	SelectSlot(ctx context.Context, id string, dayIndex int, timeLabel string) (Wizard, error)
	ClearSlot(ctx context.Context, id string) (Wizard, error)
	UpdateDetails(ctx context.Context, id string, patch wizard.DetailsPatch) (Wizard, error)
	Reset(ctx context.Context, id string) (Wizard, error)
	ShiftWeek(ctx context.Context, id string, weeks int) (Wizard, error)
	Week(ctx context.Context, id string) (wizard.Week, error)
	Progress(ctx context.Context, id, location string, opts wizard.ProgressOptions) (Progress, error)
	Departments(ctx context.Context, id string) ([]domain.Department, error)
	Doctors(ctx context.Context, id string) ([]domain.Doctor, error)
	Submit(ctx context.Context, id string) (Wizard, error)
	Confirmation(ctx context.Context, id string) (*domain.Confirmation, error)
	Appointments(ctx context.Context) ([]domain.Confirmation, error)
	Finish(ctx context.Context, id string) (Wizard, error)
	Discard(ctx context.Context, id string) error
	SweepExpired(ctx context.Context) int
}

// Catalog feeds the department and doctor steps.
type Catalog interface {
	Departments(ctx context.Context, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Department], error)
	Doctors(ctx context.Context, departmentID, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Doctor], error)
}

// HospitalAPI is the remote side of a submit.
type HospitalAPI interface {
	CurrentPatient(ctx context.Context) (*domain.Patient, error)
	CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (string, error)
	CreatePayment(ctx context.Context, req domain.PaymentRequest) (string, error)
}

type SubmitLock interface {
	AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, sessionID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Progress is the header model for one location.
type Progress struct {
	Steps       []wizard.StepState `json:"steps"`
	ActiveIndex int                `json:"active_index"`
	Percent     int                `json:"percent"`
}

type BookingService struct {
	store              *Store
	catalog            Catalog
	api                HospitalAPI
	ledger             repository.ConfirmationRepository
	lock               SubmitLock
	producer           Producer
	topic              string
	notificationsTopic string
	metrics            *metrics.BookingMetrics
	logger             *zap.Logger

	sessionTTL time.Duration
	lockTTL    time.Duration
	feeCents   int64
	currency   string
	location   *time.Location
	now        func() time.Time
	sequence   func() int
	newID      func() string
}

type BookingServiceOption func(*BookingService)

func WithLedger(r repository.ConfirmationRepository) BookingServiceOption {
	return func(s *BookingService) { s.ledger = r }
}

func WithSubmitLock(l SubmitLock, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.lock = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithProducer(p Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = p
		s.topic = topic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithMetrics(m *metrics.BookingMetrics) BookingServiceOption {
	return func(s *BookingService) { s.metrics = m }
}

func WithLogger(l *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithSessionTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) { s.sessionTTL = ttl }
}

// WithFee sets what a private hospital charges at booking time.
func WithFee(cents int64, currency string) BookingServiceOption {
	return func(s *BookingService) {
		s.feeCents = cents
		s.currency = currency
	}
}

func WithLocation(loc *time.Location) BookingServiceOption {
	return func(s *BookingService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) { s.now = now }
}

// WithSequence replaces the random reference sequence source.
func WithSequence(seq func() int) BookingServiceOption {
	return func(s *BookingService) { s.sequence = seq }
}

func WithIDGenerator(gen func() string) BookingServiceOption {
	return func(s *BookingService) { s.newID = gen }
}

func NewBookingService(catalog Catalog, api HospitalAPI, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		catalog:    catalog,
		api:        api,
		logger:     zap.NewNop(),
		sessionTTL: 30 * time.Minute,
		lockTTL:    30 * time.Second,
		currency:   "USD",
		location:   time.UTC,
		now:        time.Now,
		sequence:   func() int { return rand.Intn(1000) },
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = NewStore(s.metrics.SetActiveSessions)
	return s
}

func (s *BookingService) currentWeek() time.Time {
	return wizard.WeekStart(s.now().In(s.location))
}

func (s *BookingService) Start(ctx context.Context) (Wizard, error) {
	now := s.now()
	w := Wizard{
		ID:        s.newID(),
		Session:   wizard.NewSession(),
		WeekStart: s.currentWeek(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.Put(w)
	s.logger.Debug("booking session started", zap.String("session_id", w.ID))
	return w, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (Wizard, error) {
	return s.store.Get(id)
}

// mutate applies fn and drops a confirmation that no longer describes the session.
func (s *BookingService) mutate(id string, fn func(*Wizard) error) (Wizard, error) {
	return s.store.Update(id, s.now(), func(w *Wizard) error {
		if err := fn(w); err != nil {
			return err
		}
		if w.Confirmation != nil && w.ConfirmedRevision != w.Session.Revision {
			w.Confirmation = nil
		}
		return nil
	})
}

func (s *BookingService) SelectHospital(ctx context.Context, id string, h *domain.Hospital) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		w.Session.SetHospital(h)
		w.Confirmation = nil
		return nil
	})
}

func (s *BookingService) SelectDepartment(ctx context.Context, id string, d *domain.Department) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		w.Session.SetDepartment(d)
		return nil
	})
}

func (s *BookingService) SelectService(ctx context.Context, id string, svc *domain.Service) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		w.Session.SetService(svc)
		return nil
	})
}

func (s *BookingService) SelectDoctor(ctx context.Context, id string, doc *domain.Doctor) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		w.Session.SetDoctor(doc)
		return nil
	})
}

// SelectSlot picks a slot from the currently viewed week. Unknown and
// unavailable slots are rejected with ErrSlotUnavailable.
func (s *BookingService) SelectSlot(ctx context.Context, id string, dayIndex int, timeLabel string) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		g, ok := wizard.BuildWeek(w.WeekStart).Find(dayIndex, timeLabel)
		if !ok || !g.IsAvailable {
			return ErrSlotUnavailable
		}
		w.Session.SetSlot(&wizard.Slot{
			DayIndex:    g.DayIndex,
			TimeLabel:   g.TimeLabel,
			Date:        g.Date,
			IsAvailable: true,
		})
		return nil
	})
}

func (s *BookingService) ClearSlot(ctx context.Context, id string) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		w.Session.SetSlot(nil)
		return nil
	})
}

func (s *BookingService) UpdateDetails(ctx context.Context, id string, patch wizard.DetailsPatch) (Wizard, error) {
	if patch.PaymentMethod != nil && !patch.PaymentMethod.Valid() {
		return Wizard{}, ValidationErrors{{Field: "payment_method", Message: "unsupported payment method"}}
	}
	return s.mutate(id, func(w *Wizard) error {
		w.Session.UpdateDetails(patch)
		return nil
	})
}

func (s *BookingService) Reset(ctx context.Context, id string) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		w.Session.Reset()
		w.Confirmation = nil
		return nil
	})
}

// ShiftWeek moves the viewed week and always clears the slot.
func (s *BookingService) ShiftWeek(ctx context.Context, id string, weeks int) (Wizard, error) {
	if weeks == 0 {
		return Wizard{}, ErrInvalidWeekShift
	}
	return s.mutate(id, func(w *Wizard) error {
		w.WeekStart = wizard.ShiftWeek(w.WeekStart, weeks)
		w.Session.SetSlot(nil)
		return nil
	})
}

func (s *BookingService) Week(ctx context.Context, id string) (wizard.Week, error) {
	w, err := s.store.Get(id)
	if err != nil {
		return wizard.Week{}, err
	}
	return wizard.BuildWeek(w.WeekStart), nil
}

func (s *BookingService) Progress(ctx context.Context, id, location string, opts wizard.ProgressOptions) (Progress, error) {
	w, err := s.store.Get(id)
	if err != nil {
		return Progress{}, err
	}
	states, active := wizard.DeriveSteps(location, w.Session)
	return Progress{
		Steps:       states,
		ActiveIndex: active,
		Percent:     wizard.ComputeProgress(states, opts),
	}, nil
}

// Departments lists the selected hospital's departments and drops a selected
// department that is no longer offered. Results for a session that changed
// during the fetch are returned but not reconciled, and so is a partial page.
func (s *BookingService) Departments(ctx context.Context, id string) ([]domain.Department, error) {
	w, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if w.Session.Hospital == nil {
		return []domain.Department{}, nil
	}

	page, err := s.catalog.Departments(ctx, w.Session.Hospital.ID, hospitalapi.PageRequest{})
	if err != nil {
		return nil, err
	}

	rev := w.Session.Revision
	_, err = s.mutate(id, func(cur *Wizard) error {
		if cur.Session.Revision != rev {
			s.logger.Debug("drop stale department list", zap.String("session_id", id))
			return nil
		}
		if !page.Complete() {
			return nil
		}
		cur.Session.ReconcileDepartments(page.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Doctors lists doctors for the selected department at the selected hospital.
func (s *BookingService) Doctors(ctx context.Context, id string) ([]domain.Doctor, error) {
	w, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if w.Session.Department == nil {
		return []domain.Doctor{}, nil
	}
	hospitalID := ""
	if w.Session.Hospital != nil {
		hospitalID = w.Session.Hospital.ID
	}

	page, err := s.catalog.Doctors(ctx, w.Session.Department.ID, hospitalID, hospitalapi.PageRequest{})
	if err != nil {
		return nil, err
	}

	rev := w.Session.Revision
	_, err = s.mutate(id, func(cur *Wizard) error {
		if cur.Session.Revision != rev {
			s.logger.Debug("drop stale doctor list", zap.String("session_id", id))
			return nil
		}
		if !page.Complete() {
			return nil
		}
		cur.Session.ReconcileDoctors(page.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Confirmation returns the session's confirmed appointment, falling back to
// the ledger once the in-memory record is gone.
func (s *BookingService) Confirmation(ctx context.Context, id string) (*domain.Confirmation, error) {
	w, err := s.store.Get(id)
	if err == nil && w.Confirmation != nil {
		return w.Confirmation, nil
	}
	if s.ledger == nil {
		if err != nil {
			return nil, err
		}
		return nil, ErrNoConfirmation
	}
	conf, lerr := s.ledger.GetBySession(ctx, id)
	if lerr != nil {
		if errors.Is(lerr, repository.ErrConfirmationNotFound) {
			return nil, ErrNoConfirmation
		}
		return nil, lerr
	}
	return conf, nil
}

// Appointments lists the signed-in patient's confirmed appointments.
func (s *BookingService) Appointments(ctx context.Context) ([]domain.Confirmation, error) {
	patient, err := s.api.CurrentPatient(ctx)
	if err != nil {
		return nil, &domain.ExternalCallError{Op: "resolve patient", Err: err}
	}
	if patient == nil || patient.ID == "" {
		return nil, ValidationErrors{{Field: "patient", Message: "could not resolve the signed-in patient"}}
	}
	if s.ledger == nil {
		return []domain.Confirmation{}, nil
	}
	return s.ledger.ListByPatient(ctx, patient.ID, 0)
}

// Finish leaves the success step: the session and the confirmation are cleared.
func (s *BookingService) Finish(ctx context.Context, id string) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		w.Session.Reset()
		w.Confirmation = nil
		w.WeekStart = s.currentWeek()
		return nil
	})
}

func (s *BookingService) Discard(ctx context.Context, id string) error {
	if !s.store.Delete(id) {
		return ErrSessionNotFound
	}
	return nil
}

// SweepExpired drops sessions idle longer than the session TTL.
func (s *BookingService) SweepExpired(ctx context.Context) int {
	if s.sessionTTL <= 0 {
		return 0
	}
	n := s.store.Sweep(s.now().Add(-s.sessionTTL))
	if n > 0 {
		s.logger.Info("expired idle booking sessions", zap.Int("count", n))
	}
	return n
}

var _ BookingUseCase = (*BookingService)(nil)

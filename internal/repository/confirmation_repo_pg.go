package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrConfirmationNotFound = errors.New("confirmation not found")

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ConfirmationRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, c *domain.Confirmation) error
	GetBySession(ctx context.Context, sessionID string) (*domain.Confirmation, error)
	ListByPatient(ctx context.Context, patientID string, limit int) ([]domain.Confirmation, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PGConfirmationRepository struct {
	db DB
}

func NewConfirmationRepository(db DB) ConfirmationRepository {
	return &PGConfirmationRepository{db: db}
}

const confirmationColumns = `session_id, reference, appointment_id, payment_id, patient_id, hospital_name, doctor_name, slot_date, slot_time, payment_method, confirmed_at`

func (r *PGConfirmationRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS appointment_confirmations (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		reference TEXT NOT NULL,
		appointment_id TEXT NOT NULL UNIQUE,
		payment_id TEXT NOT NULL DEFAULT '',
		patient_id TEXT NOT NULL,
		hospital_name TEXT NOT NULL,
		doctor_name TEXT NOT NULL,
		slot_date DATE NOT NULL,
		slot_time TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		confirmed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS appointment_confirmations_patient_idx ON appointment_confirmations (patient_id, confirmed_at DESC);
	CREATE INDEX IF NOT EXISTS appointment_confirmations_session_idx ON appointment_confirmations (session_id)`)
	return err
}

// Save records c. Saving the same appointment twice is a no-op.
func (r *PGConfirmationRepository) Save(ctx context.Context, c *domain.Confirmation) error {
	_, err := r.db.Exec(ctx, `INSERT INTO appointment_confirmations (`+confirmationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (appointment_id) DO NOTHING`,
		c.SessionID, c.Reference, c.AppointmentID, c.PaymentID, c.PatientID, c.HospitalName,
		c.DoctorName, c.SlotDate, c.SlotTime, string(c.PaymentMethod), c.ConfirmedAt)
	return err
}

func (r *PGConfirmationRepository) GetBySession(ctx context.Context, sessionID string) (*domain.Confirmation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+confirmationColumns+` FROM appointment_confirmations
		WHERE session_id=$1 ORDER BY confirmed_at DESC LIMIT 1`, sessionID)
	c, err := scanConfirmation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *PGConfirmationRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]domain.Confirmation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+confirmationColumns+` FROM appointment_confirmations
		WHERE patient_id=$1 ORDER BY confirmed_at DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Confirmation, 0)
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// PurgeBefore deletes confirmations recorded before cutoff and returns how many went.
func (r *PGConfirmationRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM appointment_confirmations WHERE confirmed_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanConfirmation(row pgx.Row) (*domain.Confirmation, error) {
	var (
		c      domain.Confirmation
		method string
	)
	if err := row.Scan(&c.SessionID, &c.Reference, &c.AppointmentID, &c.PaymentID, &c.PatientID,
		&c.HospitalName, &c.DoctorName, &c.SlotDate, &c.SlotTime, &method, &c.ConfirmedAt); err != nil {
		return nil, err
	}
	c.PaymentMethod = domain.PaymentMethod(method)
	return &c, nil
}

var _ ConfirmationRepository = (*PGConfirmationRepository)(nil)

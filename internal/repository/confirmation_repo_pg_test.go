package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"session_id", "reference", "appointment_id", "payment_id", "patient_id",
	"hospital_name", "doctor_name", "slot_date", "slot_time", "payment_method", "confirmed_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func sampleConfirmation() domain.Confirmation {
	return domain.Confirmation{
		SessionID:     "s1",
		Reference:     "STMA-DRWH-20250303-042",
		AppointmentID: "apt-1",
		PaymentID:     "pay-1",
		PatientID:     "p1",
		HospitalName:  "St. Mary",
		DoctorName:    "Dr. Who",
		SlotDate:      time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		SlotTime:      "09:30 AM",
		PaymentMethod: domain.PaymentMethodCard,
		ConfirmedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestConfirmationRepository_Save(t *testing.T) {
	mock := newMock(t)
	repo := NewConfirmationRepository(mock)
	c := sampleConfirmation()

	mock.ExpectExec("INSERT INTO appointment_confirmations").
		WithArgs(c.SessionID, c.Reference, c.AppointmentID, c.PaymentID, c.PatientID, c.HospitalName,
			c.DoctorName, c.SlotDate, c.SlotTime, "card", c.ConfirmedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Save(context.Background(), &c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmationRepository_GetBySession(t *testing.T) {
	mock := newMock(t)
	repo := NewConfirmationRepository(mock)
	c := sampleConfirmation()

	mock.ExpectQuery("SELECT .* FROM appointment_confirmations").
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows(columns).AddRow(c.SessionID, c.Reference, c.AppointmentID, c.PaymentID,
			c.PatientID, c.HospitalName, c.DoctorName, c.SlotDate, c.SlotTime, "card", c.ConfirmedAt))

	got, err := repo.GetBySession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, c, *got)

	mock.ExpectQuery("SELECT .* FROM appointment_confirmations").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetBySession(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrConfirmationNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmationRepository_ListByPatient(t *testing.T) {
	mock := newMock(t)
	repo := NewConfirmationRepository(mock)
	c := sampleConfirmation()

	mock.ExpectQuery("SELECT .* FROM appointment_confirmations").
		WithArgs("p1", 50).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(c.SessionID, c.Reference, c.AppointmentID, c.PaymentID, c.PatientID, c.HospitalName,
				c.DoctorName, c.SlotDate, c.SlotTime, "card", c.ConfirmedAt).
			AddRow("s2", "STMA-DRWH-20250304-001", "apt-2", "", "p1", "St. Mary", "Dr. Who",
				c.SlotDate.AddDate(0, 0, 1), "10:00 AM", "pay_on_site", c.ConfirmedAt))

	got, err := repo.ListByPatient(context.Background(), "p1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.PaymentMethodPayOnSite, got[1].PaymentMethod)
	assert.Empty(t, got[1].PaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmationRepository_PurgeBefore(t *testing.T) {
	mock := newMock(t)
	repo := NewConfirmationRepository(mock)
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM appointment_confirmations").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.PurgeBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmationRepository_EnsureSchema(t *testing.T) {
	mock := newMock(t)
	repo := NewConfirmationRepository(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS appointment_confirmations").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

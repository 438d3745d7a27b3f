package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodPayPal    PaymentMethod = "paypal"
	PaymentMethodPayOnSite PaymentMethod = "pay_on_site"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPayPal, PaymentMethodPayOnSite:
		return true
	}
	return false
}

type AppointmentRequest struct {
	PatientID     string        `json:"patient_id"`
	DoctorID      string        `json:"doctor_id"`
	HospitalID    string        `json:"hospital_id"`
	DepartmentID  string        `json:"department_id"`
	ServiceID     string        `json:"service_id"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	Reason        string        `json:"reason"`
	Notes         string        `json:"notes,omitempty"`
	HasInsurance  bool          `json:"has_insurance"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	ReferenceCode string        `json:"reference_code,omitempty"`
}

type PaymentRequest struct {
	AppointmentID string        `json:"appointment_id"`
	PatientID     string        `json:"patient_id"`
	AmountCents   int64         `json:"amount_cents"`
	Currency      string        `json:"currency"`
	Method        PaymentMethod `json:"method"`
}

// Confirmation is what the success step shows after a submit.
type Confirmation struct {
	SessionID     string        `json:"session_id"`
	Reference     string        `json:"reference"`
	AppointmentID string        `json:"appointment_id"`
	PaymentID     string        `json:"payment_id,omitempty"`
	PatientID     string        `json:"patient_id"`
	HospitalName  string        `json:"hospital_name"`
	DoctorName    string        `json:"doctor_name"`
	SlotDate      time.Time     `json:"slot_date"`
	SlotTime      string        `json:"slot_time"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	ConfirmedAt   time.Time     `json:"confirmed_at"`
}

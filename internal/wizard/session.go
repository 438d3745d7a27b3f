// Package wizard holds the appointment booking wizard state: the dependent
// selection chain, the week slot grid and the step/progress derivation.
package wizard

import (
	"time"

	"github.com/Domenick1991/carebooking/internal/domain"
)

// Slot is the time the patient picked in the currently viewed week.
type Slot struct {
	DayIndex    int       `json:"day_index"`
	TimeLabel   string    `json:"time_label"`
	Date        time.Time `json:"date"`
	IsAvailable bool      `json:"is_available"`
}

// DetailsPatch carries the visit-detail fields to merge. Nil fields are left alone.
type DetailsPatch struct {
	ReasonForVisit  *string               `json:"reason_for_visit,omitempty"`
	AdditionalNotes *string               `json:"additional_notes,omitempty"`
	HasInsurance    *bool                 `json:"has_insurance,omitempty"`
	PaymentMethod   *domain.PaymentMethod `json:"payment_method,omitempty"`
}

// Session is the booking record for one booking attempt.
//
// The selections form the chain hospital -> department -> service -> doctor -> slot.
// Every mutator replaces the whole record and clears the links after the one it sets,
// so a downstream selection never outlives a change upstream of it.
type Session struct {
	Hospital   *domain.Hospital   `json:"hospital"`
	Department *domain.Department `json:"department"`
	Service    *domain.Service    `json:"service"`
	Doctor     *domain.Doctor     `json:"doctor"`
	Slot       *Slot              `json:"slot"`

	ReasonForVisit  string               `json:"reason_for_visit"`
	AdditionalNotes string               `json:"additional_notes"`
	HasInsurance    bool                 `json:"has_insurance"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`

	// Revision increases on every mutation. Fetches compare it before applying results.
	Revision uint64 `json:"revision"`
}

// NewSession returns a session with initial values.
func NewSession() Session {
	return Session{
		HasInsurance:  true,
		PaymentMethod: domain.PaymentMethodCard,
	}
}

func (s *Session) replace(next Session) {
	next.Revision = s.Revision + 1
	*s = next
}

// SetHospital always starts over: the session is reset, visit details included,
// and then h is set. A nil h leaves the session empty.
func (s *Session) SetHospital(h *domain.Hospital) {
	next := NewSession()
	next.Hospital = cloneHospital(h)
	s.replace(next)
}

// SetDepartment sets d and clears the service, doctor and slot.
func (s *Session) SetDepartment(d *domain.Department) {
	next := *s
	next.Department = cloneDepartment(d)
	next.Service = nil
	next.Doctor = nil
	next.Slot = nil
	s.replace(next)
}

// SetService sets svc and clears the doctor and slot.
func (s *Session) SetService(svc *domain.Service) {
	next := *s
	if svc != nil {
		c := *svc
		next.Service = &c
	} else {
		next.Service = nil
	}
	next.Doctor = nil
	next.Slot = nil
	s.replace(next)
}

// SetDoctor sets doc and clears the slot.
func (s *Session) SetDoctor(doc *domain.Doctor) {
	next := *s
	if doc != nil {
		c := *doc
		next.Doctor = &c
	} else {
		next.Doctor = nil
	}
	next.Slot = nil
	s.replace(next)
}

// SetSlot is the last link of the chain and clears nothing.
func (s *Session) SetSlot(slot *Slot) {
	next := *s
	if slot != nil {
		c := *slot
		next.Slot = &c
	} else {
		next.Slot = nil
	}
	s.replace(next)
}

// UpdateDetails merges visit details without touching the chain.
func (s *Session) UpdateDetails(p DetailsPatch) {
	next := *s
	if p.ReasonForVisit != nil {
		next.ReasonForVisit = *p.ReasonForVisit
	}
	if p.AdditionalNotes != nil {
		next.AdditionalNotes = *p.AdditionalNotes
	}
	if p.HasInsurance != nil {
		next.HasInsurance = *p.HasInsurance
	}
	if p.PaymentMethod != nil {
		next.PaymentMethod = *p.PaymentMethod
	}
	s.replace(next)
}

// Reset returns the session to its initial values.
func (s *Session) Reset() {
	s.replace(NewSession())
}

// ReconcileDepartments clears the selected department when it is missing from
// a freshly fetched list. It reports whether anything was cleared.
func (s *Session) ReconcileDepartments(list []domain.Department) bool {
	if s.Department == nil {
		return false
	}
	for _, d := range list {
		if d.ID == s.Department.ID {
			return false
		}
	}
	s.SetDepartment(nil)
	return true
}

// ReconcileDoctors clears the selected doctor when it is missing from a freshly
// fetched list.
func (s *Session) ReconcileDoctors(list []domain.Doctor) bool {
	if s.Doctor == nil {
		return false
	}
	for _, d := range list {
		if d.ID == s.Doctor.ID {
			return false
		}
	}
	s.SetDoctor(nil)
	return true
}

// ReconcileSlot clears the selected slot unless the regenerated grid still has
// it as an available slot on the same date.
func (s *Session) ReconcileSlot(slots []GeneratedSlot) bool {
	if s.Slot == nil {
		return false
	}
	for _, g := range slots {
		if g.DayIndex == s.Slot.DayIndex && g.TimeLabel == s.Slot.TimeLabel &&
			g.Date.Equal(s.Slot.Date) && g.IsAvailable {
			return false
		}
	}
	s.SetSlot(nil)
	return true
}

// Clone returns a deep copy that shares no pointers with s.
func (s Session) Clone() Session {
	out := s
	out.Hospital = cloneHospital(s.Hospital)
	out.Department = cloneDepartment(s.Department)
	if s.Service != nil {
		c := *s.Service
		out.Service = &c
	}
	if s.Doctor != nil {
		c := *s.Doctor
		out.Doctor = &c
	}
	if s.Slot != nil {
		c := *s.Slot
		out.Slot = &c
	}
	return out
}

func cloneHospital(h *domain.Hospital) *domain.Hospital {
	if h == nil {
		return nil
	}
	c := *h
	if h.Specialities != nil {
		c.Specialities = append([]string(nil), h.Specialities...)
	}
	return &c
}

func cloneDepartment(d *domain.Department) *domain.Department {
	if d == nil {
		return nil
	}
	c := *d
	if d.Services != nil {
		c.Services = append([]domain.Service(nil), d.Services...)
	}
	return &c
}

package wizard

import (
	"math"
	"regexp"
	"strings"
)

type StepID string

const (
	StepHospital   StepID = "hospital"
	StepDepartment StepID = "department"
	StepDoctor     StepID = "doctor"
	StepSlot       StepID = "slot"
	StepConfirm    StepID = "confirm"
	StepSuccess    StepID = "success"
)

type StepStatus string

const (
	StepComplete StepStatus = "complete"
	StepCurrent  StepStatus = "current"
	StepPending  StepStatus = "pending"
)

// StepDefinition describes one wizard stage. Definitions are static.
type StepDefinition struct {
	ID          StepID
	Label       string
	Description string
	Icon        string

	location *regexp.Regexp
	complete func(Session) bool
}

// Matches reports whether location is this step's canonical page.
func (d StepDefinition) Matches(location string) bool {
	return d.location.MatchString(normalizeLocation(location))
}

// Completed evaluates the step's completion predicate.
func (d StepDefinition) Completed(s Session) bool {
	return d.complete(s)
}

var steps = []StepDefinition{
	{
		ID:          StepHospital,
		Label:       "Hospital",
		Description: "Choose a hospital",
		Icon:        "building",
		location:    regexp.MustCompile(`^/booking(/hospitals)?$`),
		complete:    func(s Session) bool { return s.Hospital != nil },
	},
	{
		ID:          StepDepartment,
		Label:       "Service",
		Description: "Choose a department and service",
		Icon:        "stethoscope",
		location:    regexp.MustCompile(`^/booking/hospitals/[^/]+/services$`),
		complete:    func(s Session) bool { return s.Department != nil },
	},
	{
		ID:          StepDoctor,
		Label:       "Doctor",
		Description: "Choose a doctor",
		Icon:        "user-doctor",
		location:    regexp.MustCompile(`^/booking/departments/[^/]+/doctors$`),
		complete:    func(s Session) bool { return s.Doctor != nil },
	},
	{
		ID:          StepSlot,
		Label:       "Date & time",
		Description: "Pick a time slot",
		Icon:        "calendar",
		location:    regexp.MustCompile(`^/booking/departments/[^/]+/slots$`),
		complete:    func(s Session) bool { return s.Slot != nil },
	},
	{
		ID:          StepConfirm,
		Label:       "Confirm",
		Description: "Review and submit",
		Icon:        "clipboard-check",
		location:    regexp.MustCompile(`^/booking/departments/[^/]+/confirm$`),
		complete:    func(s Session) bool { return s.Slot != nil },
	},
	{
		ID:          StepSuccess,
		Label:       "Done",
		Description: "Appointment booked",
		Icon:        "circle-check",
		location:    regexp.MustCompile(`^/booking/departments/[^/]+/success$`),
		complete:    func(Session) bool { return false }, // terminal, never checked off
	},
}

// Steps returns the ordered step catalog.
func Steps() []StepDefinition {
	out := make([]StepDefinition, len(steps))
	copy(out, steps)
	return out
}

// StepState is a step annotated for the header.
type StepState struct {
	ID          StepID     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Status      StepStatus `json:"status"`
}

// ActiveIndex returns the index of the first step whose page matches location,
// or 0 when none does.
func ActiveIndex(location string) int {
	loc := normalizeLocation(location)
	for i, d := range steps {
		if d.location.MatchString(loc) {
			return i
		}
	}
	return 0
}

// DeriveSteps annotates every step for the given location and session.
// A step before the active one counts as complete only if its predicate holds.
func DeriveSteps(location string, s Session) ([]StepState, int) {
	active := ActiveIndex(location)
	out := make([]StepState, len(steps))
	for i, d := range steps {
		status := StepPending
		switch {
		case i == active:
			status = StepCurrent
		case i < active && d.complete(s):
			status = StepComplete
		}
		out[i] = StepState{
			ID:          d.ID,
			Label:       d.Label,
			Description: d.Description,
			Icon:        d.Icon,
			Status:      status,
		}
	}
	return out, active
}

// ProgressOptions overrides the derived percentage.
type ProgressOptions struct {
	Override      *float64
	ForceComplete bool
}

// ComputeProgress returns the header percentage in [0,100]. Being inside the
// current step counts as half a step.
func ComputeProgress(states []StepState, opts ProgressOptions) int {
	if opts.ForceComplete {
		return 100
	}
	if opts.Override != nil {
		return clampPercent(*opts.Override)
	}
	if len(states) == 0 {
		return 0
	}
	completed := 0
	for _, st := range states {
		if st.Status == StepComplete {
			completed++
		}
	}
	raw := (float64(completed) + 0.5) / float64(len(states)) * 100
	return clampPercent(raw)
}

func clampPercent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func normalizeLocation(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	if len(location) > 1 {
		location = strings.TrimRight(location, "/")
	}
	return location
}

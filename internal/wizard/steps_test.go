package wizard

import (
	"testing"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestSteps_Catalog(t *testing.T) {
	got := Steps()
	require.Len(t, got, 6)
	ids := make([]StepID, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []StepID{StepHospital, StepDepartment, StepDoctor, StepSlot, StepConfirm, StepSuccess}, ids)
}

func TestActiveIndex(t *testing.T) {
	testCases := []struct {
		location string
		want     int
	}{
		{"/booking", 0},
		{"/booking/hospitals", 0},
		{"/booking/hospitals/", 0},
		{"/booking/hospitals/h1/services", 1},
		{"/booking/hospitals/h1/services?tab=2", 1},
		{"/booking/departments/d1/doctors", 2},
		{"/booking/departments/d1/slots", 3},
		{"/booking/departments/d1/confirm", 4},
		{"/booking/departments/d1/success/", 5},
		{"/admin/hospitals", 0},
		{"", 0},
		{"/booking/departments//doctors", 0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ActiveIndex(tc.location), tc.location)
	}
}

func TestStepDefinition_Completed(t *testing.T) {
	s := filledSession()
	for _, d := range Steps() {
		if d.ID == StepSuccess {
			assert.False(t, d.Completed(s))
			continue
		}
		assert.True(t, d.Completed(s), string(d.ID))
	}
	assert.True(t, Steps()[3].Matches("/booking/departments/x/slots"))
}

func TestDeriveSteps(t *testing.T) {
	s := NewSession()
	s.SetHospital(&domain.Hospital{ID: "h1"})

	states, active := DeriveSteps("/booking/departments/d1/doctors", s)
	require.Equal(t, 2, active)
	assert.Equal(t, StepComplete, states[0].Status)
	// department predicate does not hold, so it is not complete even though it is behind
	assert.Equal(t, StepPending, states[1].Status)
	assert.Equal(t, StepCurrent, states[2].Status)
	assert.Equal(t, StepPending, states[3].Status)
}

func TestDeriveSteps_SuccessNeverComplete(t *testing.T) {
	s := filledSession()
	states, active := DeriveSteps("/booking/departments/d1/success", s)
	require.Equal(t, 5, active)
	for i := 0; i < 5; i++ {
		assert.Equal(t, StepComplete, states[i].Status, "step %d", i)
	}
	assert.Equal(t, StepCurrent, states[5].Status)
	assert.Equal(t, 92, ComputeProgress(states, ProgressOptions{}))
}

func TestComputeProgress(t *testing.T) {
	empty := NewSession()
	states, active := DeriveSteps("/booking", empty)
	require.Equal(t, 0, active)
	assert.Equal(t, 8, ComputeProgress(states, ProgressOptions{}))

	withHospital := NewSession()
	withHospital.SetHospital(&domain.Hospital{ID: "h1"})
	states, active = DeriveSteps("/booking/hospitals/h1/services", withHospital)
	require.Equal(t, 1, active)
	assert.Equal(t, 25, ComputeProgress(states, ProgressOptions{}))

	assert.Equal(t, 100, ComputeProgress(states, ProgressOptions{ForceComplete: true}))
	assert.Equal(t, 100, ComputeProgress(nil, ProgressOptions{ForceComplete: true}))
	assert.Equal(t, 50, ComputeProgress(states, ProgressOptions{Override: floatPtr(50)}))
	assert.Equal(t, 50, ComputeProgress(nil, ProgressOptions{Override: floatPtr(50)}))
}

func TestComputeProgress_OverrideClamped(t *testing.T) {
	testCases := []struct {
		in   float64
		want int
	}{
		{-10, 0},
		{0, 0},
		{33.4, 33},
		{66.5, 67},
		{250, 100},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ComputeProgress(nil, ProgressOptions{Override: floatPtr(tc.in)}), "%v", tc.in)
	}
}

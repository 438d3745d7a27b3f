package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeLabels(t *testing.T) {
	labels := TimeLabels()
	require.Len(t, labels, 21)
	assert.Equal(t, "08:00 AM", labels[0])
	assert.Equal(t, "08:30 AM", labels[1])
	assert.Equal(t, "12:00 PM", labels[8])
	assert.Equal(t, "06:00 PM", labels[20])
}

func TestWeekStart(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	testCases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", time.Date(2026, 10, 12, 15, 4, 5, 0, time.UTC), time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
		{"friday", time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC), time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
		{"across month", time.Date(2026, 11, 1, 8, 0, 0, 0, loc), time.Date(2026, 10, 26, 0, 0, 0, 0, loc)},
		{"across year", time.Date(2027, 1, 2, 8, 0, 0, 0, time.UTC), time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(tc.in)
			assert.True(t, tc.want.Equal(got), "got %v want %v", got, tc.want)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestWeekStart_Idempotent(t *testing.T) {
	d := time.Date(2026, 1, 1, 13, 30, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		once := WeekStart(d)
		assert.True(t, once.Equal(WeekStart(once)), "date %v", d)
		assert.Equal(t, time.Monday, once.Weekday())
		assert.Zero(t, once.Hour())
		d = d.Add(23 * time.Hour)
	}
}

func TestWeekDaysAndShift(t *testing.T) {
	anchor := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	days := WeekDays(anchor)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, time.Sunday, days[6].Weekday())

	next := ShiftWeek(anchor, 1)
	assert.True(t, next.Equal(days[0].AddDate(0, 0, 7)))
	prev := ShiftWeek(anchor, -1)
	assert.True(t, prev.Equal(days[0].AddDate(0, 0, -7)))
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	days := WeekDays(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))
	first := GenerateSlots(TimeLabels(), days)
	second := GenerateSlots(TimeLabels(), days)

	require.Len(t, first, 7*21)
	assert.Equal(t, first, second)
	for _, s := range first {
		want := ((s.DayIndex+3)*(s.SlotIndex+5))%5 != 0
		assert.Equal(t, want, s.IsAvailable, "day %d slot %d", s.DayIndex, s.SlotIndex)
	}
}

func TestPeriodOf(t *testing.T) {
	testCases := []struct {
		label string
		want  Period
	}{
		{"08:00 AM", PeriodMorning},
		{"11:30 AM", PeriodMorning},
		{"12:00 PM", PeriodAfternoon},
		{"04:30 PM", PeriodAfternoon},
		{"05:00 PM", PeriodEvening},
		{"06:00 PM", PeriodEvening},
	}
	for _, tc := range testCases {
		got, ok := PeriodOf(tc.label)
		assert.True(t, ok, tc.label)
		assert.Equal(t, tc.want, got, tc.label)
	}

	_, ok := PeriodOf("noon")
	assert.False(t, ok)
}

func TestBuildWeek_Buckets(t *testing.T) {
	week := BuildWeek(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))
	require.Len(t, week.Days, 7)

	monday := week.Days[0]
	assert.Len(t, monday.Morning, 8)
	assert.Len(t, monday.Afternoon, 10)
	assert.Len(t, monday.Evening, 3)
	assert.True(t, monday.HasSlots)

	// (2+3) is a multiple of 5, so every Wednesday slot is taken.
	assert.False(t, week.Days[2].HasSlots)
	for _, d := range week.Days {
		if d.DayIndex != 2 {
			assert.True(t, d.HasSlots, "day %d", d.DayIndex)
		}
	}
}

func TestWeek_Find(t *testing.T) {
	week := BuildWeek(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))
	s, ok := week.Find(3, "10:00 AM")
	require.True(t, ok)
	assert.Equal(t, 4, s.SlotIndex)
	assert.True(t, s.Date.Equal(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)))

	_, ok = week.Find(3, "07:00 AM")
	assert.False(t, ok)
}

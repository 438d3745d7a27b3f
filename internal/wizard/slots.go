package wizard

import "time"

const (
	DaysPerWeek = 7

	dayStartHour   = 8
	dayEndHour     = 18
	slotStep       = 30 * time.Minute
	timeLabelShape = "03:04 PM"
)

type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// GeneratedSlot is a candidate time in the week grid. It is recomputed on
// demand and never stored as booking truth.
type GeneratedSlot struct {
	DayIndex    int       `json:"day_index"`
	SlotIndex   int       `json:"slot_index"`
	TimeLabel   string    `json:"time_label"`
	Date        time.Time `json:"date"`
	Period      Period    `json:"period,omitempty"`
	IsAvailable bool      `json:"is_available"`
}

// DaySlots groups one day of the grid for display.
type DaySlots struct {
	DayIndex  int             `json:"day_index"`
	Date      time.Time       `json:"date"`
	Morning   []GeneratedSlot `json:"morning"`
	Afternoon []GeneratedSlot `json:"afternoon"`
	Evening   []GeneratedSlot `json:"evening"`
	HasSlots  bool            `json:"has_slots"`
}

// Week is the slot grid for the week starting at Start.
type Week struct {
	Start time.Time       `json:"start"`
	Days  []DaySlots      `json:"days"`
	Slots []GeneratedSlot `json:"-"`
}

// TimeLabels returns the daily window 08:00 AM..06:00 PM in 30 minute steps.
func TimeLabels() []string {
	base := time.Date(2000, time.January, 1, dayStartHour, 0, 0, 0, time.UTC)
	end := time.Date(2000, time.January, 1, dayEndHour, 0, 0, 0, time.UTC)
	labels := make([]string, 0, 21)
	for t := base; !t.After(end); t = t.Add(slotStep) {
		labels = append(labels, t.Format(timeLabelShape))
	}
	return labels
}

// WeekStart returns midnight of the Monday of the ISO week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// ShiftWeek moves a week anchor by the given number of weeks.
func ShiftWeek(anchor time.Time, weeks int) time.Time {
	return WeekStart(anchor).AddDate(0, 0, 7*weeks)
}

// WeekDays returns the seven dates starting at the week of anchor.
func WeekDays(anchor time.Time) [DaysPerWeek]time.Time {
	start := WeekStart(anchor)
	var days [DaysPerWeek]time.Time
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// SlotAvailable is the placeholder availability oracle. It is arithmetic only and
// not backed by any booking ledger.
func SlotAvailable(dayIndex, slotIndex int) bool {
	return ((dayIndex+3)*(slotIndex+5))%5 != 0
}

// GenerateSlots builds the grid for every day and label, day-major.
func GenerateSlots(labels []string, days [DaysPerWeek]time.Time) []GeneratedSlot {
	slots := make([]GeneratedSlot, 0, len(labels)*DaysPerWeek)
	for d, date := range days {
		for s, label := range labels {
			p, _ := PeriodOf(label)
			slots = append(slots, GeneratedSlot{
				DayIndex:    d,
				SlotIndex:   s,
				TimeLabel:   label,
				Date:        date,
				Period:      p,
				IsAvailable: SlotAvailable(d, s),
			})
		}
	}
	return slots
}

// PeriodOf buckets a time label. ok is false for labels that do not parse.
func PeriodOf(label string) (Period, bool) {
	t, err := time.Parse(timeLabelShape, label)
	if err != nil {
		return "", false
	}
	switch h := t.Hour(); {
	case h < 12:
		return PeriodMorning, true
	case h < 17:
		return PeriodAfternoon, true
	default:
		return PeriodEvening, true
	}
}

// GroupWeek buckets slots per day. A day without a single available slot
// reports HasSlots=false.
func GroupWeek(slots []GeneratedSlot, days [DaysPerWeek]time.Time) []DaySlots {
	out := make([]DaySlots, DaysPerWeek)
	for i, date := range days {
		out[i] = DaySlots{DayIndex: i, Date: date}
	}
	for _, s := range slots {
		if s.DayIndex < 0 || s.DayIndex >= DaysPerWeek {
			continue
		}
		day := &out[s.DayIndex]
		switch s.Period {
		case PeriodMorning:
			day.Morning = append(day.Morning, s)
		case PeriodAfternoon:
			day.Afternoon = append(day.Afternoon, s)
		case PeriodEvening:
			day.Evening = append(day.Evening, s)
		default:
			continue
		}
		if s.IsAvailable {
			day.HasSlots = true
		}
	}
	return out
}

// BuildWeek generates and groups the grid for the week containing anchor.
func BuildWeek(anchor time.Time) Week {
	days := WeekDays(anchor)
	slots := GenerateSlots(TimeLabels(), days)
	return Week{
		Start: days[0],
		Days:  GroupWeek(slots, days),
		Slots: slots,
	}
}

// Find returns the generated slot for a day and label.
func (w Week) Find(dayIndex int, label string) (GeneratedSlot, bool) {
	for _, s := range w.Slots {
		if s.DayIndex == dayIndex && s.TimeLabel == label {
			return s, true
		}
	}
	return GeneratedSlot{}, false
}

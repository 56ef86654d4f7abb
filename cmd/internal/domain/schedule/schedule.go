package schedule

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// TimeSlots is the closed set of bookable half-hour bands.
var TimeSlots = []string{
	"09:00-09:30", "09:30-10:00",
	"10:00-10:30", "10:30-11:00",
	"11:00-11:30", "11:30-12:00",
	"14:00-14:30", "14:30-15:00",
	"15:00-15:30", "15:30-16:00",
	"16:00-16:30", "16:30-17:00",
}

var slotSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(TimeSlots))
	for _, s := range TimeSlots {
		m[s] = struct{}{}
	}
	return m
}()

// Slot is a booking band expressed in minutes since midnight.
type Slot struct {
	From int
	To   int
}

func ValidSlot(s string) bool {
	_, ok := slotSet[s]
	return ok
}

// ParseSlot only accepts members of TimeSlots.
func ParseSlot(s string) (Slot, bool) {
	if !ValidSlot(s) {
		return Slot{}, false
	}
	from, to, _ := strings.Cut(s, "-")
	f, err := ParseClock(from)
	if err != nil {
		return Slot{}, false
	}
	t, err := ParseClock(to)
	if err != nil {
		return Slot{}, false
	}
	return Slot{From: f, To: t}, true
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// SlotStart is the instant the slot begins on the given calendar date in loc.
func SlotStart(date time.Time, slot Slot, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), slot.From/60, slot.From%60, 0, 0, loc)
}

// Window is a doctor's weekly availability.
type Window struct {
	From int
	To   int
	Days []int
}

func NewWindow(from, to string, days []int) (Window, error) {
	f, err := ParseClock(from)
	if err != nil {
		return Window{}, err
	}
	t, err := ParseClock(to)
	if err != nil {
		return Window{}, err
	}
	if t <= f {
		return Window{}, fmt.Errorf("availability ends (%s) before it starts (%s)", to, from)
	}
	return Window{From: f, To: t, Days: days}, nil
}

// Admits reports whether the slot on date falls on an available weekday
// and entirely inside the daily hours.
func (w Window) Admits(date time.Time, slot Slot) bool {
	wd := int(date.Weekday())
	dayOK := false
	for _, d := range w.Days {
		if d == wd {
			dayOK = true
			break
		}
	}
	return dayOK && slot.From >= w.From && slot.To <= w.To
}

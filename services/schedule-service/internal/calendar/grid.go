// Package calendar materializes the appointment calendar grid: the ordered
// day cells for a view, the fixed half-hour time slots, and the per-cell and
// per-slot appointment subsets. Everything here is pure and total over valid
// inputs; fallible I/O lives behind the store interfaces.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// ParseView normalizes a raw view string; anything unrecognized falls back to
// the week view rather than failing the render path.
func ParseView(raw string) View {
	switch View(raw) {
	case ViewDay, ViewWeek, ViewMonth:
		return View(raw)
	default:
		return ViewWeek
	}
}

// DateLayout is the ISO calendar-date form used for cell identity and
// appointment binning. All date truncation happens in UTC.
const DateLayout = "2006-01-02"

// Cell is one rendered calendar date. Generated per render cycle, never
// persisted.
type Cell struct {
	Date      string `json:"date"`
	DayName   string `json:"day_name"`
	DayNumber int    `json:"day_number"`
}

// GenerateDays returns the ordered day cells for the given reference date and
// view. Day: the reference date itself. Week: seven cells starting at the
// Sunday on or before the reference date. Month: every date of the reference
// date's month. Always returns at least one cell.
func GenerateDays(ref time.Time, view View) []Cell {
	d := truncateDate(ref)

	switch view {
	case ViewDay:
		return []Cell{cellFor(d)}
	case ViewMonth:
		first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		var cells []Cell
		for cur := first; cur.Month() == first.Month(); cur = cur.AddDate(0, 0, 1) {
			cells = append(cells, cellFor(cur))
		}
		return cells
	default: // week
		sunday := d.AddDate(0, 0, -int(d.Weekday()))
		cells := make([]Cell, 0, 7)
		for i := 0; i < 7; i++ {
			cells = append(cells, cellFor(sunday.AddDate(0, 0, i)))
		}
		return cells
	}
}

// MonthLeadingBlanks returns the number of empty placeholder cells to prepend
// before the 1st of ref's month so a month grid aligns to a Sunday-first
// seven-column header.
func MonthLeadingBlanks(ref time.Time) int {
	d := truncateDate(ref)
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return int(first.Weekday())
}

// GenerateTimeSlots returns the fixed half-hour slot labels from 08:00 to
// 19:30 inclusive. Independent of the selected date.
func GenerateTimeSlots() []string {
	var slots []string
	for hour := 8; hour < 20; hour++ {
		for minute := 0; minute < 60; minute += 30 {
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return slots
}

// Advance shifts the reference date by one view-sized step in the given
// direction (-1 or +1). Month arithmetic follows AddDate normalization.
func Advance(ref time.Time, view View, dir int) time.Time {
	switch view {
	case ViewDay:
		return ref.AddDate(0, 0, dir)
	case ViewMonth:
		return ref.AddDate(0, dir, 0)
	default:
		return ref.AddDate(0, 0, 7*dir)
	}
}

// BinAppointments returns the appointments whose start time falls on cellDate
// (UTC date truncation, not interval containment), sorted ascending by start
// time. The sort is stable: equal start times keep their input order.
func BinAppointments(appts []model.Appointment, cellDate string) []model.Appointment {
	var day []model.Appointment
	for _, a := range appts {
		if a.StartTime.UTC().Format(DateLayout) == cellDate {
			day = append(day, a)
		}
	}
	sort.SliceStable(day, func(i, j int) bool {
		return day[i].StartTime.Before(day[j].StartTime)
	})
	return day
}

// BinByTimeSlot filters a day's appointments to those starting exactly at the
// slot's HH:MM. An appointment starting off the half-hour boundary matches no
// slot and is omitted from day/week grids; callers must not snap starts to
// the nearest slot.
func BinByTimeSlot(dayAppts []model.Appointment, slot string) []model.Appointment {
	var out []model.Appointment
	for _, a := range dayAppts {
		if a.StartTime.UTC().Format("15:04") == slot {
			out = append(out, a)
		}
	}
	return out
}

// Status color tokens, matching the scheme the frontend renders.
const (
	ColorCompleted = "#4ade80"
	ColorCancelled = "#f87171"
	ColorNoShow    = "#f97316"
	ColorDefault   = "#60a5fa"
)

// StatusColor maps an appointment status to its color token. Unknown values
// take the default (scheduled) color; there is no error case.
func StatusColor(status string) string {
	switch status {
	case model.StatusCompleted:
		return ColorCompleted
	case model.StatusCancelled:
		return ColorCancelled
	case model.StatusNoShow:
		return ColorNoShow
	default:
		return ColorDefault
	}
}

func cellFor(d time.Time) Cell {
	return Cell{
		Date:      d.Format(DateLayout),
		DayName:   d.Weekday().String()[:3],
		DayNumber: d.Day(),
	}
}

func truncateDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

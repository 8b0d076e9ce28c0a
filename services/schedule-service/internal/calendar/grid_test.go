package calendar

import (
	"testing"
	"time"

	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func appt(id string, start time.Time) model.Appointment {
	return model.Appointment{
		ID:        id,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    model.StatusScheduled,
	}
}

func TestGenerateDays_Day(t *testing.T) {
	cells := GenerateDays(date(2024, time.March, 4), ViewDay)
	if len(cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(cells))
	}
	if cells[0].Date != "2024-03-04" {
		t.Fatalf("expected 2024-03-04, got %s", cells[0].Date)
	}
	if cells[0].DayName != "Mon" {
		t.Fatalf("expected Mon, got %s", cells[0].DayName)
	}
	if cells[0].DayNumber != 4 {
		t.Fatalf("expected day number 4, got %d", cells[0].DayNumber)
	}
}

func TestGenerateDays_WeekStartsSunday(t *testing.T) {
	// 2024-03-04 is a Monday; its week starts Sunday 2024-03-03.
	cells := GenerateDays(date(2024, time.March, 4), ViewWeek)
	if len(cells) != 7 {
		t.Fatalf("expected 7 cells, got %d", len(cells))
	}
	if cells[0].Date != "2024-03-03" || cells[0].DayName != "Sun" {
		t.Fatalf("expected week to start Sunday 2024-03-03, got %s (%s)", cells[0].Date, cells[0].DayName)
	}
	if cells[6].Date != "2024-03-09" {
		t.Fatalf("expected week to end 2024-03-09, got %s", cells[6].Date)
	}

	// A Sunday reference is its own week start.
	cells = GenerateDays(date(2024, time.March, 3), ViewWeek)
	if cells[0].Date != "2024-03-03" {
		t.Fatalf("expected Sunday reference to start its own week, got %s", cells[0].Date)
	}
}

func TestGenerateDays_WeekCrossesMonthBoundary(t *testing.T) {
	// 2024-03-01 is a Friday; the week starts in February.
	cells := GenerateDays(date(2024, time.March, 1), ViewWeek)
	if cells[0].Date != "2024-02-25" {
		t.Fatalf("expected 2024-02-25, got %s", cells[0].Date)
	}
	if cells[6].Date != "2024-03-02" {
		t.Fatalf("expected 2024-03-02, got %s", cells[6].Date)
	}
}

func TestGenerateDays_MonthCoversAllDates(t *testing.T) {
	// 2024 is a leap year.
	cells := GenerateDays(date(2024, time.February, 15), ViewMonth)
	if len(cells) != 29 {
		t.Fatalf("expected 29 cells for Feb 2024, got %d", len(cells))
	}
	for i, c := range cells {
		if c.DayNumber != i+1 {
			t.Fatalf("cell %d: expected day number %d, got %d", i, i+1, c.DayNumber)
		}
	}
	if cells[0].Date != "2024-02-01" || cells[28].Date != "2024-02-29" {
		t.Fatalf("unexpected month bounds: %s .. %s", cells[0].Date, cells[28].Date)
	}
}

func TestGenerateDays_NonEmptyForAllViews(t *testing.T) {
	refs := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.December, 31),
		date(2023, time.February, 28),
		date(2000, time.February, 29),
	}
	for _, ref := range refs {
		for _, v := range []View{ViewDay, ViewWeek, ViewMonth} {
			cells := GenerateDays(ref, v)
			if len(cells) == 0 {
				t.Fatalf("GenerateDays(%s, %s) returned no cells", ref.Format(DateLayout), v)
			}
			if v == ViewDay && len(cells) != 1 {
				t.Fatalf("day view returned %d cells", len(cells))
			}
			if v == ViewWeek && len(cells) != 7 {
				t.Fatalf("week view returned %d cells", len(cells))
			}
		}
	}
}

func TestMonthLeadingBlanks(t *testing.T) {
	// March 2024 starts on a Friday.
	if got := MonthLeadingBlanks(date(2024, time.March, 15)); got != 5 {
		t.Fatalf("expected 5 leading blanks for March 2024, got %d", got)
	}
	// September 2024 starts on a Sunday.
	if got := MonthLeadingBlanks(date(2024, time.September, 10)); got != 0 {
		t.Fatalf("expected 0 leading blanks for September 2024, got %d", got)
	}
}

func TestGenerateTimeSlots(t *testing.T) {
	slots := GenerateTimeSlots()
	if len(slots) != 24 {
		t.Fatalf("expected 24 slots, got %d", len(slots))
	}
	if slots[0] != "08:00" {
		t.Fatalf("expected first slot 08:00, got %s", slots[0])
	}
	if slots[len(slots)-1] != "19:30" {
		t.Fatalf("expected last slot 19:30, got %s", slots[len(slots)-1])
	}
	for i := 1; i < len(slots); i++ {
		prev, err := time.Parse("15:04", slots[i-1])
		if err != nil {
			t.Fatalf("bad slot %q: %v", slots[i-1], err)
		}
		cur, err := time.Parse("15:04", slots[i])
		if err != nil {
			t.Fatalf("bad slot %q: %v", slots[i], err)
		}
		if cur.Sub(prev) != 30*time.Minute {
			t.Fatalf("slots %s -> %s are not 30 minutes apart", slots[i-1], slots[i])
		}
	}
}

func TestAdvance(t *testing.T) {
	mon := date(2024, time.March, 4)

	if got := Advance(mon, ViewDay, 1); !got.Equal(date(2024, time.March, 5)) {
		t.Fatalf("day +1: got %s", got.Format(DateLayout))
	}
	if got := Advance(mon, ViewDay, -1); !got.Equal(date(2024, time.March, 3)) {
		t.Fatalf("day -1: got %s", got.Format(DateLayout))
	}

	// Week -1 from 2024-03-04 lands in the week whose Sunday is 2024-02-25.
	back := Advance(mon, ViewWeek, -1)
	if !back.Equal(date(2024, time.February, 26)) {
		t.Fatalf("week -1: got %s", back.Format(DateLayout))
	}
	week := GenerateDays(back, ViewWeek)
	if week[0].Date != "2024-02-25" {
		t.Fatalf("week -1: expected Sunday 2024-02-25, got %s", week[0].Date)
	}

	// Month arithmetic rolls over year boundaries.
	if got := Advance(date(2024, time.January, 15), ViewMonth, -1); !got.Equal(date(2023, time.December, 15)) {
		t.Fatalf("month -1 across year: got %s", got.Format(DateLayout))
	}
	if got := Advance(date(2024, time.December, 15), ViewMonth, 1); !got.Equal(date(2025, time.January, 15)) {
		t.Fatalf("month +1 across year: got %s", got.Format(DateLayout))
	}
}

func TestParseView_NormalizesUnknown(t *testing.T) {
	if got := ParseView("month"); got != ViewMonth {
		t.Fatalf("expected month, got %s", got)
	}
	if got := ParseView("fortnight"); got != ViewWeek {
		t.Fatalf("expected unknown view to normalize to week, got %s", got)
	}
	if got := ParseView(""); got != ViewWeek {
		t.Fatalf("expected empty view to normalize to week, got %s", got)
	}
}

func TestBinAppointments_FiltersAndSorts(t *testing.T) {
	day := date(2024, time.March, 4)
	appts := []model.Appointment{
		appt("late", day.Add(15*time.Hour)),
		appt("other-day", day.AddDate(0, 0, 1).Add(9*time.Hour)),
		appt("early", day.Add(9*time.Hour)),
	}

	got := BinAppointments(appts, "2024-03-04")
	if len(got) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(got))
	}
	if got[0].ID != "early" || got[1].ID != "late" {
		t.Fatalf("expected ascending start order, got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestBinAppointments_StableForEqualStarts(t *testing.T) {
	day := date(2024, time.March, 4)
	start := day.Add(9 * time.Hour)
	a := appt("a", start)
	a.EndTime = start.Add(30 * time.Minute)
	b := appt("b", start)
	b.EndTime = start.Add(15 * time.Minute)

	first := BinAppointments([]model.Appointment{a, b}, "2024-03-04")
	second := BinAppointments([]model.Appointment{a, b}, "2024-03-04")
	if len(first) != 2 || first[0].ID != "a" || first[1].ID != "b" {
		t.Fatalf("expected input order preserved for equal starts, got %+v", first)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatal("BinAppointments is not deterministic across runs")
		}
	}

	slot := BinByTimeSlot(first, "09:00")
	if len(slot) != 2 || slot[0].ID != "a" || slot[1].ID != "b" {
		t.Fatalf("expected both appointments under 09:00, got %+v", slot)
	}
}

func TestBinByTimeSlot_ExactMatchOnly(t *testing.T) {
	day := date(2024, time.March, 4)
	appts := []model.Appointment{
		appt("on-hour", day.Add(9*time.Hour)),
		appt("off-slot", day.Add(9*time.Hour+10*time.Minute)),
		appt("half-hour", day.Add(9*time.Hour+30*time.Minute)),
	}
	dayAppts := BinAppointments(appts, "2024-03-04")

	if got := BinByTimeSlot(dayAppts, "09:00"); len(got) != 1 || got[0].ID != "on-hour" {
		t.Fatalf("expected only on-hour under 09:00, got %+v", got)
	}
	if got := BinByTimeSlot(dayAppts, "09:30"); len(got) != 1 || got[0].ID != "half-hour" {
		t.Fatalf("expected only half-hour under 09:30, got %+v", got)
	}
	// 09:10 is not slot-aligned and must not appear anywhere.
	for _, slot := range GenerateTimeSlots() {
		for _, a := range BinByTimeSlot(dayAppts, slot) {
			if a.ID == "off-slot" {
				t.Fatalf("off-slot appointment leaked into slot %s", slot)
			}
		}
	}
}

func TestBinAppointments_NoDuplicatesAcrossCells(t *testing.T) {
	day := date(2024, time.March, 4)
	appts := []model.Appointment{
		appt("a", day.Add(9*time.Hour)),
		appt("b", day.AddDate(0, 0, 2).Add(10*time.Hour)),
	}

	seen := map[string]int{}
	for _, cell := range GenerateDays(day, ViewWeek) {
		for _, a := range BinAppointments(appts, cell.Date) {
			seen[a.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("appointment %s appeared in %d cells", id, n)
		}
	}
	if len(seen) != 2 {
		t.Fatalf("expected both appointments binned once, got %v", seen)
	}
}

func TestStatusColor(t *testing.T) {
	cases := map[string]string{
		model.StatusCompleted: ColorCompleted,
		model.StatusCancelled: ColorCancelled,
		model.StatusNoShow:    ColorNoShow,
		model.StatusScheduled: ColorDefault,
		"unrecognized-value":  ColorDefault,
		"":                    ColorDefault,
	}
	for status, want := range cases {
		if got := StatusColor(status); got != want {
			t.Fatalf("StatusColor(%q) = %s, want %s", status, got, want)
		}
	}
}

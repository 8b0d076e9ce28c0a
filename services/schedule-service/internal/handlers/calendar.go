package handlers

import (
	"net/http"
	"time"

	"github.com/shearbook/shearbook/services/schedule-service/internal/calendar"
	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
)

type calendarAppointment struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name"`
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`
	StatusColor string `json:"status_color"`
	Notes       string `json:"notes,omitempty"`
}

type calendarCell struct {
	calendar.Cell
	Appointments []calendarAppointment `json:"appointments"`
}

type calendarResponse struct {
	View          string         `json:"view"`
	Date          string         `json:"date"`
	Days          []calendarCell `json:"days"`
	TimeSlots     []string       `json:"time_slots"`
	LeadingBlanks int            `json:"leading_blanks"`
	PrevDate      string         `json:"prev_date"`
	NextDate      string         `json:"next_date"`
}

// Calendar renders the time grid for the caller's own book. Bad date
// or view parameters degrade to today and the week view rather than
// erroring; the grid is a navigation surface.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	view := calendar.ParseView(r.URL.Query().Get("view"))
	date, err := time.ParseInLocation(calendar.DateLayout, r.URL.Query().Get("date"), time.UTC)
	if err != nil {
		date = h.now().UTC().Truncate(24 * time.Hour)
	}

	days := calendar.GenerateDays(date, view)
	first, _ := time.ParseInLocation(calendar.DateLayout, days[0].Date, time.UTC)
	last, _ := time.ParseInLocation(calendar.DateLayout, days[len(days)-1].Date, time.UTC)

	appts, err := h.data.Appointments().List(r.Context(), store.AppointmentFilter{
		TenantID: id.TenantID,
		BarberID: id.ActorID,
		From:     first,
		To:       last.Add(24*time.Hour - time.Nanosecond),
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	resp := calendarResponse{
		View:      string(view),
		Date:      date.Format(calendar.DateLayout),
		Days:      make([]calendarCell, 0, len(days)),
		TimeSlots: calendar.GenerateTimeSlots(),
		PrevDate:  calendar.Advance(date, view, -1).Format(calendar.DateLayout),
		NextDate:  calendar.Advance(date, view, 1).Format(calendar.DateLayout),
	}
	if view == calendar.ViewMonth {
		resp.LeadingBlanks = calendar.MonthLeadingBlanks(date)
	}

	for _, day := range days {
		cell := calendarCell{Cell: day, Appointments: []calendarAppointment{}}
		for _, a := range calendar.BinAppointments(appts, day.Date) {
			cell.Appointments = append(cell.Appointments, toCalendarAppointment(a))
		}
		resp.Days = append(resp.Days, cell)
	}

	writeJSON(w, http.StatusOK, resp)
}

func toCalendarAppointment(a model.Appointment) calendarAppointment {
	return calendarAppointment{
		ID:          a.ID,
		ClientID:    a.ClientID,
		ClientName:  a.ClientName,
		ServiceID:   a.ServiceID,
		ServiceName: a.ServiceName,
		StartTime:   a.StartTime.UTC().Format(time.RFC3339),
		EndTime:     a.EndTime.UTC().Format(time.RFC3339),
		Status:      a.Status,
		StatusColor: calendar.StatusColor(a.Status),
		Notes:       a.Notes,
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shearbook/shearbook/libs/auth"
	"github.com/shearbook/shearbook/services/schedule-service/internal/identity"
	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store/memory"
)

var testNow = time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*Handler, *memory.DataSource) {
	t.Helper()
	ds := memory.New()
	ds.AddTenant(model.Tenant{ID: "shop-1", Name: "Shop One", Subdomain: "one", PrimaryColor: "#336699"})
	ds.AddService(model.Service{ID: "svc-1", TenantID: "shop-1", Name: "Haircut", DurationMins: 30, Price: 25})
	ds.AddClient(model.Client{ID: "client-1", FirstName: "John", LastName: "Smith", Email: "john@example.com"})

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	h := New(ds, logger, validator.New())
	h.now = func() time.Time { return testNow }
	return h, ds
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func barberRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(identity.ContextWith(req.Context(), identity.Identity{
		ActorID:  "barber-1",
		TenantID: "shop-1",
		Role:     identity.RoleBarber,
	}))
}

func seedAppointment(t *testing.T, ds *memory.DataSource, start time.Time, status string) model.Appointment {
	t.Helper()
	a, err := ds.Appointments().Create(context.Background(), store.NewAppointment{
		TenantID:  "shop-1",
		BarberID:  "barber-1",
		ClientID:  "client-1",
		ServiceID: "svc-1",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
	})
	if err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return a
}

func TestCalendarViewModel(t *testing.T) {
	h, ds := newTestHandler(t)
	seedAppointment(t, ds, time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), model.StatusScheduled)
	seedAppointment(t, ds, time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), model.StatusCompleted)

	rw := httptest.NewRecorder()
	h.Calendar(rw, barberRequest(http.MethodGet, "/api/v1/calendar?date=2024-03-04&view=week", ""))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}

	var resp calendarResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.View != "week" || resp.Date != "2024-03-04" {
		t.Fatalf("unexpected header fields: %+v", resp)
	}
	if len(resp.Days) != 7 || resp.Days[0].Date != "2024-03-03" {
		t.Fatalf("expected Sunday-started week, got %+v", resp.Days)
	}
	if len(resp.TimeSlots) != 24 || resp.TimeSlots[0] != "08:00" {
		t.Fatalf("unexpected slots: %v", resp.TimeSlots)
	}
	if resp.PrevDate != "2024-02-26" || resp.NextDate != "2024-03-11" {
		t.Fatalf("unexpected navigation dates: %s / %s", resp.PrevDate, resp.NextDate)
	}

	monday := resp.Days[1]
	if monday.Date != "2024-03-04" || len(monday.Appointments) != 2 {
		t.Fatalf("expected both appointments on Monday, got %+v", monday)
	}
	colors := map[string]string{}
	for _, a := range monday.Appointments {
		colors[a.Status] = a.StatusColor
	}
	if colors[model.StatusScheduled] != "#60a5fa" || colors[model.StatusCompleted] != "#4ade80" {
		t.Fatalf("unexpected status colors: %v", colors)
	}
	for _, day := range resp.Days {
		if day.Appointments == nil {
			t.Fatalf("day %s has null appointments", day.Date)
		}
	}
}

func TestCalendarDegradesBadParams(t *testing.T) {
	h, _ := newTestHandler(t)

	rw := httptest.NewRecorder()
	h.Calendar(rw, barberRequest(http.MethodGet, "/api/v1/calendar?date=not-a-date&view=fortnight", ""))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}

	var resp calendarResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.View != "week" {
		t.Fatalf("expected week fallback, got %s", resp.View)
	}
	if resp.Date != "2024-03-04" {
		t.Fatalf("expected today fallback, got %s", resp.Date)
	}
}

func TestCalendarMonthLeadingBlanks(t *testing.T) {
	h, _ := newTestHandler(t)

	rw := httptest.NewRecorder()
	h.Calendar(rw, barberRequest(http.MethodGet, "/api/v1/calendar?date=2024-03-15&view=month", ""))
	var resp calendarResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.LeadingBlanks != 5 {
		t.Fatalf("March 2024 starts Friday, expected 5 blanks, got %d", resp.LeadingBlanks)
	}
	if len(resp.Days) != 31 {
		t.Fatalf("expected 31 days, got %d", len(resp.Days))
	}
}

func TestCreateAppointment(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"client_id":"client-1","service_id":"svc-1","start_time":"2024-03-04T09:00:00Z"}`
	rw := httptest.NewRecorder()
	h.Appointments(rw, barberRequest(http.MethodPost, "/api/v1/appointments", body))
	if rw.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rw.Code, rw.Body.String())
	}

	var created calendarAppointment
	if err := json.Unmarshal(rw.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Status != model.StatusScheduled {
		t.Fatalf("unexpected created appointment: %+v", created)
	}
	// End derived from the 30 minute Haircut.
	if created.EndTime != "2024-03-04T09:30:00Z" {
		t.Fatalf("expected derived end, got %s", created.EndTime)
	}
	if created.ClientName != "John Smith" || created.ServiceName != "Haircut" {
		t.Fatalf("expected resolved names, got %+v", created)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing client", `{"service_id":"svc-1","start_time":"2024-03-04T09:00:00Z"}`, http.StatusUnprocessableEntity},
		{"bad status", `{"client_id":"client-1","service_id":"svc-1","start_time":"2024-03-04T09:00:00Z","status":"booked"}`, http.StatusUnprocessableEntity},
		{"unknown service", `{"client_id":"client-1","service_id":"svc-404","start_time":"2024-03-04T09:00:00Z"}`, http.StatusUnprocessableEntity},
		{"bad start", `{"client_id":"client-1","service_id":"svc-1","start_time":"tomorrow"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rw := httptest.NewRecorder()
		h.Appointments(rw, barberRequest(http.MethodPost, "/api/v1/appointments", tc.body))
		if rw.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.want, rw.Code, rw.Body.String())
		}
	}
}

func TestUpdateAndDeleteAppointment(t *testing.T) {
	h, ds := newTestHandler(t)
	a := seedAppointment(t, ds, time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), model.StatusScheduled)

	rw := httptest.NewRecorder()
	h.UpdateAppointment(rw, barberRequest(http.MethodPost, "/api/v1/appointments/update",
		`{"appointment_id":"`+a.ID+`","status":"completed"}`))
	if rw.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var updated calendarAppointment
	if err := json.Unmarshal(rw.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != model.StatusCompleted || updated.StatusColor != "#4ade80" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	rw = httptest.NewRecorder()
	h.UpdateAppointment(rw, barberRequest(http.MethodPost, "/api/v1/appointments/update",
		`{"appointment_id":"missing","status":"completed"}`))
	if rw.Code != http.StatusNotFound {
		t.Fatalf("update missing: expected 404, got %d", rw.Code)
	}

	rw = httptest.NewRecorder()
	h.DeleteAppointment(rw, barberRequest(http.MethodPost, "/api/v1/appointments/delete",
		`{"appointment_id":"`+a.ID+`"}`))
	if rw.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rw.Code)
	}

	rw = httptest.NewRecorder()
	h.DeleteAppointment(rw, barberRequest(http.MethodPost, "/api/v1/appointments/delete",
		`{"appointment_id":"`+a.ID+`"}`))
	if rw.Code != http.StatusNotFound {
		t.Fatalf("double delete: expected 404, got %d", rw.Code)
	}
}

func TestClientsListAndSearch(t *testing.T) {
	h, ds := newTestHandler(t)
	ds.AddClient(model.Client{ID: "client-2", FirstName: "Michael", LastName: "Johnson", Phone: "555-987-6543"})
	seedAppointment(t, ds, time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), model.StatusCompleted)

	rw := httptest.NewRecorder()
	h.Clients(rw, barberRequest(http.MethodGet, "/api/v1/clients", ""))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var resp struct {
		Clients []clientItem `json:"clients"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Clients) != 1 || resp.Clients[0].ID != "client-1" || resp.Clients[0].TotalVisits != 1 {
		t.Fatalf("unexpected roster: %+v", resp.Clients)
	}

	rw = httptest.NewRecorder()
	h.Clients(rw, barberRequest(http.MethodGet, "/api/v1/clients?q=nobody", ""))
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Clients) != 0 {
		t.Fatalf("expected empty search result, got %+v", resp.Clients)
	}

	rw = httptest.NewRecorder()
	h.Clients(rw, barberRequest(http.MethodGet, "/api/v1/clients?q=smith", ""))
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Clients) != 1 {
		t.Fatalf("expected match on last name, got %+v", resp.Clients)
	}
}

func TestClientHistory(t *testing.T) {
	h, ds := newTestHandler(t)
	seedAppointment(t, ds, time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC), model.StatusCompleted)
	seedAppointment(t, ds, time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), model.StatusScheduled)

	rw := httptest.NewRecorder()
	h.ClientHistory(rw, barberRequest(http.MethodGet, "/api/v1/clients/history?client_id=client-1", ""))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var resp struct {
		Appointments []calendarAppointment `json:"appointments"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Appointments) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(resp.Appointments))
	}
	if resp.Appointments[0].StartTime != "2024-03-04T09:00:00Z" {
		t.Fatalf("expected most recent first, got %s", resp.Appointments[0].StartTime)
	}

	rw = httptest.NewRecorder()
	h.ClientHistory(rw, barberRequest(http.MethodGet, "/api/v1/clients/history", ""))
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("missing client_id: expected 400, got %d", rw.Code)
	}
}

func TestTenantGetAndUpdate(t *testing.T) {
	h, _ := newTestHandler(t)

	rw := httptest.NewRecorder()
	h.Tenant(rw, barberRequest(http.MethodGet, "/api/v1/tenant", ""))
	if rw.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rw.Code)
	}

	rw = httptest.NewRecorder()
	h.Tenant(rw, barberRequest(http.MethodPut, "/api/v1/tenant",
		`{"name":"Fade Factory","subdomain":"fade-factory","primary_color":"#a1b2c3"}`))
	if rw.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var updated tenantPayload
	if err := json.Unmarshal(rw.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Name != "Fade Factory" || updated.Subdomain != "fade-factory" {
		t.Fatalf("unexpected tenant: %+v", updated)
	}

	rw = httptest.NewRecorder()
	h.Tenant(rw, barberRequest(http.MethodPut, "/api/v1/tenant",
		`{"name":"Fade Factory","subdomain":"fade-factory","primary_color":"not-a-color"}`))
	if rw.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad color: expected 422, got %d", rw.Code)
	}
}

func TestRevenue(t *testing.T) {
	h, ds := newTestHandler(t)
	seedAppointment(t, ds, testNow.AddDate(0, 0, -2), model.StatusCompleted)
	seedAppointment(t, ds, testNow.AddDate(0, 0, -2), model.StatusScheduled)
	// Outside the weekly window but inside the monthly one.
	seedAppointment(t, ds, testNow.AddDate(0, 0, -20), model.StatusCompleted)

	rw := httptest.NewRecorder()
	h.Revenue(rw, barberRequest(http.MethodGet, "/api/v1/analytics/revenue?range=week", ""))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var resp struct {
		Range   string `json:"range"`
		Summary struct {
			TotalRevenue          float64 `json:"total_revenue"`
			AppointmentsCompleted int     `json:"appointments_completed"`
			TopService            string  `json:"top_service"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Range != "week" || resp.Summary.AppointmentsCompleted != 1 || resp.Summary.TotalRevenue != 25 {
		t.Fatalf("unexpected weekly summary: %+v", resp)
	}

	rw = httptest.NewRecorder()
	h.Revenue(rw, barberRequest(http.MethodGet, "/api/v1/analytics/revenue?range=bogus", ""))
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Range != "month" || resp.Summary.AppointmentsCompleted != 2 || resp.Summary.TotalRevenue != 50 {
		t.Fatalf("unexpected monthly summary: %+v", resp)
	}
	if resp.Summary.TopService != "Haircut" {
		t.Fatalf("expected Haircut on top, got %q", resp.Summary.TopService)
	}
}

func TestMyAppointments(t *testing.T) {
	h, ds := newTestHandler(t)
	seedAppointment(t, ds, testNow.AddDate(0, 0, -3), model.StatusCompleted)
	upcoming := seedAppointment(t, ds, testNow.AddDate(0, 0, 2), model.StatusScheduled)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/my/appointments", nil)
	req = req.WithContext(identity.ContextWith(req.Context(), identity.Identity{
		ActorID:  "client-1",
		TenantID: "shop-1",
		Role:     identity.RoleClient,
	}))
	rw := httptest.NewRecorder()
	h.MyAppointments(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var resp struct {
		Appointments []calendarAppointment `json:"appointments"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Appointments) != 1 || resp.Appointments[0].ID != upcoming.ID {
		t.Fatalf("expected only the upcoming appointment, got %+v", resp.Appointments)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/my/appointments?include_past=true", nil)
	req = req.WithContext(identity.ContextWith(req.Context(), identity.Identity{
		ActorID: "client-1", TenantID: "shop-1", Role: identity.RoleClient,
	}))
	rw = httptest.NewRecorder()
	h.MyAppointments(rw, req)
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Appointments) != 2 {
		t.Fatalf("expected both appointments with include_past, got %d", len(resp.Appointments))
	}
}

func TestRoleEnforcementThroughRouter(t *testing.T) {
	h, _ := newTestHandler(t)

	const secret = "router-secret"
	mux := http.NewServeMux()
	h.Register(mux, identity.Middleware(secret, nil))

	now := time.Now().Unix()
	sign := func(sub, role string) string {
		token, err := auth.SignHS256(auth.Claims{
			Sub: sub, TenantID: "shop-1", Role: role, Iat: now, Exp: now + 3600,
		}, secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}
	barberToken := sign("barber-1", identity.RoleBarber)
	clientToken := sign("client-1", identity.RoleClient)

	do := func(token, target string) int {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rw := httptest.NewRecorder()
		mux.ServeHTTP(rw, req)
		return rw.Code
	}

	if code := do(barberToken, "/api/v1/calendar"); code != http.StatusOK {
		t.Fatalf("barber calendar: expected 200, got %d", code)
	}
	if code := do(clientToken, "/api/v1/calendar"); code != http.StatusForbidden {
		t.Fatalf("client calendar: expected 403, got %d", code)
	}
	if code := do("", "/api/v1/calendar"); code != http.StatusUnauthorized {
		t.Fatalf("anonymous calendar: expected 401, got %d", code)
	}
	if code := do(clientToken, "/api/v1/my/appointments"); code != http.StatusOK {
		t.Fatalf("client my appointments: expected 200, got %d", code)
	}
	if code := do(barberToken, "/api/v1/my/appointments"); code != http.StatusForbidden {
		t.Fatalf("barber my appointments: expected 403, got %d", code)
	}
}

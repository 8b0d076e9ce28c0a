package outbox

import (
	"encoding/json"
	"time"

	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

// Appointment lifecycle topics. The Kafka topic name equals EventType
// (event per topic).
const (
	EventAppointmentCreated = "schedule.appointment.created.v1"
	EventAppointmentUpdated = "schedule.appointment.updated.v1"
	EventAppointmentDeleted = "schedule.appointment.deleted.v1"
)

// Event is the envelope written to the outbox table inside the same
// transaction as the row change it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type appointmentPayload struct {
	AppointmentID string    `json:"appointment_id"`
	TenantID      string    `json:"tenant_id"`
	BarberID      string    `json:"barber_id"`
	ClientID      string    `json:"client_id"`
	ServiceID     string    `json:"service_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
}

// AppointmentEvent builds the envelope for one appointment change.
func AppointmentEvent(eventType string, a model.Appointment) (Event, error) {
	payload, err := json.Marshal(appointmentPayload{
		AppointmentID: a.ID,
		TenantID:      a.TenantID,
		BarberID:      a.BarberID,
		ClientID:      a.ClientID,
		ServiceID:     a.ServiceID,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        a.Status,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "appointment",
		AggregateID:   a.ID,
		EventType:     eventType,
		Payload:       payload,
	}, nil
}

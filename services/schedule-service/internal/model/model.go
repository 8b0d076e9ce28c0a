package model

import "time"

// Appointment statuses. Creation always starts at StatusScheduled; any status
// is reachable from any other via an explicit edit.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

// KnownStatus reports whether s is one of the enumerated appointment statuses.
func KnownStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID        string
	TenantID  string
	BarberID  string
	ClientID  string
	ServiceID string
	// Denormalized display fields resolved at read time.
	ClientName  string
	ServiceName string
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	Notes       string
	CreatedAt   time.Time
}

type Service struct {
	ID           string
	TenantID     string
	Name         string
	DurationMins int
	Price        float64
}

type Client struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	TotalVisits int
	LastVisit   string
	Notes       string
}

// Tenant holds the shop settings form fields.
type Tenant struct {
	ID           string
	Name         string
	Subdomain    string
	LogoURL      string
	PrimaryColor string
}

// Visit is a completed appointment joined with its service, the unit the
// revenue aggregation consumes.
type Visit struct {
	ServiceName string
	Price       float64
	StartTime   time.Time
}

// Package dto holds the JSON types exchanged between the server and its
// clients.
package dto

import "time"

const (
	AppointmentStatusPending   = "Pendiente"
	AppointmentStatusConfirmed = "Confirmada"
	AppointmentStatusCancelled = "Cancelada"
	AppointmentStatusCompleted = "Completada"
)

// AppointmentStatuses lists the statuses an appointment can move between.
var AppointmentStatuses = []string{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCancelled,
	AppointmentStatusCompleted,
}

// Services is the catalogue offered by the booking assistant.
var Services = []string{
	"Inteligencia Artificial",
	"Ventas Digitales",
	"Estrategia y Rendimiento de Negocio",
}

// ServiceGrantCap is appended to service names when offered to customers.
const ServiceGrantCap = "hasta 6.000€"

// Date and time layouts used on the wire and in the database.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID             int64      `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Email          string     `json:"email" db:"email"`
	Phone          string     `json:"phone" db:"phone"`
	Date           string     `json:"date" db:"appointment_date"`
	Time           string     `json:"time" db:"appointment_time"`
	Service        string     `json:"service" db:"service"`
	Status         string     `json:"status" db:"status"`
	ReminderSentAt *time.Time `json:"-" db:"reminder_sent_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// ValidAppointmentStatus reports whether s is a known appointment status.
func ValidAppointmentStatus(s string) bool {
	for _, st := range AppointmentStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func ValidService(s string) bool {
	for _, svc := range Services {
		if svc == s {
			return true
		}
	}
	return false
}

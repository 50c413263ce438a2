package integration

import (
	"fmt"
	"time"

	"github.com/BradenHooton/frontdesk/pkg/dto"
)

// TestCustomer generates unique customer details using timestamp
func TestCustomer(suffix string) (name, email string) {
	ts := time.Now().UnixNano()
	name = "Cliente " + suffix
	email = fmt.Sprintf("cliente-%d-%s@example.com", ts, suffix)
	return
}

// TestAppointment builds a pending booking daysAhead days from today.
func TestAppointment(suffix string, daysAhead int, slot string) *dto.Appointment {
	name, email := TestCustomer(suffix)
	return &dto.Appointment{
		Name:    name,
		Email:   email,
		Date:    time.Now().UTC().AddDate(0, 0, daysAhead).Format(dto.DateLayout),
		Time:    slot,
		Service: dto.Services[0],
		Status:  dto.AppointmentStatusPending,
	}
}

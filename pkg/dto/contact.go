package dto

import "time"

const (
	ContactStatusNew        = "Nuevo"
	ContactStatusInProgress = "En Proceso"
	ContactStatusCompleted  = "Completado"
)

var ContactStatuses = []string{ContactStatusNew, ContactStatusInProgress, ContactStatusCompleted}

// ContactSubmission is a message left through the public contact form.
type ContactSubmission struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Phone      string    `json:"phone" db:"phone"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	City       string    `json:"city" db:"city"`
	Province   string    `json:"province" db:"province"`
	Inquiry    string    `json:"inquiry" db:"inquiry"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func ValidContactStatus(s string) bool {
	for _, st := range ContactStatuses {
		if st == s {
			return true
		}
	}
	return false
}

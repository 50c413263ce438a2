package dashboard

import (
	"regexp"

	"github.com/BradenHooton/frontdesk/pkg/dto"
)

// PageSize is how many rows a dashboard table shows.
const PageSize = 10

// FilterAll disables the status filter.
const FilterAll = "all"

// Page is one slice of a filtered list.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Total      int
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Paginate returns page n (1-based) of items, clamping n into range.
func Paginate[T any](items []T, n, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}

	start := (n - 1) * size
	end := min(start+size, total)
	return Page[T]{
		Items:      items[start:end],
		Number:     n,
		TotalPages: pages,
		Total:      total,
	}
}

// FilterContacts keeps submissions in status; FilterAll or "" keeps everything.
func FilterContacts(contacts []*dto.ContactSubmission, status string) []*dto.ContactSubmission {
	if status == "" || status == FilterAll {
		return contacts
	}
	var out []*dto.ContactSubmission
	for _, c := range contacts {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// FilterAppointments keeps appointments in status; FilterAll or "" keeps everything.
func FilterAppointments(appointments []*dto.Appointment, status string) []*dto.Appointment {
	if status == "" || status == FilterAll {
		return appointments
	}
	var out []*dto.Appointment
	for _, a := range appointments {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

var nineDigits = regexp.MustCompile(`^(\d{3})(\d{3})(\d{3})$`)

// FormatPhone groups Spanish nine-digit numbers as "612 345 678".
func FormatPhone(phone string) string {
	if phone == "" {
		return "-"
	}
	return nineDigits.ReplaceAllString(phone, "$1 $2 $3")
}

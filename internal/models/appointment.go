package models

// AppointmentUpdate carries a partial update; nil fields are left untouched.
type AppointmentUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Date    *string
	Time    *string
	Service *string
	Status  *string
}

// DaySlots lists the free times of one bookable day.
type DaySlots struct {
	Date  string   `json:"date"`
	Label string   `json:"label"`
	Times []string `json:"times"`
}

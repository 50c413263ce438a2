package dto

// AppointmentAnalytics summarises bookings for the dashboard charts.
type AppointmentAnalytics struct {
	Total          int           `json:"total"`
	Monthly        int           `json:"monthly"`
	Today          int           `json:"today"`
	Upcoming       int           `json:"upcoming"`
	Recent         []Appointment `json:"recent"`
	ServiceLabels  []string      `json:"service_labels"`
	ServiceCounts  []int         `json:"service_counts"`
	TimelineLabels []string      `json:"timeline_labels"`
	TimelineCounts []int         `json:"timeline_counts"`
}

// InquiryAnalytics summarises contact form submissions.
type InquiryAnalytics struct {
	Total          int                 `json:"total"`
	Monthly        int                 `json:"monthly"`
	Open           int                 `json:"open"`
	Recent         []ContactSubmission `json:"recent"`
	StatusLabels   []string            `json:"status_labels"`
	StatusCounts   []int               `json:"status_counts"`
	ProvinceLabels []string            `json:"province_labels"`
	ProvinceCounts []int               `json:"province_counts"`
}

package dto

// Step is a position in the booking conversation.
type Step string

const (
	StepInitial          Step = "initial"
	StepCollectingName   Step = "collecting_name"
	StepCollectingEmail  Step = "collecting_email"
	StepCollectingPhone  Step = "collecting_phone"
	StepSelectingService Step = "selecting_service"
	StepSelectingDate    Step = "selecting_date"
	StepSelectingTime    Step = "selecting_time"
	StepConfirmation     Step = "confirmation"
	StepComplete         Step = "complete"
	StepCancelled        Step = "cancelled"
)

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	switch s {
	case StepInitial, StepCollectingName, StepCollectingEmail, StepCollectingPhone,
		StepSelectingService, StepSelectingDate, StepSelectingTime, StepConfirmation,
		StepComplete, StepCancelled:
		return true
	}
	return false
}

// BookingData is what the customer has told the assistant so far.
type BookingData struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Service       string `json:"service,omitempty"`
	Date          string `json:"date,omitempty"`
	FormattedDate string `json:"formatted_date,omitempty"`
	Time          string `json:"time,omitempty"`
}

// BookingState travels with every request and response; the server keeps
// no conversation state of its own.
type BookingState struct {
	Step Step        `json:"step"`
	Data BookingData `json:"data"`
}

// InFlow reports whether a booking is underway.
func (s *BookingState) InFlow() bool {
	if s == nil {
		return false
	}
	switch s.Step {
	case StepInitial, StepComplete, StepCancelled, "":
		return false
	}
	return true
}

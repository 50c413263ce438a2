package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/BradenHooton/frontdesk/internal/services"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
)

// Booker is the slice of the appointment service the assistant books through.
type Booker interface {
	AvailableSlots(ctx context.Context) ([]models.DaySlots, error)
	Create(ctx context.Context, a *dto.Appointment) (*dto.Appointment, error)
}

// Reply is one assistant turn.
type Reply struct {
	Response string
	State    dto.BookingState
}

const (
	msgEmpty        = "Por favor, escribe tu pregunta para poder ayudarte."
	msgInvalidIndex = "Por favor, selecciona un número válido de la lista."
	msgGenericError = "Lo siento, ha ocurrido un error. Por favor, inténtalo de nuevo."
	msgNoDates      = "Lo siento, no hay fechas disponibles en los próximos días."
	skipKeyword     = "saltar"
)

var bookingTriggers = []string{"cita", "reservar", "agendar", "appointment", "book"}

// Bot is the scripted assistant behind the website chat widget.
type Bot struct {
	booker Booker
	logger *slog.Logger
}

func New(booker Booker, logger *slog.Logger) *Bot {
	return &Bot{booker: booker, logger: logger}
}

// WantsBooking reports whether msg asks to start a booking.
func WantsBooking(msg string) bool {
	lower := strings.ToLower(msg)
	for _, t := range bookingTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Respond advances the conversation by one customer message. A nil or
// finished state starts over. Errors are only returned for failures the
// customer cannot fix by answering again.
func (b *Bot) Respond(ctx context.Context, message string, state *dto.BookingState) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return &Reply{Response: msgEmpty, State: dto.BookingState{Step: dto.StepInitial}}, nil
	}

	current := dto.BookingState{Step: dto.StepInitial}
	if state.InFlow() && state.Step.Valid() {
		current = *state
	}

	if current.Step == dto.StepInitial {
		if !WantsBooking(message) {
			return &Reply{Response: answerFAQ(message), State: current}, nil
		}
		current.Data = dto.BookingData{}
		current.Step = dto.StepCollectingName
		return b.reply(current, "¡Bienvenido al sistema de reservas!\n\n"+
			"Para ayudarte a agendar una cita, necesito algunos datos.\n\n"+
			"Por favor, introduce tu nombre completo:"), nil
	}

	return b.step(ctx, message, current)
}

func (b *Bot) reply(state dto.BookingState, text string) *Reply {
	return &Reply{Response: text, State: state}
}

func (b *Bot) step(ctx context.Context, msg string, st dto.BookingState) (*Reply, error) {
	switch st.Step {
	case dto.StepCollectingName:
		if !services.ValidName(msg) {
			return b.reply(st, "Por favor, ingresa un nombre válido usando solo letras."), nil
		}
		st.Data.Name = msg
		st.Step = dto.StepCollectingEmail
		return b.reply(st, fmt.Sprintf("Gracias %s.\n\n"+
			"Por favor, introduce tu correo electrónico para enviarte la confirmación de la cita:", msg)), nil

	case dto.StepCollectingEmail:
		if !services.ValidEmail(msg) {
			return b.reply(st, "Por favor, ingresa un correo electrónico válido."), nil
		}
		st.Data.Email = msg
		st.Step = dto.StepCollectingPhone
		return b.reply(st, "¿Podrías proporcionarme un número de teléfono para contactarte en caso necesario?\n"+
			"(Este campo es opcional, puedes escribir 'saltar' para continuar)"), nil

	case dto.StepCollectingPhone:
		if strings.EqualFold(msg, skipKeyword) {
			msg = ""
		} else if !services.ValidPhone(msg) {
			return b.reply(st, "Por favor, ingresa un número de teléfono español válido o escribe 'saltar'."), nil
		}
		st.Data.Phone = msg
		st.Step = dto.StepSelectingService
		return b.reply(st, serviceMenu()), nil

	case dto.StepSelectingService:
		i, ok := pickIndex(msg, len(dto.Services))
		if !ok {
			return b.reply(st, msgInvalidIndex), nil
		}
		st.Data.Service = dto.Services[i]
		return b.offerDates(ctx, st, fmt.Sprintf("Has seleccionado: %s (%s)\n\n", st.Data.Service, dto.ServiceGrantCap))

	case dto.StepSelectingDate:
		slots, err := b.booker.AvailableSlots(ctx)
		if err != nil {
			return nil, fmt.Errorf("load available slots: %w", err)
		}
		i, ok := pickIndex(msg, len(slots))
		if !ok {
			return b.reply(st, msgInvalidIndex), nil
		}
		day := slots[i]
		st.Data.Date = day.Date
		st.Data.FormattedDate = day.Label
		st.Step = dto.StepSelectingTime
		return b.reply(st, fmt.Sprintf("Has seleccionado el %s.\n\n"+
			"Estos son los horarios disponibles:\n%s\n\n"+
			"Por favor, selecciona el número del horario que prefieres:", day.Label, numbered(day.Times))), nil

	case dto.StepSelectingTime:
		times, err := b.timesFor(ctx, st.Data.Date)
		if err != nil {
			return nil, err
		}
		if times == nil {
			return b.offerDates(ctx, st, "Lo siento, ya no quedan horarios libres ese día.\n\n")
		}
		i, ok := pickIndex(msg, len(times))
		if !ok {
			return b.reply(st, msgInvalidIndex), nil
		}
		st.Data.Time = times[i]
		st.Step = dto.StepConfirmation
		return b.reply(st, summary(st.Data)), nil

	case dto.StepConfirmation:
		switch strings.ToLower(msg) {
		case "si", "sí", "yes":
			return b.confirm(ctx, st)
		case "no":
			return b.reply(dto.BookingState{Step: dto.StepCancelled}, "Entiendo, cancelaremos esta reserva.\n\n"+
				"¿Te gustaría comenzar una nueva reserva? Escribe 'cita' cuando quieras."), nil
		}
		return b.reply(st, "Por favor, responde 'sí' para confirmar o 'no' para cancelar."), nil
	}

	return b.reply(dto.BookingState{Step: dto.StepInitial}, msgGenericError), nil
}

func (b *Bot) offerDates(ctx context.Context, st dto.BookingState, prefix string) (*Reply, error) {
	slots, err := b.booker.AvailableSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load available slots: %w", err)
	}
	if len(slots) == 0 {
		return b.reply(dto.BookingState{Step: dto.StepCancelled}, prefix+msgNoDates), nil
	}

	labels := make([]string, len(slots))
	for i, s := range slots {
		labels[i] = s.Label
	}
	st.Step = dto.StepSelectingDate
	st.Data.Date, st.Data.FormattedDate, st.Data.Time = "", "", ""
	return b.reply(st, prefix+"Estas son las fechas disponibles:\n"+numbered(labels)+
		"\n\nPor favor, selecciona el número de la fecha que prefieres:"), nil
}

// timesFor returns the free times of date, or nil when the day is gone.
func (b *Bot) timesFor(ctx context.Context, date string) ([]string, error) {
	slots, err := b.booker.AvailableSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load available slots: %w", err)
	}
	for _, s := range slots {
		if s.Date == date {
			return s.Times, nil
		}
	}
	return nil, nil
}

func (b *Bot) confirm(ctx context.Context, st dto.BookingState) (*Reply, error) {
	created, err := b.booker.Create(ctx, &dto.Appointment{
		Name:    st.Data.Name,
		Email:   st.Data.Email,
		Phone:   st.Data.Phone,
		Date:    st.Data.Date,
		Time:    st.Data.Time,
		Service: st.Data.Service,
	})
	switch {
	case errors.Is(err, models.ErrSlotTaken):
		return b.offerDates(ctx, st, "Lo siento, ese horario acaba de reservarse.\n\n")
	case errors.Is(err, models.ErrBadRequest):
		b.logger.Warn("chat booking rejected", slog.Any("error", err))
		return b.reply(dto.BookingState{Step: dto.StepCancelled},
			"Lo siento, no hemos podido registrar la cita con esos datos. Escribe 'cita' para intentarlo de nuevo."), nil
	case err != nil:
		b.logger.Error("chat booking failed", slog.Any("error", err))
		return b.reply(st, "Lo siento, ha ocurrido un error al procesar tu cita.\n"+
			"Por favor, inténtalo de nuevo más tarde."), nil
	}

	b.logger.Info("appointment booked via chat",
		slog.Int64("appointment_id", created.ID),
		slog.String("email", pkglogger.SanitizedEmail(created.Email)))

	st.Step = dto.StepComplete
	return b.reply(st, "¡Tu cita ha sido confirmada!\n\n"+
		"Te hemos enviado un correo electrónico con los detalles.\n"+
		"También recibirás un recordatorio 24 horas antes de la cita.\n\n"+
		"¿Hay algo más en lo que pueda ayudarte?"), nil
}

func serviceMenu() string {
	var sb strings.Builder
	sb.WriteString("¿Qué servicio te interesa?\n\n")
	for i, s := range dto.Services {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, s, dto.ServiceGrantCap)
	}
	sb.WriteString("\nPor favor, selecciona el número del servicio deseado:")
	return sb.String()
}

func summary(d dto.BookingData) string {
	phone := d.Phone
	if phone == "" {
		phone = "No proporcionado"
	}
	return fmt.Sprintf("Resumen de tu cita:\n\n"+
		"Nombre: %s\nEmail: %s\nTeléfono: %s\nServicio: %s (%s)\nFecha: %s\nHora: %s\n\n"+
		"¿Los datos son correctos? (Responde 'sí' para confirmar o 'no' para cancelar)",
		d.Name, d.Email, phone, d.Service, dto.ServiceGrantCap, d.FormattedDate, d.Time)
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, it)
	}
	return strings.Join(lines, "\n")
}

// pickIndex parses a 1-based menu choice into a 0-based index.
func pickIndex(msg string, n int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(msg))
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}

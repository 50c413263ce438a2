package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
)

type ContactRepository interface {
	Create(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error)
	List(ctx context.Context) ([]*dto.ContactSubmission, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error)
	Summary(ctx context.Context, since time.Time) (*dto.InquiryAnalytics, error)
}

type ContactService struct {
	repo   ContactRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewContactService(repo ContactRepository, logger *slog.Logger) *ContactService {
	return &ContactService{repo: repo, logger: logger, now: time.Now}
}

// Submit stores a public contact form. Field problems come back as *ValidationError.
func (s *ContactService) Submit(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
	c.City = strings.TrimSpace(c.City)
	c.Province = strings.TrimSpace(c.Province)
	c.Inquiry = strings.TrimSpace(c.Inquiry)

	errs := fieldErrors{}
	if c.Name == "" {
		errs.add("name", "Este campo es obligatorio")
	}
	if c.Email == "" {
		errs.add("email", "Este campo es obligatorio")
	} else if !ValidEmail(c.Email) {
		errs.add("email", "Correo electrónico inválido")
	}
	if c.Phone == "" {
		errs.add("phone", "Este campo es obligatorio")
	} else if !ValidPhone(c.Phone) {
		errs.add("phone", "Número de teléfono inválido")
	}
	if c.PostalCode != "" && !postalCodeRegex.MatchString(c.PostalCode) {
		errs.add("postal_code", "Código postal inválido")
	}
	if c.Inquiry == "" {
		errs.add("inquiry", "Este campo es obligatorio")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	c.Status = dto.ContactStatusNew
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	s.logger.Info("contact submission received",
		slog.Int64("contact_id", created.ID),
		slog.String("email", pkglogger.SanitizedEmail(created.Email)))
	return created, nil
}

func (s *ContactService) List(ctx context.Context) ([]*dto.ContactSubmission, error) {
	return s.repo.List(ctx)
}

func (s *ContactService) UpdateStatus(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error) {
	if !dto.ValidContactStatus(status) {
		return nil, &ValidationError{Fields: map[string]string{"status": "Invalid status"}}
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// InquiryAnalytics summarises submissions, breaking down the last 30 days.
func (s *ContactService) InquiryAnalytics(ctx context.Context) (*dto.InquiryAnalytics, error) {
	return s.repo.Summary(ctx, s.now().AddDate(0, 0, -30))
}

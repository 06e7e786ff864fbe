package support

import (
	"context"
	"strings"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/repository"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
)

var (
	validStatus = map[string]bool{
		models.SupportOpen: true, models.SupportInProgress: true,
		models.SupportResolved: true, models.SupportClosed: true,
	}
	validPriority = map[string]bool{
		models.PriorityLow: true, models.PriorityMedium: true,
		models.PriorityHigh: true, models.PriorityUrgent: true,
	}
)

type CreateInput struct {
	Name     string `json:"customer_name"`
	Subject  string `json:"subject" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Priority string `json:"priority"`
}

// Filter: Status et Email sont exclusifs, Status l'emporte.
type Filter struct {
	Status string
	Email  string
}

type Service struct {
	repo repository.SupportRepository
	now  func() time.Time
}

func NewService(repo repository.SupportRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create enregistre une demande au nom du client connecté.
func (s *Service) Create(ctx context.Context, email string, in CreateInput) (*models.SupportQuery, error) {
	subject, message := strings.TrimSpace(in.Subject), strings.TrimSpace(in.Message)
	if subject == "" || message == "" {
		return nil, errs.Validation("sujet et message requis")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriority[priority] {
		return nil, errs.Validation("priorité inconnue: %q", priority)
	}

	now := s.now()
	q := models.SupportQuery{
		ID:            gocql.TimeUUID(),
		CustomerName:  strings.TrimSpace(in.Name),
		CustomerEmail: strings.ToLower(strings.TrimSpace(email)),
		Subject:       subject,
		Message:       message,
		Status:        models.SupportOpen,
		Priority:      priority,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, &q); err != nil {
		return nil, err
	}
	log.Info().Str("query_id", q.ID.String()).Str("priority", priority).Msg("✅ Demande support créée")
	return &q, nil
}

func (s *Service) ListForCustomer(ctx context.Context, email string) ([]models.SupportQuery, error) {
	return nonNil(s.repo.ListByEmail(ctx, strings.ToLower(email)))
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.SupportQuery, error) {
	switch {
	case f.Status != "":
		if !validStatus[f.Status] {
			return nil, errs.Validation("statut inconnu: %q", f.Status)
		}
		return nonNil(s.repo.ListByStatus(ctx, f.Status))
	case f.Email != "":
		return nonNil(s.repo.ListByEmail(ctx, strings.ToLower(f.Email)))
	default:
		return nonNil(s.repo.List(ctx))
	}
}

func (s *Service) Get(ctx context.Context, id gocql.UUID) (*models.SupportQuery, error) {
	return s.repo.Get(ctx, id)
}

// Update modifie statut, priorité et notes; passer à "resolved" date la résolution.
func (s *Service) Update(ctx context.Context, id gocql.UUID, in models.SupportUpdate) (*models.SupportQuery, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != "" {
		if !validStatus[in.Status] {
			return nil, errs.Validation("statut inconnu: %q", in.Status)
		}
		if in.Status == models.SupportResolved && q.Status != models.SupportResolved {
			now := s.now()
			q.ResolvedAt = &now
		}
		q.Status = in.Status
	}
	if in.Priority != "" {
		if !validPriority[in.Priority] {
			return nil, errs.Validation("priorité inconnue: %q", in.Priority)
		}
		q.Priority = in.Priority
	}
	if in.AdminNotes != nil {
		q.AdminNotes = *in.AdminNotes
	}
	q.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func nonNil(qs []models.SupportQuery, err error) ([]models.SupportQuery, error) {
	if qs == nil && err == nil {
		qs = []models.SupportQuery{}
	}
	return qs, err
}

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"calmme-backend-go/internal/cache"
	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/models"
)

const (
	psychologistsCacheKey = "psychologists:available"
	psychologistsCacheTTL = 10 * time.Minute
)

// ErrPsychologistNotFound is returned when no psychologist carries the
// given id.
var ErrPsychologistNotFound = errors.New("psychologist not found")

// consultationService implements the ConsultationService interface.
type consultationService struct {
	psychRepo    db.PsychologistRepository
	scheduleRepo db.ScheduleRepository
	apptRepo     db.AppointmentRepository
	consultRepo  db.ConsultationRepository
	userRepo     db.UserRepository
	cache        cache.Cache
	logger       *zap.Logger
	now          Clock
}

// NewConsultationService creates a new ConsultationService instance.
func NewConsultationService(
	psychRepo db.PsychologistRepository,
	scheduleRepo db.ScheduleRepository,
	apptRepo db.AppointmentRepository,
	consultRepo db.ConsultationRepository,
	userRepo db.UserRepository,
	c cache.Cache,
	logger *zap.Logger,
) ConsultationService {
	return &consultationService{
		psychRepo:    psychRepo,
		scheduleRepo: scheduleRepo,
		apptRepo:     apptRepo,
		consultRepo:  consultRepo,
		userRepo:     userRepo,
		cache:        c,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListPsychologists returns the available psychologists, name ascending,
// with profile pictures joined from their linked user documents. The list
// is served from cache when fresh.
func (s *consultationService) ListPsychologists(ctx context.Context) ([]*models.Psychologist, error) {
	if cached, err := s.cache.Get(ctx, psychologistsCacheKey); err == nil && cached != "" {
		var psychs []*models.Psychologist
		if err := json.Unmarshal([]byte(cached), &psychs); err == nil {
			return psychs, nil
		}
		s.logger.Warn("failed to decode cached psychologist list; refetching")
	}

	psychs, err := s.psychRepo.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list psychologists: %w", err)
	}

	for _, p := range psychs {
		s.joinProfilePicture(ctx, p)
	}

	if encoded, err := json.Marshal(psychs); err == nil {
		if err := s.cache.Set(ctx, psychologistsCacheKey, string(encoded), psychologistsCacheTTL); err != nil {
			s.logger.Warn("failed to cache psychologist list", zap.Error(err))
		}
	}
	return psychs, nil
}

// SearchPsychologists filters the directory by a case-insensitive substring
// match on name and specializations.
func (s *consultationService) SearchPsychologists(ctx context.Context, term string) ([]*models.Psychologist, error) {
	psychs, err := s.ListPsychologists(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return psychs, nil
	}

	matched := make([]*models.Psychologist, 0, len(psychs))
	for _, p := range psychs {
		if strings.Contains(strings.ToLower(p.Name), term) {
			matched = append(matched, p)
			continue
		}
		for _, spec := range p.Specialization {
			if strings.Contains(strings.ToLower(spec), term) {
				matched = append(matched, p)
				break
			}
		}
	}
	return matched, nil
}

// GetPsychologist returns one directory entry with its picture joined.
func (s *consultationService) GetPsychologist(ctx context.Context, psychologistID string) (*models.Psychologist, error) {
	psych, err := s.psychRepo.GetByID(ctx, psychologistID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPsychologistNotFound, psychologistID)
		}
		return nil, fmt.Errorf("failed to get psychologist '%s': %w", psychologistID, err)
	}
	s.joinProfilePicture(ctx, psych)
	return psych, nil
}

// joinProfilePicture copies the picture from the linked user document.
// A missing or unreadable user leaves the field empty.
func (s *consultationService) joinProfilePicture(ctx context.Context, p *models.Psychologist) {
	if p.UserID == "" {
		return
	}
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Warn("failed to join psychologist profile picture",
				zap.String("psychologistId", p.ID),
				zap.Error(err),
			)
		}
		return
	}
	p.ProfilePicture = user.ProfilePicture
}

// GetSchedules returns the weekly availability of a psychologist.
func (s *consultationService) GetSchedules(ctx context.Context, psychologistID string) ([]*models.Schedule, error) {
	schedules, err := s.scheduleRepo.ListByPsychologist(ctx, psychologistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules for psychologist '%s': %w", psychologistID, err)
	}
	return schedules, nil
}

// CreateAppointment books a slot. The appointment starts unpaid; billing
// settles it later.
func (s *consultationService) CreateAppointment(ctx context.Context, userID string, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	if _, err := s.psychRepo.GetByID(ctx, req.PsychologistID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPsychologistNotFound, req.PsychologistID)
		}
		return nil, fmt.Errorf("failed to get psychologist '%s': %w", req.PsychologistID, err)
	}

	now := s.now()
	appt := &models.Appointment{
		UserID:         userID,
		PsychologistID: req.PsychologistID,
		ScheduleDay:    req.ScheduleDay,
		TimeSlot:       req.TimeSlot,
		PaymentStatus:  models.AppointmentPaymentPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.apptRepo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment for user '%s': %w", userID, err)
	}
	return appt, nil
}

// CreateConsultation opens a consultation record in the pending state.
func (s *consultationService) CreateConsultation(ctx context.Context, userID string, req models.CreateConsultationRequest) (*models.Consultation, error) {
	if _, err := s.psychRepo.GetByID(ctx, req.PsychologistID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPsychologistNotFound, req.PsychologistID)
		}
		return nil, fmt.Errorf("failed to get psychologist '%s': %w", req.PsychologistID, err)
	}

	now := s.now()
	consultation := &models.Consultation{
		UserID:         userID,
		PsychologistID: req.PsychologistID,
		Status:         models.ConsultationPending,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.consultRepo.Create(ctx, consultation); err != nil {
		return nil, fmt.Errorf("failed to create consultation for user '%s': %w", userID, err)
	}
	return consultation, nil
}

// ListUserConsultations returns the user's consultation records.
func (s *consultationService) ListUserConsultations(ctx context.Context, userID string) ([]*models.Consultation, error) {
	consultations, err := s.consultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations for user '%s': %w", userID, err)
	}
	return consultations, nil
}

// UpdateConsultationStatus moves a consultation to a new status. Statuses
// are validated at the binding layer.
func (s *consultationService) UpdateConsultationStatus(ctx context.Context, consultationID, status string) error {
	if err := s.consultRepo.UpdateStatus(ctx, consultationID, status, s.now()); err != nil {
		return fmt.Errorf("failed to update consultation '%s': %w", consultationID, err)
	}
	return nil
}

package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calmme-backend-go/internal/models"
)

const (
	psychologistsCollection = "psychologists"
	schedulesCollection     = "schedules"
	consultationsCollection = "consultations"
)

// firestorePsychologistRepository implements PsychologistRepository.
type firestorePsychologistRepository struct {
	client *firestore.Client
}

// NewFirestorePsychologistRepository creates a new psychologist repository.
func NewFirestorePsychologistRepository(client *firestore.Client) PsychologistRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PsychologistRepository.")
	}
	return &firestorePsychologistRepository{client: client}
}

// ListAvailable returns available psychologists ordered by name ascending.
func (r *firestorePsychologistRepository) ListAvailable(ctx context.Context) ([]*models.Psychologist, error) {
	iter := r.client.Collection(psychologistsCollection).
		Where("isAvailable", "==", true).
		OrderBy("name", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var psychologists []*models.Psychologist
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate psychologists: %w", err)
		}
		var p models.Psychologist
		if err := docSnap.DataTo(&p); err != nil {
			return nil, fmt.Errorf("failed to decode psychologist document '%s': %w", docSnap.Ref.ID, err)
		}
		p.ID = docSnap.Ref.ID
		psychologists = append(psychologists, &p)
	}
	return psychologists, nil
}

// GetByID retrieves one psychologist document.
func (r *firestorePsychologistRepository) GetByID(ctx context.Context, psychologistID string) (*models.Psychologist, error) {
	if psychologistID == "" {
		return nil, errors.New("psychologistID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(psychologistsCollection).Doc(psychologistID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("psychologist with ID '%s' not found: %w", psychologistID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get psychologist with ID '%s': %w", psychologistID, err)
	}
	var p models.Psychologist
	if err := docSnap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode psychologist data for ID '%s': %w", psychologistID, err)
	}
	p.ID = docSnap.Ref.ID
	return &p, nil
}

// firestoreScheduleRepository implements ScheduleRepository.
type firestoreScheduleRepository struct {
	client *firestore.Client
}

// NewFirestoreScheduleRepository creates a new schedule repository.
func NewFirestoreScheduleRepository(client *firestore.Client) ScheduleRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ScheduleRepository.")
	}
	return &firestoreScheduleRepository{client: client}
}

// ListByPsychologist returns the weekly schedules of one psychologist.
func (r *firestoreScheduleRepository) ListByPsychologist(ctx context.Context, psychologistID string) ([]*models.Schedule, error) {
	if psychologistID == "" {
		return nil, errors.New("psychologistID cannot be empty for ListByPsychologist operation")
	}
	iter := r.client.Collection(schedulesCollection).
		Where("psychologistId", "==", psychologistID).
		Documents(ctx)
	defer iter.Stop()

	var schedules []*models.Schedule
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate schedules for psychologist '%s': %w", psychologistID, err)
		}
		var s models.Schedule
		if err := docSnap.DataTo(&s); err != nil {
			return nil, fmt.Errorf("failed to decode schedule document '%s': %w", docSnap.Ref.ID, err)
		}
		s.ID = docSnap.Ref.ID
		schedules = append(schedules, &s)
	}
	return schedules, nil
}

// firestoreConsultationRepository implements ConsultationRepository.
type firestoreConsultationRepository struct {
	client *firestore.Client
}

// NewFirestoreConsultationRepository creates a new consultation repository.
func NewFirestoreConsultationRepository(client *firestore.Client) ConsultationRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ConsultationRepository.")
	}
	return &firestoreConsultationRepository{client: client}
}

// Create inserts a new consultation record.
func (r *firestoreConsultationRepository) Create(ctx context.Context, c *models.Consultation) (string, error) {
	if c.UserID == "" {
		return "", errors.New("consultation userId cannot be empty")
	}
	docRef := r.client.Collection(consultationsCollection).NewDoc()
	if _, err := docRef.Create(ctx, c); err != nil {
		return "", fmt.Errorf("failed to create consultation for user '%s': %w", c.UserID, err)
	}
	c.ID = docRef.ID
	return docRef.ID, nil
}

// ListByUser returns a user's consultations, newest first.
func (r *firestoreConsultationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Consultation, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}
	iter := r.client.Collection(consultationsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var consultations []*models.Consultation
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate consultations for user '%s': %w", userID, err)
		}
		var c models.Consultation
		if err := docSnap.DataTo(&c); err != nil {
			return nil, fmt.Errorf("failed to decode consultation document '%s': %w", docSnap.Ref.ID, err)
		}
		c.ID = docSnap.Ref.ID
		consultations = append(consultations, &c)
	}
	return consultations, nil
}

// UpdateStatus moves a consultation to a new status.
func (r *firestoreConsultationRepository) UpdateStatus(ctx context.Context, consultationID, status string, updatedAt time.Time) error {
	if consultationID == "" {
		return errors.New("consultation ID cannot be empty for UpdateStatus operation")
	}
	_, err := r.client.Collection(consultationsCollection).Doc(consultationID).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: updatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to update consultation '%s' status: %w", consultationID, err)
	}
	return nil
}

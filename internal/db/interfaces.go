package db

import (
	"context"
	"time"

	"calmme-backend-go/internal/models"
)

// UserRepository defines the interface for user profile storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// GetByUsername looks up a user by lowercased username. Returns
	// ErrNotFound when no profile matches.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// UpdateFields merges the given fields into the user document and stamps
	// updatedAt. Keys are Firestore field names.
	UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error
	// List returns all users ordered by creation time descending.
	List(ctx context.Context) ([]*models.User, error)
}

// MoodRepository defines the interface for mood ledger storage operations.
type MoodRepository interface {
	// FindByUserAndRange returns entries with date in [from, to], date
	// descending.
	FindByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]*models.MoodEntry, error)
	Create(ctx context.Context, entry *models.MoodEntry) (string, error)
	// UpdateMood overwrites moodId/moodLabel/updatedAt on an existing entry.
	UpdateMood(ctx context.Context, entryID, moodID, moodLabel string, updatedAt time.Time) error
}

// PsychologistRepository reads the shared psychologist reference data.
type PsychologistRepository interface {
	// ListAvailable returns available psychologists ordered by name ascending.
	ListAvailable(ctx context.Context) ([]*models.Psychologist, error)
	GetByID(ctx context.Context, psychologistID string) (*models.Psychologist, error)
}

// ScheduleRepository reads the shared schedule reference data.
type ScheduleRepository interface {
	ListByPsychologist(ctx context.Context, psychologistID string) ([]*models.Schedule, error)
}

// AppointmentRepository defines appointment storage operations.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) (string, error)
	GetByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	// ListPendingByUser returns appointments with paymentStatus=pending,
	// newest first. Callers rely on this exact ordering: the first element is
	// "the appointment to pay for".
	ListPendingByUser(ctx context.Context, userID string) ([]*models.Appointment, error)
	// MarkPaid flips paymentStatus to paid. Idempotent.
	MarkPaid(ctx context.Context, appointmentID string) error
}

// ConsultationRepository defines consultation record storage operations.
type ConsultationRepository interface {
	Create(ctx context.Context, c *models.Consultation) (string, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Consultation, error)
	UpdateStatus(ctx context.Context, consultationID, status string, updatedAt time.Time) error
}

// PaymentRepository defines payment intent storage operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (string, error)
	// GetByPaymentID looks a payment up by its paymentId field (not the
	// document ID) via query. Returns ErrNotFound when absent.
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error)
	SetMethod(ctx context.Context, docID, method string) error
	SetStatus(ctx context.Context, docID, status string) error
	ListByUser(ctx context.Context, userID string) ([]*models.Payment, error)
}

// SubscriptionRepository defines subscription storage operations.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) (string, error)
	// GetBySubscriptionID looks a subscription up by its subscriptionId field.
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	SetMethod(ctx context.Context, docID, method string) error
	SetStatus(ctx context.Context, docID, status string) error
}

// PaymentEventRepository stores the payment completion outbox.
type PaymentEventRepository interface {
	Create(ctx context.Context, event *models.PaymentEvent) error
	// GetPendingByPaymentID returns the pending event for a payment, or
	// ErrNotFound. At most one pending event per payment is expected.
	GetPendingByPaymentID(ctx context.Context, paymentID string) (*models.PaymentEvent, error)
	ListPending(ctx context.Context) ([]*models.PaymentEvent, error)
	MarkApplied(ctx context.Context, eventID string, appliedAt time.Time) error
	IncrementAttempts(ctx context.Context, eventID string, at time.Time) error
}

// AuditRepository defines the interface for audit log storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}

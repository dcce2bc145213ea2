package core

import (
	"context"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	"calmme-backend-go/internal/identity"
	"calmme-backend-go/internal/models"
)

// IdentityProvider is the credential side of the backend-as-a-service:
// email/password sign-in and sign-up, out-of-band verification emails, and
// password updates. Implemented by identity.Client.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.AuthResult, error)
	SignUp(ctx context.Context, email, password string) (*identity.AuthResult, error)
	SendOobCode(ctx context.Context, requestType, idToken, newEmail string) error
	UpdatePassword(ctx context.Context, idToken, newPassword string) (*identity.AuthResult, error)
	Lookup(ctx context.Context, idToken string) (*identity.UserInfo, error)
}

// AuthAdmin is the slice of the Firebase Admin Auth client the services
// use. *auth.Client satisfies it.
type AuthAdmin interface {
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// MessagePublisher publishes messages to a queue. Implemented by the
// RabbitMQ service; a nil-safe no-op stands in when messaging is not
// configured.
type MessagePublisher interface {
	Publish(queueName string, body []byte) error
}

// Mailer sends notification emails. Best-effort everywhere it is used.
type Mailer interface {
	Send(recipient, subject, body string) error
}

// AuthSession is what a successful login hands back to the client.
type AuthSession struct {
	UID          string       `json:"uid"`
	IDToken      string       `json:"idToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
}

// IdentityService resolves login identifiers, manages registration and the
// profile document, and keeps the profile email reconciled with the
// provider.
type IdentityService interface {
	// ResolveLogin signs in with an email, or resolves a username to its
	// stored email first. Returns ErrUsernameNotFound when the identifier is
	// not email-shaped and no profile matches it.
	ResolveLogin(ctx context.Context, identifier, password string) (*AuthSession, error)
	// Register creates the credential, then the profile document, then sends
	// the verification email. The two steps are not atomic; a profile
	// creation failure after sign-up leaves an orphaned credential and is
	// returned as ErrOrphanedCredential.
	Register(ctx context.Context, username, email, password string) (*AuthSession, error)
	// GetCurrentUserData reads the profile and lazily reconciles its email
	// with the provider's view carried in the verified token claims.
	GetCurrentUserData(ctx context.Context, uid, providerEmail string, providerVerified bool) (*models.User, error)
	UpdateProfile(ctx context.Context, uid string, req models.UpdateProfileRequest) error
	// UpdateEmailWithAuth re-authenticates, requests a verify-before-update
	// email change, and marks the profile with pendingEmail.
	UpdateEmailWithAuth(ctx context.Context, uid, newEmail, currentPassword string) error
	// UpdatePassword re-authenticates with the current password before
	// setting the new one.
	UpdatePassword(ctx context.Context, uid, currentPassword, newPassword string) error
	ResendEmailVerification(ctx context.Context, idToken string) error
	// CheckEmailVerificationStatus asks the provider and mirrors a positive
	// answer onto the profile.
	CheckEmailVerificationStatus(ctx context.Context, uid string) (bool, error)
	// Logout syncs the profile email one last time and revokes refresh
	// tokens.
	Logout(ctx context.Context, uid, providerEmail string, providerVerified bool) error
}

// MoodService is the mood ledger: at most one entry per user per UTC
// calendar day, plus the derived read views.
type MoodService interface {
	SaveMood(ctx context.Context, userID, moodID, moodLabel string) (action string, err error)
	GetMoodHistory(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error)
	GetLast7DaysMood(ctx context.Context, userID string) ([]models.DayView, error)
	CalculateStreak(ctx context.Context, userID string) (int, error)
	GetMoodStats(ctx context.Context, userID, period string) ([]models.MoodStat, error)
}

// ConsultationService serves the psychologist directory, schedules,
// appointments and consultation records.
type ConsultationService interface {
	ListPsychologists(ctx context.Context) ([]*models.Psychologist, error)
	SearchPsychologists(ctx context.Context, term string) ([]*models.Psychologist, error)
	GetPsychologist(ctx context.Context, psychologistID string) (*models.Psychologist, error)
	GetSchedules(ctx context.Context, psychologistID string) ([]*models.Schedule, error)
	CreateAppointment(ctx context.Context, userID string, req models.CreateAppointmentRequest) (*models.Appointment, error)
	CreateConsultation(ctx context.Context, userID string, req models.CreateConsultationRequest) (*models.Consultation, error)
	ListUserConsultations(ctx context.Context, userID string) ([]*models.Consultation, error)
	UpdateConsultationStatus(ctx context.Context, consultationID, status string) error
}

// BillingService is the subscription and payment state machine.
type BillingService interface {
	CheckUserSubscriptionStatus(ctx context.Context, userID string) (string, error)
	// CheckPendingAppointments returns pending appointments newest first; the
	// first element is the one a consultation payment binds to.
	CheckPendingAppointments(ctx context.Context, userID string) ([]*models.Appointment, error)
	CreateConsultationPayment(ctx context.Context, userID, appointmentID string) (*models.Payment, error)
	// CreateSubscription guards against an already-active subscription, then
	// creates the subscription shell and its pending payment.
	CreateSubscription(ctx context.Context, userID string) (*models.Subscription, *models.Payment, error)
	UpdatePaymentMethod(ctx context.Context, paymentID, method string) error
	// CompletePayment writes an outbox event and applies the completion
	// steps idempotently. Safe to retry; partial failures are picked up by
	// ReconcilePayments.
	CompletePayment(ctx context.Context, paymentID string) error
	// ReconcilePayments re-applies unfinished completion events.
	ReconcilePayments(ctx context.Context) error
	GetPaymentHistory(ctx context.Context, userID string) ([]*models.Payment, error)
}

// AssessmentService serves and scores the anxiety self-assessment.
type AssessmentService interface {
	Questions() []models.AssessmentQuestion
	// Evaluate sums the answers and maps the score to a severity band.
	Evaluate(answers []int) (*models.AssessmentResult, error)
}

// AdminService manages user accounts from the admin panel.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	SearchUsers(ctx context.Context, term string) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, adminID, userID, role string) error
	DisableUser(ctx context.Context, adminID, userID, reason string) error
	EnableUser(ctx context.Context, adminID, userID string) error
}

// AuditService records the audit trail.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// Clock is the injected time source. Production uses time.Now; tests pin it.
type Clock func() time.Time

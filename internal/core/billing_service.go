package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"calmme-backend-go/internal/config"
	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/models"
)

// Custom errors for the BillingService.
var (
	// ErrPaymentNotFound is returned when no payment carries the given id.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrAlreadySubscribed guards subscription creation for a user whose
	// subscription is already active.
	ErrAlreadySubscribed = errors.New("user already has an active subscription")
	// ErrNoPendingAppointment is returned when a consultation payment is
	// requested but the user has no appointment awaiting payment.
	ErrNoPendingAppointment = errors.New("no pending appointment to pay for")
)

// billingService implements the BillingService interface: payment intents,
// the subscription lifecycle, and the outbox-backed completion flow.
type billingService struct {
	userRepo     db.UserRepository
	apptRepo     db.AppointmentRepository
	paymentRepo  db.PaymentRepository
	subRepo      db.SubscriptionRepository
	eventRepo    db.PaymentEventRepository
	auditService AuditService
	publisher    MessagePublisher
	mailer       Mailer
	queueName    string
	rollover     string
	logger       *zap.Logger
	now          Clock
}

// NewBillingService creates a new BillingService instance. publisher and
// mailer may be no-op implementations when messaging or SMTP is not
// configured.
func NewBillingService(
	userRepo db.UserRepository,
	apptRepo db.AppointmentRepository,
	paymentRepo db.PaymentRepository,
	subRepo db.SubscriptionRepository,
	eventRepo db.PaymentEventRepository,
	auditService AuditService,
	publisher MessagePublisher,
	mailer Mailer,
	queueName string,
	rollover string,
	logger *zap.Logger,
) BillingService {
	return &billingService{
		userRepo:     userRepo,
		apptRepo:     apptRepo,
		paymentRepo:  paymentRepo,
		subRepo:      subRepo,
		eventRepo:    eventRepo,
		auditService: auditService,
		publisher:    publisher,
		mailer:       mailer,
		queueName:    queueName,
		rollover:     rollover,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// addOneMonth advances t by one month under the configured rollover policy.
// "calendar" lets the date normalize (Jan 31 -> Mar 3); "clamp" pins it to
// the last day of the target month (Jan 31 -> Feb 28/29).
func addOneMonth(t time.Time, policy string) time.Time {
	if policy != config.RolloverClamp {
		return t.AddDate(0, 1, 0)
	}
	year, month, day := t.Date()
	// Day 0 of month+2 is the last day of month+1.
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, minute, sec := t.Clock()
	return time.Date(year, month+1, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// CheckUserSubscriptionStatus returns the status stored on the profile.
func (s *billingService) CheckUserSubscriptionStatus(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: uid '%s'", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("failed to get profile for uid '%s': %w", userID, err)
	}
	if user.SubscriptionStatus == "" {
		return models.SubscriptionInactive, nil
	}
	return user.SubscriptionStatus, nil
}

// CheckPendingAppointments returns the user's unpaid appointments, newest
// first.
func (s *billingService) CheckPendingAppointments(ctx context.Context, userID string) ([]*models.Appointment, error) {
	appts, err := s.apptRepo.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending appointments for user '%s': %w", userID, err)
	}
	return appts, nil
}

// CreateConsultationPayment opens a pending payment bound to an
// appointment. When appointmentID is empty the newest pending appointment is
// billed.
func (s *billingService) CreateConsultationPayment(ctx context.Context, userID, appointmentID string) (*models.Payment, error) {
	if appointmentID == "" {
		pending, err := s.apptRepo.ListPendingByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list pending appointments for user '%s': %w", userID, err)
		}
		if len(pending) == 0 {
			return nil, ErrNoPendingAppointment
		}
		appointmentID = pending[0].ID
	} else {
		appt, err := s.apptRepo.GetByID(ctx, appointmentID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("appointment '%s' not found: %w", appointmentID, db.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get appointment '%s': %w", appointmentID, err)
		}
		if appt.UserID != userID {
			return nil, fmt.Errorf("appointment '%s' does not belong to user '%s'", appointmentID, userID)
		}
		if appt.PaymentStatus != models.AppointmentPaymentPending {
			return nil, fmt.Errorf("appointment '%s' is not awaiting payment", appointmentID)
		}
	}

	payment := &models.Payment{
		UserID:        userID,
		Type:          models.PaymentTypeConsultation,
		Status:        models.PaymentStatusPending,
		AppointmentID: appointmentID,
		CreatedAt:     s.now(),
	}
	if _, err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create consultation payment for user '%s': %w", userID, err)
	}

	s.audit(ctx, models.AuditLog{
		UserID:   userID,
		Action:   models.AuditPaymentCreate,
		TargetID: payment.PaymentID,
		Details:  map[string]interface{}{"type": payment.Type, "appointmentId": appointmentID},
	})
	return payment, nil
}

// CreateSubscription creates the subscription shell and its pending
// payment. Dates are fixed here; completion only flips statuses.
func (s *billingService) CreateSubscription(ctx context.Context, userID string) (*models.Subscription, *models.Payment, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: uid '%s'", ErrUserNotFound, userID)
		}
		return nil, nil, fmt.Errorf("failed to get profile for uid '%s': %w", userID, err)
	}
	if user.SubscriptionStatus == models.SubscriptionActive {
		return nil, nil, ErrAlreadySubscribed
	}

	now := s.now()
	sub := &models.Subscription{
		UserID:    userID,
		StartDate: now,
		EndDate:   addOneMonth(now, s.rollover),
		CreatedAt: now,
	}
	if _, err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, nil, fmt.Errorf("failed to create subscription for user '%s': %w", userID, err)
	}

	payment := &models.Payment{
		UserID:         userID,
		Type:           models.PaymentTypeSubscription,
		Status:         models.PaymentStatusPending,
		SubscriptionID: sub.SubscriptionID,
		CreatedAt:      now,
	}
	if _, err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, nil, fmt.Errorf("failed to create subscription payment for user '%s': %w", userID, err)
	}

	s.audit(ctx, models.AuditLog{
		UserID:   userID,
		Action:   models.AuditSubscriptionStart,
		TargetID: sub.SubscriptionID,
		Details:  map[string]interface{}{"paymentId": payment.PaymentID},
	})
	return sub, payment, nil
}

// UpdatePaymentMethod attaches a method to the payment, mirroring it onto
// the subscription document for subscription payments.
func (s *billingService) UpdatePaymentMethod(ctx context.Context, paymentID, method string) error {
	payment, err := s.paymentRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrPaymentNotFound, paymentID)
		}
		return fmt.Errorf("failed to get payment '%s': %w", paymentID, err)
	}

	if err := s.paymentRepo.SetMethod(ctx, payment.ID, method); err != nil {
		return fmt.Errorf("failed to set method on payment '%s': %w", paymentID, err)
	}

	if payment.Type == models.PaymentTypeSubscription && payment.SubscriptionID != "" {
		sub, err := s.subRepo.GetBySubscriptionID(ctx, payment.SubscriptionID)
		if err != nil {
			return fmt.Errorf("failed to get subscription '%s': %w", payment.SubscriptionID, err)
		}
		if err := s.subRepo.SetMethod(ctx, sub.ID, method); err != nil {
			return fmt.Errorf("failed to mirror method onto subscription '%s': %w", payment.SubscriptionID, err)
		}
	}
	return nil
}

// CompletePayment records an outbox event for the completion, then applies
// it. A crash between the two leaves a pending event for ReconcilePayments;
// every apply step is idempotent, so retries and the sweep are safe.
func (s *billingService) CompletePayment(ctx context.Context, paymentID string) error {
	payment, err := s.paymentRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrPaymentNotFound, paymentID)
		}
		return fmt.Errorf("failed to get payment '%s': %w", paymentID, err)
	}

	event, err := s.eventRepo.GetPendingByPaymentID(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("failed to check pending events for payment '%s': %w", paymentID, err)
		}
		if payment.Status == models.PaymentStatusSuccess {
			// Already completed and fully applied.
			return nil
		}
		now := s.now()
		event = &models.PaymentEvent{
			ID:        uuid.NewString(),
			PaymentID: paymentID,
			Type:      payment.Type,
			Status:    models.PaymentEventPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("failed to record completion event for payment '%s': %w", paymentID, err)
		}
	}

	if err := s.applyPaymentEvent(ctx, event, payment); err != nil {
		if incErr := s.eventRepo.IncrementAttempts(ctx, event.ID, s.now()); incErr != nil {
			s.logger.Warn("failed to bump attempts on payment event", zap.String("eventId", event.ID), zap.Error(incErr))
		}
		return fmt.Errorf("failed to apply completion for payment '%s': %w", paymentID, err)
	}
	if err := s.eventRepo.MarkApplied(ctx, event.ID, s.now()); err != nil {
		return fmt.Errorf("failed to mark completion event applied for payment '%s': %w", paymentID, err)
	}

	s.notifyCompletion(ctx, payment)
	s.audit(ctx, models.AuditLog{
		UserID:   payment.UserID,
		Action:   models.AuditPaymentComplete,
		TargetID: paymentID,
		Details:  map[string]interface{}{"type": payment.Type},
	})
	return nil
}

// applyPaymentEvent runs the completion steps. Each step is a no-op when
// its effect is already in place.
func (s *billingService) applyPaymentEvent(ctx context.Context, event *models.PaymentEvent, payment *models.Payment) error {
	if payment.Status != models.PaymentStatusSuccess {
		if err := s.paymentRepo.SetStatus(ctx, payment.ID, models.PaymentStatusSuccess); err != nil {
			return fmt.Errorf("failed to mark payment success: %w", err)
		}
	}

	switch payment.Type {
	case models.PaymentTypeConsultation:
		if payment.AppointmentID != "" {
			if err := s.apptRepo.MarkPaid(ctx, payment.AppointmentID); err != nil {
				return fmt.Errorf("failed to mark appointment '%s' paid: %w", payment.AppointmentID, err)
			}
		}

	case models.PaymentTypeSubscription:
		sub, err := s.subRepo.GetBySubscriptionID(ctx, payment.SubscriptionID)
		if err != nil {
			return fmt.Errorf("failed to get subscription '%s': %w", payment.SubscriptionID, err)
		}
		if sub.Status != models.SubscriptionActive {
			if err := s.subRepo.SetStatus(ctx, sub.ID, models.SubscriptionActive); err != nil {
				return fmt.Errorf("failed to activate subscription '%s': %w", payment.SubscriptionID, err)
			}
		}
		fields := map[string]interface{}{
			"subscriptionStatus":    models.SubscriptionActive,
			"subscriptionStartDate": sub.StartDate,
			"subscriptionEndDate":   sub.EndDate,
		}
		if err := s.userRepo.UpdateFields(ctx, payment.UserID, fields); err != nil {
			return fmt.Errorf("failed to mark profile subscribed: %w", err)
		}
		// A subscription covers consultations, so every appointment still
		// waiting on payment is settled with it.
		pending, err := s.apptRepo.ListPendingByUser(ctx, payment.UserID)
		if err != nil {
			return fmt.Errorf("failed to list pending appointments: %w", err)
		}
		for _, appt := range pending {
			if err := s.apptRepo.MarkPaid(ctx, appt.ID); err != nil {
				return fmt.Errorf("failed to mark appointment '%s' paid: %w", appt.ID, err)
			}
		}

	default:
		return fmt.Errorf("unknown payment type '%s' on event '%s'", payment.Type, event.ID)
	}
	return nil
}

// notifyCompletion publishes the completion message and sends the receipt
// email. Both are best-effort.
func (s *billingService) notifyCompletion(ctx context.Context, payment *models.Payment) {
	if s.publisher != nil {
		body, err := json.Marshal(map[string]interface{}{
			"event":     "payment.completed",
			"paymentId": payment.PaymentID,
			"userId":    payment.UserID,
			"type":      payment.Type,
		})
		if err == nil {
			if err := s.publisher.Publish(s.queueName, body); err != nil {
				s.logger.Warn("failed to publish payment completion", zap.String("paymentId", payment.PaymentID), zap.Error(err))
			}
		}
	}

	if s.mailer == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, payment.UserID)
	if err != nil {
		s.logger.Warn("failed to load user for receipt email", zap.String("uid", payment.UserID), zap.Error(err))
		return
	}
	subject := "Your CalmMe payment was received"
	body := fmt.Sprintf("Hi %s,\n\nYour %s payment (%s) has been completed successfully.\n\nThe CalmMe Team", user.Username, payment.Type, payment.PaymentID)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		s.logger.Warn("failed to send receipt email", zap.String("uid", payment.UserID), zap.Error(err))
	}
}

// ReconcilePayments re-applies events left pending by partial failures.
// Errors are logged per event; the sweep keeps going.
func (s *billingService) ReconcilePayments(ctx context.Context) error {
	events, err := s.eventRepo.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending payment events: %w", err)
	}

	for _, event := range events {
		payment, err := s.paymentRepo.GetByPaymentID(ctx, event.PaymentID)
		if err != nil {
			s.logger.Error("reconcile: payment lookup failed",
				zap.String("eventId", event.ID),
				zap.String("paymentId", event.PaymentID),
				zap.Error(err),
			)
			continue
		}
		if err := s.applyPaymentEvent(ctx, event, payment); err != nil {
			s.logger.Error("reconcile: apply failed",
				zap.String("eventId", event.ID),
				zap.Int("attempts", event.Attempts),
				zap.Error(err),
			)
			if incErr := s.eventRepo.IncrementAttempts(ctx, event.ID, s.now()); incErr != nil {
				s.logger.Warn("reconcile: failed to bump attempts", zap.String("eventId", event.ID), zap.Error(incErr))
			}
			continue
		}
		if err := s.eventRepo.MarkApplied(ctx, event.ID, s.now()); err != nil {
			s.logger.Error("reconcile: failed to mark event applied", zap.String("eventId", event.ID), zap.Error(err))
			continue
		}
		s.logger.Info("reconcile: payment completion re-applied",
			zap.String("eventId", event.ID),
			zap.String("paymentId", event.PaymentID),
		)
	}
	return nil
}

// GetPaymentHistory returns the user's payments, newest first.
func (s *billingService) GetPaymentHistory(ctx context.Context, userID string) ([]*models.Payment, error) {
	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for user '%s': %w", userID, err)
	}
	return payments, nil
}

func (s *billingService) audit(ctx context.Context, entry models.AuditLog) {
	if s.auditService == nil {
		return
	}
	entry.Timestamp = s.now()
	if err := s.auditService.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"calmme-backend-go/internal/models"
)

const (
	appointmentsCollection  = "appointments"
	paymentsCollection      = "payments"
	subscriptionsCollection = "subscriptions"
	paymentEventsCollection = "payment_events"
)

// firestoreAppointmentRepository implements AppointmentRepository.
type firestoreAppointmentRepository struct {
	client *firestore.Client
}

// NewFirestoreAppointmentRepository creates a new appointment repository.
func NewFirestoreAppointmentRepository(client *firestore.Client) AppointmentRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AppointmentRepository.")
	}
	return &firestoreAppointmentRepository{client: client}
}

// Create inserts a new appointment with paymentStatus pending.
func (r *firestoreAppointmentRepository) Create(ctx context.Context, appt *models.Appointment) (string, error) {
	if appt.UserID == "" {
		return "", errors.New("appointment userId cannot be empty")
	}
	docRef := r.client.Collection(appointmentsCollection).NewDoc()
	if _, err := docRef.Create(ctx, appt); err != nil {
		return "", fmt.Errorf("failed to create appointment for user '%s': %w", appt.UserID, err)
	}
	appt.ID = docRef.ID
	return docRef.ID, nil
}

// GetByID retrieves one appointment document.
func (r *firestoreAppointmentRepository) GetByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	if appointmentID == "" {
		return nil, errors.New("appointmentID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(appointmentsCollection).Doc(appointmentID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("appointment with ID '%s' not found: %w", appointmentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get appointment with ID '%s': %w", appointmentID, err)
	}
	var appt models.Appointment
	if err := docSnap.DataTo(&appt); err != nil {
		return nil, fmt.Errorf("failed to decode appointment data for ID '%s': %w", appointmentID, err)
	}
	appt.ID = docSnap.Ref.ID
	return &appt, nil
}

// ListPendingByUser returns a user's pending appointments, newest first.
// The ordering is load-bearing: the billing layer bills the first element.
func (r *firestoreAppointmentRepository) ListPendingByUser(ctx context.Context, userID string) ([]*models.Appointment, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListPendingByUser operation")
	}
	iter := r.client.Collection(appointmentsCollection).
		Where("userId", "==", userID).
		Where("paymentStatus", "==", models.AppointmentPaymentPending).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var appointments []*models.Appointment
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate pending appointments for user '%s': %w", userID, err)
		}
		var appt models.Appointment
		if err := docSnap.DataTo(&appt); err != nil {
			return nil, fmt.Errorf("failed to decode appointment document '%s': %w", docSnap.Ref.ID, err)
		}
		appt.ID = docSnap.Ref.ID
		appointments = append(appointments, &appt)
	}
	return appointments, nil
}

// MarkPaid flips paymentStatus to paid. Writing the same status twice is
// harmless, which keeps the completion fan-out idempotent.
func (r *firestoreAppointmentRepository) MarkPaid(ctx context.Context, appointmentID string) error {
	if appointmentID == "" {
		return errors.New("appointment ID cannot be empty for MarkPaid operation")
	}
	_, err := r.client.Collection(appointmentsCollection).Doc(appointmentID).Update(ctx, []firestore.Update{
		{Path: "paymentStatus", Value: models.AppointmentPaymentPaid},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to mark appointment '%s' paid: %w", appointmentID, err)
	}
	return nil
}

// firestorePaymentRepository implements PaymentRepository.
type firestorePaymentRepository struct {
	client *firestore.Client
}

// NewFirestorePaymentRepository creates a new payment repository.
func NewFirestorePaymentRepository(client *firestore.Client) PaymentRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PaymentRepository.")
	}
	return &firestorePaymentRepository{client: client}
}

// Create inserts a new payment. The generated document ID is mirrored into
// the paymentId field before the write so lookups by field keep working.
func (r *firestorePaymentRepository) Create(ctx context.Context, payment *models.Payment) (string, error) {
	if payment.UserID == "" {
		return "", errors.New("payment userId cannot be empty")
	}
	docRef := r.client.Collection(paymentsCollection).NewDoc()
	payment.PaymentID = docRef.ID
	if _, err := docRef.Create(ctx, payment); err != nil {
		return "", fmt.Errorf("failed to create payment for user '%s': %w", payment.UserID, err)
	}
	payment.ID = docRef.ID
	return docRef.ID, nil
}

// GetByPaymentID looks a payment up by its paymentId field via query, not by
// document ID.
func (r *firestorePaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	if paymentID == "" {
		return nil, errors.New("paymentID cannot be empty for GetByPaymentID operation")
	}
	iter := r.client.Collection(paymentsCollection).
		Where("paymentId", "==", paymentID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("payment with paymentId '%s' not found: %w", paymentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment by paymentId '%s': %w", paymentID, err)
	}

	var payment models.Payment
	if err := docSnap.DataTo(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode payment document '%s': %w", docSnap.Ref.ID, err)
	}
	payment.ID = docSnap.Ref.ID
	return &payment, nil
}

// SetMethod attaches a payment method to the payment document.
func (r *firestorePaymentRepository) SetMethod(ctx context.Context, docID, method string) error {
	_, err := r.client.Collection(paymentsCollection).Doc(docID).Update(ctx, []firestore.Update{
		{Path: "paymentMethod", Value: method},
	})
	if err != nil {
		return fmt.Errorf("failed to set payment method on '%s': %w", docID, err)
	}
	return nil
}

// SetStatus moves the payment to a new status.
func (r *firestorePaymentRepository) SetStatus(ctx context.Context, docID, status string) error {
	_, err := r.client.Collection(paymentsCollection).Doc(docID).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
	})
	if err != nil {
		return fmt.Errorf("failed to set payment status on '%s': %w", docID, err)
	}
	return nil
}

// ListByUser returns a user's payments, newest first.
func (r *firestorePaymentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}
	iter := r.client.Collection(paymentsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var payments []*models.Payment
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate payments for user '%s': %w", userID, err)
		}
		var payment models.Payment
		if err := docSnap.DataTo(&payment); err != nil {
			return nil, fmt.Errorf("failed to decode payment document '%s': %w", docSnap.Ref.ID, err)
		}
		payment.ID = docSnap.Ref.ID
		payments = append(payments, &payment)
	}
	return payments, nil
}

// firestoreSubscriptionRepository implements SubscriptionRepository.
type firestoreSubscriptionRepository struct {
	client *firestore.Client
}

// NewFirestoreSubscriptionRepository creates a new subscription repository.
func NewFirestoreSubscriptionRepository(client *firestore.Client) SubscriptionRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SubscriptionRepository.")
	}
	return &firestoreSubscriptionRepository{client: client}
}

// Create inserts a new subscription, mirroring the generated document ID
// into the subscriptionId field.
func (r *firestoreSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (string, error) {
	if sub.UserID == "" {
		return "", errors.New("subscription userId cannot be empty")
	}
	docRef := r.client.Collection(subscriptionsCollection).NewDoc()
	sub.SubscriptionID = docRef.ID
	if _, err := docRef.Create(ctx, sub); err != nil {
		return "", fmt.Errorf("failed to create subscription for user '%s': %w", sub.UserID, err)
	}
	sub.ID = docRef.ID
	return docRef.ID, nil
}

// GetBySubscriptionID looks a subscription up by its subscriptionId field.
func (r *firestoreSubscriptionRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	if subscriptionID == "" {
		return nil, errors.New("subscriptionID cannot be empty for GetBySubscriptionID operation")
	}
	iter := r.client.Collection(subscriptionsCollection).
		Where("subscriptionId", "==", subscriptionID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("subscription with subscriptionId '%s' not found: %w", subscriptionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription by subscriptionId '%s': %w", subscriptionID, err)
	}

	var sub models.Subscription
	if err := docSnap.DataTo(&sub); err != nil {
		return nil, fmt.Errorf("failed to decode subscription document '%s': %w", docSnap.Ref.ID, err)
	}
	sub.ID = docSnap.Ref.ID
	return &sub, nil
}

// SetMethod mirrors a payment method onto the subscription document.
func (r *firestoreSubscriptionRepository) SetMethod(ctx context.Context, docID, method string) error {
	_, err := r.client.Collection(subscriptionsCollection).Doc(docID).Update(ctx, []firestore.Update{
		{Path: "paymentMethod", Value: method},
	})
	if err != nil {
		return fmt.Errorf("failed to set subscription payment method on '%s': %w", docID, err)
	}
	return nil
}

// SetStatus moves the subscription to a new status.
func (r *firestoreSubscriptionRepository) SetStatus(ctx context.Context, docID, status string) error {
	_, err := r.client.Collection(subscriptionsCollection).Doc(docID).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
	})
	if err != nil {
		return fmt.Errorf("failed to set subscription status on '%s': %w", docID, err)
	}
	return nil
}

// firestorePaymentEventRepository implements PaymentEventRepository.
type firestorePaymentEventRepository struct {
	client *firestore.Client
}

// NewFirestorePaymentEventRepository creates a new payment event repository.
func NewFirestorePaymentEventRepository(client *firestore.Client) PaymentEventRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PaymentEventRepository.")
	}
	return &firestorePaymentEventRepository{client: client}
}

// Create writes the outbox record. The event ID is caller-supplied (UUID) so
// repeated completion attempts can find their own record.
func (r *firestorePaymentEventRepository) Create(ctx context.Context, event *models.PaymentEvent) error {
	if event.ID == "" {
		return errors.New("payment event ID cannot be empty for Create operation")
	}
	if _, err := r.client.Collection(paymentEventsCollection).Doc(event.ID).Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create payment event '%s': %w", event.ID, err)
	}
	return nil
}

// GetPendingByPaymentID returns the pending event for a payment, if any.
func (r *firestorePaymentEventRepository) GetPendingByPaymentID(ctx context.Context, paymentID string) (*models.PaymentEvent, error) {
	if paymentID == "" {
		return nil, errors.New("paymentID cannot be empty for GetPendingByPaymentID operation")
	}
	iter := r.client.Collection(paymentEventsCollection).
		Where("paymentId", "==", paymentID).
		Where("status", "==", models.PaymentEventPending).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no pending payment event for paymentId '%s': %w", paymentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment events for paymentId '%s': %w", paymentID, err)
	}

	var event models.PaymentEvent
	if err := docSnap.DataTo(&event); err != nil {
		return nil, fmt.Errorf("failed to decode payment event '%s': %w", docSnap.Ref.ID, err)
	}
	event.ID = docSnap.Ref.ID
	return &event, nil
}

// ListPending returns all unapplied events, oldest first, for the sweep.
func (r *firestorePaymentEventRepository) ListPending(ctx context.Context) ([]*models.PaymentEvent, error) {
	iter := r.client.Collection(paymentEventsCollection).
		Where("status", "==", models.PaymentEventPending).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var events []*models.PaymentEvent
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate pending payment events: %w", err)
		}
		var event models.PaymentEvent
		if err := docSnap.DataTo(&event); err != nil {
			return nil, fmt.Errorf("failed to decode payment event '%s': %w", docSnap.Ref.ID, err)
		}
		event.ID = docSnap.Ref.ID
		events = append(events, &event)
	}
	return events, nil
}

// MarkApplied closes an outbox record.
func (r *firestorePaymentEventRepository) MarkApplied(ctx context.Context, eventID string, appliedAt time.Time) error {
	if eventID == "" {
		return errors.New("event ID cannot be empty for MarkApplied operation")
	}
	_, err := r.client.Collection(paymentEventsCollection).Doc(eventID).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.PaymentEventApplied},
		{Path: "updatedAt", Value: appliedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to mark payment event '%s' applied: %w", eventID, err)
	}
	return nil
}

// IncrementAttempts bumps the attempt counter on a pending event.
func (r *firestorePaymentEventRepository) IncrementAttempts(ctx context.Context, eventID string, at time.Time) error {
	if eventID == "" {
		return errors.New("event ID cannot be empty for IncrementAttempts operation")
	}
	_, err := r.client.Collection(paymentEventsCollection).Doc(eventID).Update(ctx, []firestore.Update{
		{Path: "attempts", Value: firestore.Increment(1)},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		return fmt.Errorf("failed to increment attempts on payment event '%s': %w", eventID, err)
	}
	return nil
}

package models

import "time"

// Appointment payment statuses. The only transition is pending -> paid.
const (
	AppointmentPaymentPending = "pending"
	AppointmentPaymentPaid    = "paid"
)

// Appointment links a user to a psychologist booking. Payment completion is
// the only thing that flips PaymentStatus.
type Appointment struct {
	ID             string    `json:"id" firestore:"-"`
	UserID         string    `json:"userId" firestore:"userId"`
	PsychologistID string    `json:"psychologistId" firestore:"psychologistId"`
	ScheduleDay    string    `json:"scheduleDay,omitempty" firestore:"scheduleDay,omitempty"`
	TimeSlot       string    `json:"timeSlot,omitempty" firestore:"timeSlot,omitempty"`
	PaymentStatus  string    `json:"paymentStatus" firestore:"paymentStatus"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Payment types and statuses.
const (
	PaymentTypeConsultation = "consultation"
	PaymentTypeSubscription = "subscription"

	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
)

// Payment is a payment intent for a consultation or a subscription.
// PaymentID duplicates the document ID; lookups go through the PaymentID
// field so the query shape matches the rest of the system.
type Payment struct {
	ID             string    `json:"id" firestore:"-"`
	PaymentID      string    `json:"paymentId" firestore:"paymentId"`
	UserID         string    `json:"userId" firestore:"userId"`
	Type           string    `json:"type" firestore:"type"`
	Status         string    `json:"status" firestore:"status"`
	PaymentMethod  string    `json:"paymentMethod" firestore:"paymentMethod"`
	AppointmentID  string    `json:"appointmentId,omitempty" firestore:"appointmentId"`
	SubscriptionID string    `json:"subscriptionId,omitempty" firestore:"subscriptionId"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
}

// Subscription is created with an empty status and flipped to active exactly
// once on payment completion. Expiry is stored but never enforced by a job.
type Subscription struct {
	ID             string    `json:"id" firestore:"-"`
	SubscriptionID string    `json:"subscriptionId" firestore:"subscriptionId"`
	UserID         string    `json:"userId" firestore:"userId"`
	Status         string    `json:"status" firestore:"status"` // "" or "active"
	StartDate      time.Time `json:"startDate" firestore:"startDate"`
	EndDate        time.Time `json:"endDate" firestore:"endDate"`
	PaymentMethod  string    `json:"paymentMethod" firestore:"paymentMethod"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
}

// Payment event statuses for the completion outbox.
const (
	PaymentEventPending = "pending"
	PaymentEventApplied = "applied"
)

// PaymentEvent is the outbox record written before a payment completion is
// applied. Events left pending by a partial failure are re-applied by the
// reconciliation sweep; every downstream step is idempotent.
type PaymentEvent struct {
	ID        string    `json:"id" firestore:"-"`
	PaymentID string    `json:"paymentId" firestore:"paymentId"`
	Type      string    `json:"type" firestore:"type"`
	Status    string    `json:"status" firestore:"status"`
	Attempts  int       `json:"attempts" firestore:"attempts"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

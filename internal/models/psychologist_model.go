package models

import "time"

// Psychologist is shared read-only reference data. ProfilePicture is joined
// from the linked user document at read time and never stored here.
type Psychologist struct {
	ID             string   `json:"id" firestore:"-"`
	UserID         string   `json:"userId" firestore:"userId"`
	Name           string   `json:"name" firestore:"name"`
	Specialization []string `json:"specialization" firestore:"specialization"`
	Description    string   `json:"description,omitempty" firestore:"description"`
	Education      string   `json:"education,omitempty" firestore:"education"`
	Experience     string   `json:"experience,omitempty" firestore:"experience"`
	License        string   `json:"license,omitempty" firestore:"license"`
	IsAvailable    bool     `json:"isAvailable" firestore:"isAvailable"`
	ProfilePicture string   `json:"profilePicture,omitempty" firestore:"-"`
}

// TimeSlot is one bookable window within a schedule day.
type TimeSlot struct {
	StartTime   string `json:"startTime" firestore:"startTime"`
	EndTime     string `json:"endTime" firestore:"endTime"`
	IsAvailable bool   `json:"isAvailable" firestore:"isAvailable"`
}

// Schedule holds the weekly availability of a psychologist.
type Schedule struct {
	ID             string     `json:"id" firestore:"-"`
	PsychologistID string     `json:"psychologistId" firestore:"psychologistId"`
	DayOfWeek      string     `json:"dayOfWeek" firestore:"dayOfWeek"`
	TimeSlots      []TimeSlot `json:"timeSlots" firestore:"timeSlots"`
}

// Consultation statuses.
const (
	ConsultationPending   = "pending"
	ConsultationConfirmed = "confirmed"
	ConsultationCompleted = "completed"
	ConsultationCancelled = "cancelled"
)

// Consultation is a consultation session record tied to a booking.
type Consultation struct {
	ID             string    `json:"id" firestore:"-"`
	UserID         string    `json:"userId" firestore:"userId"`
	PsychologistID string    `json:"psychologistId" firestore:"psychologistId"`
	Status         string    `json:"status" firestore:"status"`
	Notes          string    `json:"notes,omitempty" firestore:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt"`
}

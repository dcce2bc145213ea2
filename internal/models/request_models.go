package models

// LoginRequest carries a login identifier, which may be an email or a
// username, plus the password.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest carries profile edits. Pointers distinguish "clear
// this field" from "not provided".
type UpdateProfileRequest struct {
	Gender         *string `json:"gender,omitempty"`
	DateOfBirth    *string `json:"dateOfBirth,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// UpdateEmailRequest requests a verify-before-update email change.
type UpdateEmailRequest struct {
	NewEmail        string `json:"newEmail" binding:"required,email"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
}

// UpdatePasswordRequest changes the account password after re-auth.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// SaveMoodRequest records or overwrites today's mood.
type SaveMoodRequest struct {
	MoodID    string `json:"moodId" binding:"required"`
	MoodLabel string `json:"moodLabel" binding:"required"`
}

// CreateAppointmentRequest books a consultation slot with a psychologist.
type CreateAppointmentRequest struct {
	PsychologistID string `json:"psychologistId" binding:"required"`
	ScheduleDay    string `json:"scheduleDay,omitempty"`
	TimeSlot       string `json:"timeSlot,omitempty"`
}

// CreateConsultationRequest opens a consultation record.
type CreateConsultationRequest struct {
	PsychologistID string `json:"psychologistId" binding:"required"`
	Notes          string `json:"notes,omitempty"`
}

// UpdateConsultationStatusRequest moves a consultation between statuses.
type UpdateConsultationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

// ConsultationPaymentRequest creates a payment for a pending appointment.
// When AppointmentID is empty the newest pending appointment is billed.
type ConsultationPaymentRequest struct {
	AppointmentID string `json:"appointmentId,omitempty"`
}

// UpdatePaymentMethodRequest attaches a payment method to a pending payment.
type UpdatePaymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

// AssessmentRequest carries the per-question answers, each 0..3.
type AssessmentRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// UpdateUserRoleRequest is an admin action changing a user's role.
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user psychologist admin"`
}

// DisableUserRequest is an admin action disabling an account.
type DisableUserRequest struct {
	Reason string `json:"reason" binding:"required"`
}

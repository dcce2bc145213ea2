package models

import "time"

// Audit actions recorded by the services. Best-effort: an audit failure
// never fails the operation that triggered it.
const (
	AuditUserRegister      = "USER_REGISTER"
	AuditUserLogin         = "USER_LOGIN"
	AuditEmailChange       = "EMAIL_CHANGE_REQUEST"
	AuditRoleChange        = "USER_ROLE_CHANGE"
	AuditUserDisable       = "USER_DISABLE"
	AuditUserEnable        = "USER_ENABLE"
	AuditPaymentCreate     = "PAYMENT_CREATE"
	AuditPaymentComplete   = "PAYMENT_COMPLETE"
	AuditSubscriptionStart = "SUBSCRIPTION_CREATE"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp"`
	UserID     string                 `json:"userId" firestore:"userId"`
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}

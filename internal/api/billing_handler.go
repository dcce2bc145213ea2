package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/models"
)

// BillingHandler handles subscription and payment endpoints.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, logger: logger}
}

// GetSubscriptionStatus handles GET /api/v1/billing/subscription-status.
func (h *BillingHandler) GetSubscriptionStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := h.billingService.CheckUserSubscriptionStatus(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptionStatus": status})
}

// GetPendingAppointments handles GET /api/v1/billing/pending-appointments.
func (h *BillingHandler) GetPendingAppointments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	appts, err := h.billingService.CheckPendingAppointments(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

// CreateConsultationPayment handles POST /api/v1/billing/payments/consultation.
func (h *BillingHandler) CreateConsultationPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ConsultationPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	payment, err := h.billingService.CreateConsultationPayment(c.Request.Context(), userID, req.AppointmentID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// CreateSubscription handles POST /api/v1/billing/subscriptions.
func (h *BillingHandler) CreateSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sub, payment, err := h.billingService.CreateSubscription(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subscription": sub, "payment": payment})
}

// UpdatePaymentMethod handles PUT /api/v1/billing/payments/:paymentId/method.
func (h *BillingHandler) UpdatePaymentMethod(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	var req models.UpdatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.billingService.UpdatePaymentMethod(c.Request.Context(), c.Param("paymentId"), req.PaymentMethod); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Payment method updated"})
}

// CompletePayment handles POST /api/v1/billing/payments/:paymentId/complete.
// Retrying a completed payment is a no-op.
func (h *BillingHandler) CompletePayment(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	if err := h.billingService.CompletePayment(c.Request.Context(), c.Param("paymentId")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Payment completed"})
}

// GetPaymentHistory handles GET /api/v1/billing/payments.
func (h *BillingHandler) GetPaymentHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	payments, err := h.billingService.GetPaymentHistory(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

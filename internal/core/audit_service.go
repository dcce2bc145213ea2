package core

import (
	"context"
	"errors"

	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// CreateAuditLog persists one audit entry. Callers treat failures as
// warnings; an audit write never fails the operation it describes.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return errors.New("AuditRepository not initialized in AuditService")
	}
	return s.auditRepo.Create(ctx, logEntry)
}

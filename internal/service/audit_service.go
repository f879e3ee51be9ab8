package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/opskit/absence-service/internal/domain"
	"github.com/opskit/absence-service/internal/repository"
)

const auditEntityAbsence = "absence_request"

// AuditService appends audit trail entries. Writes are best-effort: a
// failure is logged and swallowed so it never blocks or fails the
// transition that produced it.
type AuditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record appends one entry for a meaningful transition.
func (a *AuditService) Record(ctx context.Context, actorID string, action domain.AuditAction, entityID string, details map[string]any) {
	if a == nil || a.repo == nil {
		return
	}
	entry := &domain.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: auditEntityAbsence,
		EntityID:   entityID,
		Details:    details,
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.logger.Warn("audit append failed",
			zap.String("action", string(action)),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

// ListForEntity returns the trail for one absence request.
func (a *AuditService) ListForEntity(ctx context.Context, entityID string, limit, offset int) ([]domain.AuditEntry, error) {
	if a == nil || a.repo == nil {
		return []domain.AuditEntry{}, nil
	}
	return a.repo.ListByEntity(ctx, auditEntityAbsence, entityID, limit, offset)
}

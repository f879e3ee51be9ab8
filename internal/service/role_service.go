package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/opskit/absence-service/internal/config"
	"github.com/opskit/absence-service/internal/domain"
	"github.com/opskit/absence-service/internal/repository"
	apperrors "github.com/opskit/absence-service/pkg/util/errorutil"
)

// RoleResolver classifies a principal relative to a subject employee. It is
// the single place role labels and manager joins are interpreted; everything
// downstream consumes the flat Tier result.
type RoleResolver struct {
	accounts  repository.AccountRepository
	employees repository.EmployeeRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	hrLabels  map[string]struct{}
	logger    *zap.Logger
}

// RoleResolverDependencies bundles collaborators for the resolver.
type RoleResolverDependencies struct {
	AccountRepo  repository.AccountRepository
	EmployeeRepo repository.EmployeeRepository
	Cache        *redis.Client
	Logger       *zap.Logger
}

// NewRoleResolver constructs the resolver with the configured HR-tier labels.
func NewRoleResolver(cfg config.WorkflowConfig, deps RoleResolverDependencies) *RoleResolver {
	labels := make(map[string]struct{}, len(cfg.HRRoleLabels))
	for _, label := range cfg.HRRoleLabels {
		labels[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleResolver{
		accounts:  deps.AccountRepo,
		employees: deps.EmployeeRepo,
		cache:     deps.Cache,
		cacheTTL:  cfg.RoleCacheTTL(),
		hrLabels:  labels,
		logger:    logger,
	}
}

// Classify resolves the principal's tier relative to the subject. Read-only.
// A subject without a linked account is never Self; a principal with zero
// roles is simply not HR.
func (r *RoleResolver) Classify(ctx context.Context, accountID, subjectEmployeeID string) (domain.Tier, error) {
	subject, err := r.employees.GetByID(ctx, subjectEmployeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tier{}, apperrors.NewNotFound("employee", map[string]any{"employee_id": subjectEmployeeID})
		}
		return domain.Tier{}, apperrors.MapError(err)
	}

	labels, err := r.roleLabels(ctx, accountID)
	if err != nil {
		return domain.Tier{}, apperrors.MapError(err)
	}

	tier := domain.Tier{
		IsHROrAdmin: r.anyHRLabel(labels),
		IsSelf:      subject.HasAccount() && *subject.AccountID == accountID,
	}

	principal, err := r.employees.GetByAccountID(ctx, accountID)
	switch {
	case err == nil:
		tier.IsManagerOf = subject.IsManagedBy(principal.ID)
	case errors.Is(err, pgx.ErrNoRows):
		// principal has no employee record, so no manager relationship
	default:
		return domain.Tier{}, apperrors.MapError(err)
	}

	return tier, nil
}

// IsHROrAdmin resolves only the HR/admin capability, for callers with no
// particular subject in view (e.g. unscoped listings).
func (r *RoleResolver) IsHROrAdmin(ctx context.Context, accountID string) (bool, error) {
	labels, err := r.roleLabels(ctx, accountID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return r.anyHRLabel(labels), nil
}

func (r *RoleResolver) anyHRLabel(labels []string) bool {
	for _, label := range labels {
		if _, ok := r.hrLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
			return true
		}
	}
	return false
}

const roleCachePrefix = "roles:"

// roleLabels reads the account's role labels through the Redis cache. Cache
// failures fall back to the repository; classification never depends on the
// cache being up.
func (r *RoleResolver) roleLabels(ctx context.Context, accountID string) ([]string, error) {
	key := roleCachePrefix + accountID
	if r.cache != nil {
		raw, err := r.cache.Get(ctx, key).Result()
		if err == nil {
			if raw == "" {
				return []string{}, nil
			}
			return strings.Split(raw, ","), nil
		}
		if err != redis.Nil {
			r.logger.Warn("role cache read failed", zap.Error(err))
		}
	}

	labels, err := r.accounts.ListRoleLabels(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil && r.cacheTTL > 0 {
		if err := r.cache.Set(ctx, key, strings.Join(labels, ","), r.cacheTTL).Err(); err != nil {
			r.logger.Warn("role cache write failed", zap.Error(err))
		}
	}
	return labels, nil
}

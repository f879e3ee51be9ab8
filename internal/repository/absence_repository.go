package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opskit/absence-service/internal/domain"
)

// ErrStatusMismatch is returned when a conditional status update matched no
// row: either a concurrent transition won the race or the row is gone.
var ErrStatusMismatch = fmt.Errorf("absence status precondition failed")

// AbsenceFilter captures listing parameters.
type AbsenceFilter struct {
	SubjectID  *string
	Statuses   []domain.AbsenceStatus
	Kinds      []domain.AbsenceKind
	PeriodFrom *time.Time
	PeriodTo   *time.Time
	Limit      int
	Offset     int
}

// StatusUpdate carries the fields a single transition writes atomically
// alongside the new status.
type StatusUpdate struct {
	NewStatus         domain.AbsenceStatus
	SchedulingImpact  bool
	Level1ValidatorID *string
	Level1ValidatedAt *time.Time
	Level2ValidatorID *string
	Level2ValidatedAt *time.Time
	UpdatedBy         string
}

// AbsenceRepository encapsulates absence request persistence.
type AbsenceRepository interface {
	Create(ctx context.Context, request *domain.AbsenceRequest) error
	GetByID(ctx context.Context, id string) (*domain.AbsenceRequest, error)
	ListWithFilter(ctx context.Context, filter AbsenceFilter) ([]domain.AbsenceRequest, error)
	// UpdateStatusIf applies the update only when the persisted status still
	// equals expected, returning ErrStatusMismatch otherwise. This single
	// conditional statement is the workflow's optimistic concurrency guard.
	UpdateStatusIf(ctx context.Context, id string, expected domain.AbsenceStatus, update StatusUpdate) (*domain.AbsenceRequest, error)
	Delete(ctx context.Context, id string) error
}

type absenceRepository struct {
	pool *pgxpool.Pool
}

// NewAbsenceRepository instantiates repository.
func NewAbsenceRepository(pool *pgxpool.Pool) AbsenceRepository {
	return &absenceRepository{pool: pool}
}

const absenceColumns = `id, external_key, subject_id, kind, period_start, period_end, duration_hours,
               status, comment, scheduling_impact,
               level1_validator_id, level1_validated_at, level2_validator_id, level2_validated_at,
               created_by, updated_by, created_at, updated_at`

func (r *absenceRepository) Create(ctx context.Context, request *domain.AbsenceRequest) error {
	const query = `
        INSERT INTO absence_requests (external_key, subject_id, kind, period_start, period_end, duration_hours,
            status, comment, scheduling_impact,
            level1_validator_id, level1_validated_at, level2_validator_id, level2_validated_at,
            created_by, updated_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.ExternalKey,
		request.SubjectID,
		request.Kind,
		request.Period.Start,
		request.Period.End,
		request.Period.DurationHours,
		request.Status,
		request.Comment,
		request.SchedulingImpact,
		request.Level1ValidatorID,
		request.Level1ValidatedAt,
		request.Level2ValidatorID,
		request.Level2ValidatedAt,
		request.CreatedBy,
		request.UpdatedBy,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *absenceRepository) GetByID(ctx context.Context, id string) (*domain.AbsenceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM absence_requests WHERE id=$1`, absenceColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanAbsence(row)
}

func (r *absenceRepository) UpdateStatusIf(ctx context.Context, id string, expected domain.AbsenceStatus, update StatusUpdate) (*domain.AbsenceRequest, error) {
	query := fmt.Sprintf(`
        UPDATE absence_requests
        SET status=$1, scheduling_impact=$2,
            level1_validator_id=COALESCE($3, level1_validator_id),
            level1_validated_at=COALESCE($4, level1_validated_at),
            level2_validator_id=COALESCE($5, level2_validator_id),
            level2_validated_at=COALESCE($6, level2_validated_at),
            updated_by=$7, updated_at=NOW()
        WHERE id=$8 AND status=$9
        RETURNING %s`, absenceColumns)
	row := r.pool.QueryRow(ctx, query,
		update.NewStatus,
		update.SchedulingImpact,
		update.Level1ValidatorID,
		update.Level1ValidatedAt,
		update.Level2ValidatorID,
		update.Level2ValidatedAt,
		update.UpdatedBy,
		id,
		expected,
	)
	request, err := scanAbsence(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrStatusMismatch
		}
		return nil, err
	}
	return request, nil
}

func (r *absenceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM absence_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *absenceRepository) ListWithFilter(ctx context.Context, filter AbsenceFilter) ([]domain.AbsenceRequest, error) {
	base := fmt.Sprintf(`SELECT %s FROM absence_requests`, absenceColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		clauses = append(clauses, fmt.Sprintf("subject_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Kinds) > 0 {
		placeholders := make([]string, len(filter.Kinds))
		for i, kind := range filter.Kinds {
			args = append(args, kind)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("kind IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.PeriodFrom != nil {
		args = append(args, *filter.PeriodFrom)
		clauses = append(clauses, fmt.Sprintf("period_end >= $%d", len(args)))
	}
	if filter.PeriodTo != nil {
		args = append(args, *filter.PeriodTo)
		clauses = append(clauses, fmt.Sprintf("period_start <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY period_start DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AbsenceRequest
	for rows.Next() {
		request, err := scanAbsence(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}

func scanAbsence(row pgx.Row) (*domain.AbsenceRequest, error) {
	var request domain.AbsenceRequest
	if err := row.Scan(
		&request.ID,
		&request.ExternalKey,
		&request.SubjectID,
		&request.Kind,
		&request.Period.Start,
		&request.Period.End,
		&request.Period.DurationHours,
		&request.Status,
		&request.Comment,
		&request.SchedulingImpact,
		&request.Level1ValidatorID,
		&request.Level1ValidatedAt,
		&request.Level2ValidatorID,
		&request.Level2ValidatedAt,
		&request.CreatedBy,
		&request.UpdatedBy,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

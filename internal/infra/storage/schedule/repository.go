package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/pkg/dbmetrics"
	"github.com/m04kA/agenda-core/pkg/psqlbuilder"
)

// Repository репозиторий конфигурации календаря: рабочие часы,
// повторяющиеся перерывы и датированные исключения
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusinessHours возвращает рабочие часы всех дней недели
func (r *Repository) GetBusinessHours(ctx context.Context) ([]domain.BusinessHour, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "day_of_week", "start_time", "end_time", "is_active", "created_at", "updated_at",
	).
		From("business_hours").
		OrderBy("day_of_week ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	hours := make([]domain.BusinessHour, 0, 7)
	for rows.Next() {
		var bh domain.BusinessHour
		var day int
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(&bh.ID, &day, &bh.StartTime, &bh.EndTime, &bh.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetBusinessHours - scan row: %v", ErrScanRow, err)
		}
		bh.DayOfWeek = time.Weekday(day)
		bh.CreatedAt = createdAt.Time
		bh.UpdatedAt = updatedAt.Time
		hours = append(hours, bh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - rows error: %v", ErrScanRow, err)
	}

	return hours, nil
}

// UpsertBusinessHour создает или обновляет рабочие часы дня недели.
// На день недели существует не более одной записи.
func (r *Repository) UpsertBusinessHour(ctx context.Context, bh *domain.BusinessHour) (*domain.BusinessHour, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("business_hours").
		Columns("day_of_week", "start_time", "end_time", "is_active").
		Values(int(bh.DayOfWeek), bh.StartTime, bh.EndTime, bh.IsActive).
		Suffix(`ON CONFLICT (day_of_week) DO UPDATE
			SET start_time = EXCLUDED.start_time,
			    end_time = EXCLUDED.end_time,
			    is_active = EXCLUDED.is_active,
			    updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHour - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&bh.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHour - execute upsert: %v", ErrExecQuery, err)
	}
	bh.CreatedAt = createdAt.Time
	bh.UpdatedAt = updatedAt.Time

	return bh, nil
}

// ListBreaks возвращает все повторяющиеся перерывы
func (r *Repository) ListBreaks(ctx context.Context) ([]domain.RecurringBreak, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "start_time", "end_time", "recurrence_type", "specific_days", "created_at", "updated_at",
	).
		From("recurring_breaks").
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBreaks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBreaks - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	breaks := make([]domain.RecurringBreak, 0)
	for rows.Next() {
		var b domain.RecurringBreak
		var days pq.Int64Array
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(&b.ID, &b.StartTime, &b.EndTime, &b.RecurrenceType, &days, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListBreaks - scan row: %v", ErrScanRow, err)
		}
		b.SpecificDays = make([]time.Weekday, 0, len(days))
		for _, d := range days {
			b.SpecificDays = append(b.SpecificDays, time.Weekday(d))
		}
		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time
		breaks = append(breaks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBreaks - rows error: %v", ErrScanRow, err)
	}

	return breaks, nil
}

// CreateBreak создает повторяющийся перерыв
func (r *Repository) CreateBreak(ctx context.Context, b *domain.RecurringBreak) (*domain.RecurringBreak, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	days := make(pq.Int64Array, 0, len(b.SpecificDays))
	for _, d := range b.SpecificDays {
		days = append(days, int64(d))
	}

	query, args, err := psqlbuilder.Insert("recurring_breaks").
		Columns("start_time", "end_time", "recurrence_type", "specific_days").
		Values(b.StartTime, b.EndTime, b.RecurrenceType, days).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBreak - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateBreak - execute insert: %v", ErrExecQuery, err)
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// DeleteBreak удаляет перерыв по ID
func (r *Repository) DeleteBreak(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "recurring_breaks", id, "DeleteBreak")
}

// ListExceptions возвращает все датированные исключения расписания
func (r *Repository) ListExceptions(ctx context.Context) ([]domain.ScheduleException, error) {
	return r.selectExceptions(ctx, nil)
}

// ListExceptionsCovering возвращает исключения, покрывающие дату
func (r *Repository) ListExceptionsCovering(ctx context.Context, date time.Time) ([]domain.ScheduleException, error) {
	return r.selectExceptions(ctx, &date)
}

// CreateException создает датированное исключение
func (r *Repository) CreateException(ctx context.Context, e *domain.ScheduleException) (*domain.ScheduleException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_exceptions").
		Columns("start_date", "end_date", "type", "special_start_time", "special_end_time", "reason").
		Values(e.StartDate, e.EndDate, e.Type, e.SpecialStartTime, e.SpecialEndTime, e.Reason).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateException - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateException - execute insert: %v", ErrExecQuery, err)
	}
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return e, nil
}

// DeleteException удаляет исключение по ID
func (r *Repository) DeleteException(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "schedule_exceptions", id, "DeleteException")
}

func (r *Repository) selectExceptions(ctx context.Context, covering *time.Time) ([]domain.ScheduleException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(
		"id", "start_date", "end_date", "type", "special_start_time", "special_end_time", "reason", "created_at", "updated_at",
	).
		From("schedule_exceptions").
		OrderBy("start_date ASC")

	if covering != nil {
		builder = builder.
			Where(squirrel.LtOrEq{"start_date": *covering}).
			Where(squirrel.GtOrEq{"end_date": *covering})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: selectExceptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: selectExceptions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]domain.ScheduleException, 0)
	for rows.Next() {
		var e domain.ScheduleException
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&e.ID,
			&e.StartDate,
			&e.EndDate,
			&e.Type,
			&e.SpecialStartTime,
			&e.SpecialEndTime,
			&e.Reason,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: selectExceptions - scan row: %v", ErrScanRow, err)
		}
		e.CreatedAt = createdAt.Time
		e.UpdatedAt = updatedAt.Time
		exceptions = append(exceptions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: selectExceptions - rows error: %v", ErrScanRow, err)
	}

	return exceptions, nil
}

func (r *Repository) deleteByID(ctx context.Context, table string, id int64, method string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build delete query: %v", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute delete: %v", ErrExecQuery, method, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

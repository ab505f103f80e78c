package resource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/pkg/dbmetrics"
	"github.com/m04kA/agenda-core/pkg/psqlbuilder"
)

// Repository репозиторий ресурсов (мастеров)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория ресурсов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListActive возвращает активные ресурсы в порядке сортировки.
// Порядок важен: авто-назначение использует его как tie-break.
func (r *Repository) ListActive(ctx context.Context) ([]*domain.Resource, error) {
	return r.list(ctx, true)
}

// List возвращает все ресурсы в порядке сортировки
func (r *Repository) List(ctx context.Context) ([]*domain.Resource, error) {
	return r.list(ctx, false)
}

// GetByID получает ресурс по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "name", "is_active", "sort_order", "created_at", "updated_at",
	).
		From("resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var res domain.Resource
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID, &res.Name, &res.IsActive, &res.SortOrder, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan resource: %v", ErrScanRow, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

func (r *Repository) list(ctx context.Context, activeOnly bool) ([]*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(
		"id", "name", "is_active", "sort_order", "created_at", "updated_at",
	).
		From("resources").
		OrderBy("sort_order ASC, id ASC")

	if activeOnly {
		builder = builder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: list - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	resources := make([]*domain.Resource, 0)
	for rows.Next() {
		var res domain.Resource
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(&res.ID, &res.Name, &res.IsActive, &res.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: list - scan row: %v", ErrScanRow, err)
		}
		res.CreatedAt = createdAt.Time
		res.UpdatedAt = updatedAt.Time
		resources = append(resources, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list - rows error: %v", ErrScanRow, err)
	}

	return resources, nil
}

package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/pkg/dbmetrics"
	"github.com/m04kA/agenda-core/pkg/psqlbuilder"
)

// Repository репозиторий каталога услуг
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByIDs возвращает услуги по списку идентификаторов.
// Если хотя бы одна услуга не найдена, возвращает ErrServiceNotFound.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Service, error) {
	if len(ids) == 0 {
		return []*domain.Service{}, nil
	}

	services, err := r.list(ctx, squirrel.Eq{"id": ids})
	if err != nil {
		return nil, err
	}

	// Сохраняем порядок запрошенных идентификаторов
	byID := make(map[int64]*domain.Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	ordered := make([]*domain.Service, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id=%d", ErrServiceNotFound, id)
		}
		ordered = append(ordered, s)
	}

	return ordered, nil
}

// ListActive возвращает все активные услуги
func (r *Repository) ListActive(ctx context.Context) ([]*domain.Service, error) {
	return r.list(ctx, squirrel.Eq{"is_active": true})
}

func (r *Repository) list(ctx context.Context, where interface{}) ([]*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "name", "duration_minutes", "price", "requires_deposit", "is_active", "created_at", "updated_at",
	).
		From("services").
		Where(where).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: list - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		var s domain.Service
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&s.ID, &s.Name, &s.DurationMinutes, &s.Price, &s.RequiresDeposit, &s.IsActive, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: list - scan row: %v", ErrScanRow, err)
		}
		s.CreatedAt = createdAt.Time
		s.UpdatedAt = updatedAt.Time
		services = append(services, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

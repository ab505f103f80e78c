package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/pkg/dbmetrics"
	"github.com/m04kA/agenda-core/pkg/psqlbuilder"
)

var appointmentColumns = []string{
	"id",
	"group_id",
	"service_id",
	"resource_id",
	"date",
	"start_time",
	"duration_minutes",
	"status",
	"hold_expires_at",
	"payment_token",
	"amount",
	"paid_amount",
	"service_name",
	"client_name",
	"client_phone",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий журнала записей (appointments)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateGroup вставляет все позиции группы одним запросом.
// Вызывается только внутри сериализуемой транзакции (см. usecase создания):
// проверка пересечений и вставка должны быть одной атомарной единицей.
func (r *Repository) CreateGroup(ctx context.Context, items []*domain.Appointment) ([]*domain.Appointment, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: CreateGroup - empty group", ErrBuildQuery)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("appointments").
		Columns(
			"group_id",
			"service_id",
			"resource_id",
			"date",
			"start_time",
			"duration_minutes",
			"status",
			"hold_expires_at",
			"payment_token",
			"amount",
			"paid_amount",
			"service_name",
			"client_name",
			"client_phone",
			"notes",
		)

	for _, it := range items {
		builder = builder.Values(
			it.GroupID,
			it.ServiceID,
			it.ResourceID,
			it.Date,
			it.StartTime,
			it.DurationMinutes,
			it.Status,
			it.HoldExpiresAt,
			it.PaymentToken,
			it.Amount,
			it.PaidAmount,
			it.ServiceName,
			it.ClientName,
			it.ClientPhone,
			it.Notes,
		)
	}

	query, args, err := builder.
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateGroup - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateGroup - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	// RETURNING отдает строки в порядке VALUES
	i := 0
	for rows.Next() {
		if i >= len(items) {
			break
		}
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&items[i].ID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: CreateGroup - scan returning: %v", ErrScanRow, err)
		}
		items[i].CreatedAt = createdAt.Time
		items[i].UpdatedAt = updatedAt.Time
		i++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CreateGroup - rows error: %v", ErrScanRow, err)
	}

	return items, nil
}

// GetGroup получает все позиции группы, отсортированные по id
func (r *Repository) GetGroup(ctx context.Context, groupID string) ([]*domain.Appointment, error) {
	return r.selectItems(ctx, squirrel.Eq{"group_id": groupID}, "id ASC", false)
}

// GetGroupByToken получает все позиции группы по платежному токену
func (r *Repository) GetGroupByToken(ctx context.Context, token string) ([]*domain.Appointment, error) {
	return r.selectItems(ctx, squirrel.Eq{"payment_token": token}, "id ASC", false)
}

// ListByDate получает записи на дату, опционально для конкретного ресурса.
// Если includeInactive = false, отмененные и истекшие записи исключаются.
// Внутри транзакции добавляет FOR UPDATE: чтение дня блокирует конкурентные
// вставки на те же интервалы до конца транзакции.
func (r *Repository) ListByDate(ctx context.Context, date time.Time, resourceID *int64, includeInactive bool) ([]*domain.Appointment, error) {
	conds := squirrel.And{squirrel.Eq{"date": date}}
	if resourceID != nil {
		conds = append(conds, squirrel.Eq{"resource_id": *resourceID})
	}
	if !includeInactive {
		inactive := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactive[i] = string(s)
		}
		conds = append(conds, squirrel.NotEq{"status": inactive})
	}

	return r.selectItems(ctx, conds, "start_time ASC, id ASC", dbmetrics.IsInTransaction(ctx))
}

// MarkAwaitingPayment переводит группу pendiente -> esperando_pago,
// устанавливая срок удержания и платежный токен всем позициям атомарно
func (r *Repository) MarkAwaitingPayment(ctx context.Context, groupID string, holdExpiresAt time.Time, token string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusEsperandoPago).
		Set("hold_expires_at", holdExpiresAt).
		Set("payment_token", token).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"group_id": groupID, "status": domain.StatusPendiente}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkAwaitingPayment - build update query: %v", ErrBuildQuery, err)
	}

	return r.execGroupUpdate(ctx, executor, query, args, "MarkAwaitingPayment")
}

// SetGroupStatus условно переводит группу из статуса from в to,
// всегда очищая поля удержания. markPaid дополнительно фиксирует оплату.
func (r *Repository) SetGroupStatus(ctx context.Context, groupID string, from, to domain.AppointmentStatus, markPaid bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("appointments").
		Set("status", to).
		Set("hold_expires_at", nil).
		Set("payment_token", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"group_id": groupID, "status": from})

	if markPaid {
		builder = builder.Set("paid_amount", squirrel.Expr("amount"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetGroupStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execGroupUpdate(ctx, executor, query, args, "SetGroupStatus")
}

// CancelGroup условно отменяет группу с указанием причины
func (r *Repository) CancelGroup(ctx context.Context, groupID string, from domain.AppointmentStatus, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelada).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("hold_expires_at", nil).
		Set("payment_token", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"group_id": groupID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: CancelGroup - build update query: %v", ErrBuildQuery, err)
	}

	return r.execGroupUpdate(ctx, executor, query, args, "CancelGroup")
}

// ListExpiredHoldGroupIDs возвращает group_id всех групп с истекшим удержанием.
// Запрос идемпотентен: уже истекшие группы в выборку не попадают.
func (r *Repository) ListExpiredHoldGroupIDs(ctx context.Context, now time.Time) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT group_id").
		From("appointments").
		Where(squirrel.Eq{"status": domain.StatusEsperandoPago}).
		Where(squirrel.LtOrEq{"hold_expires_at": now}).
		OrderBy("group_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredHoldGroupIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredHoldGroupIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListExpiredHoldGroupIDs - scan group_id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExpiredHoldGroupIDs - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

// ExpireGroup переводит группу esperando_pago -> expirada, если срок
// удержания действительно истек. Возвращает затронутые позиции; пустой
// результат означает, что группу уже обработал другой экземпляр.
func (r *Repository) ExpireGroup(ctx context.Context, groupID string, now time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusExpirada).
		Set("hold_expires_at", nil).
		Set("payment_token", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"group_id": groupID, "status": domain.StatusEsperandoPago}).
		Where(squirrel.LtOrEq{"hold_expires_at": now}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ExpireGroup - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpireGroup - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanItems(rows)
}

// DeleteGroup физически удаляет все позиции группы.
// Используется только для явного пользовательского удаления.
func (r *Repository) DeleteGroup(ctx context.Context, groupID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("appointments").
		Where(squirrel.Eq{"group_id": groupID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteGroup - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteGroup - execute delete: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteGroup - get rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrGroupNotFound
	}

	return nil
}

// execGroupUpdate выполняет условное групповое обновление.
// Ноль затронутых строк означает, что статус группы изменился конкурентно.
func (r *Repository) execGroupUpdate(ctx context.Context, executor DBExecutor, query string, args []interface{}, method string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if affected == 0 {
		return ErrGroupStateChanged
	}

	return nil
}

func (r *Repository) selectItems(ctx context.Context, where interface{}, orderBy string, forUpdate bool) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(where).
		OrderBy(orderBy)

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: selectItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: selectItems - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanItems(rows)
}

// scanItems сканирует результаты запроса в слайс записей
func (r *Repository) scanItems(rows *sql.Rows) ([]*domain.Appointment, error) {
	items := make([]*domain.Appointment, 0)

	for rows.Next() {
		var item domain.Appointment
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&item.ID,
			&item.GroupID,
			&item.ServiceID,
			&item.ResourceID,
			&item.Date,
			&item.StartTime,
			&item.DurationMinutes,
			&item.Status,
			&item.HoldExpiresAt,
			&item.PaymentToken,
			&item.Amount,
			&item.PaidAmount,
			&item.ServiceName,
			&item.ClientName,
			&item.ClientPhone,
			&item.Notes,
			&item.CancellationReason,
			&item.CancelledAt,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanItems - scan row: %v", ErrScanRow, err)
		}

		item.CreatedAt = createdAt.Time
		item.UpdatedAt = updatedAt.Time

		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanItems - rows error: %v", ErrScanRow, err)
	}

	return items, nil
}

func columnList() string {
	return strings.Join(appointmentColumns, ", ")
}

package paymentevent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	"github.com/staypoint/STP-ReservationService/pkg/dbmetrics"
	"github.com/staypoint/STP-ReservationService/pkg/psqlbuilder"
)

const pgUniqueViolation = "23505"

var eventColumns = []string{
	"id",
	"event_id",
	"event_type",
	"payload",
	"booking_id",
	"processed",
	"processing_attempts",
	"last_error",
	"created_at",
	"updated_at",
}

// Repository append-only журнал событий платёжного шлюза
//
// Строки создаются до запуска бизнес-логики и никогда не удаляются;
// мутируются только processed / processing_attempts / last_error / booking_id
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория событий
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert записывает входящее событие шлюза
// Нарушение уникальности event_id маппится в ErrDuplicateEvent
func (r *Repository) Insert(ctx context.Context, e *domain.PaymentEvent) (*domain.PaymentEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payment_events").
		Columns(
			"event_id",
			"event_type",
			"payload",
			"booking_id",
			"processed",
			"processing_attempts",
		).
		Values(
			e.EventID,
			e.EventType,
			e.Payload,
			e.BookingID,
			false,
			0,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&e.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrDuplicateEvent
		}
		return nil, fmt.Errorf("%w: Insert - execute insert: %v", ErrExecQuery, err)
	}

	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return e, nil
}

// GetByEventID получает событие по внешнему event_id шлюза
func (r *Repository) GetByEventID(ctx context.Context, eventID string) (*domain.PaymentEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(eventColumns...).
		From("payment_events").
		Where(squirrel.Eq{"event_id": eventID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByEventID - build select query: %v", ErrBuildQuery, err)
	}

	var e domain.PaymentEvent
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&e.ID,
		&e.EventID,
		&e.EventType,
		&e.Payload,
		&e.BookingID,
		&e.Processed,
		&e.ProcessingAttempts,
		&e.LastError,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEventID - scan event: %v", ErrScanRow, err)
	}

	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return &e, nil
}

// MarkProcessed помечает событие обработанным и привязывает его к бронированию
func (r *Repository) MarkProcessed(ctx context.Context, eventID string, bookingID *int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("payment_events").
		Set("processed", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"event_id": eventID})

	if bookingID != nil {
		updateBuilder = updateBuilder.Set("booking_id", *bookingID)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkProcessed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkProcessed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkProcessed - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// RecordFailure инкрементирует счётчик попыток и сохраняет последнюю ошибку
// Возвращает новое значение processing_attempts
func (r *Repository) RecordFailure(ctx context.Context, eventID string, lastError string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_events").
		Set("processing_attempts", squirrel.Expr("processing_attempts + 1")).
		Set("last_error", lastError).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"event_id": eventID}).
		Suffix("RETURNING processing_attempts").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: RecordFailure - build update query: %v", ErrBuildQuery, err)
	}

	var attempts int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrEventNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: RecordFailure - scan attempts: %v", ErrScanRow, err)
	}

	return attempts, nil
}

// ListUnprocessed возвращает необработанные события с числом попыток >= minAttempts
// Используется для операторского разбора зависших событий
func (r *Repository) ListUnprocessed(ctx context.Context, minAttempts int) ([]*domain.PaymentEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(eventColumns...).
		From("payment_events").
		Where(squirrel.Eq{"processed": false}).
		Where(squirrel.GtOrEq{"processing_attempts": minAttempts}).
		OrderBy("created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListUnprocessed - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnprocessed - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.PaymentEvent, 0)
	for rows.Next() {
		var e domain.PaymentEvent
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.EventType,
			&e.Payload,
			&e.BookingID,
			&e.Processed,
			&e.ProcessingAttempts,
			&e.LastError,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListUnprocessed - scan row: %v", ErrScanRow, err)
		}

		e.CreatedAt = createdAt.Time
		e.UpdatedAt = updatedAt.Time
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListUnprocessed - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

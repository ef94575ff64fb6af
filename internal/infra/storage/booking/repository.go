package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	"github.com/staypoint/STP-ReservationService/pkg/dbmetrics"
	"github.com/staypoint/STP-ReservationService/pkg/psqlbuilder"
)

// Код ошибки PostgreSQL exclusion_violation
const pgExclusionViolation = "23P01"

// bookingColumns полный список колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"property_id",
	"guest_id",
	"guest_name",
	"guest_email",
	"check_in",
	"check_out",
	"guests",
	"nightly_rate",
	"cleaning_fee",
	"service_fee",
	"total_amount",
	"currency",
	"status",
	"payment_status",
	"payment_session_ref",
	"payment_intent_ref",
	"refund_amount",
	"refund_reason",
	"refunded_at",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
//
// Все мутации статусов выполняются условными UPDATE'ами с guard'ом по
// текущему состоянию: нулевое число затронутых строк означает, что переход
// нелегален (ErrStaleState). Инвариант непересечения активных бронирований
// дополнительно держит exclusion constraint в БД (см. migrations/0001_init.sql)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет новое бронирование в состоянии pending/pending
//
// При пересечении диапазона с активной бронью того же объекта БД отклонит
// вставку exclusion constraint'ом - это маппится в ErrRangeConflict.
// Constraint работает и без транзакции, но create-флоу держит
// проверку доступности и вставку в одной сериализуемой транзакции
// с блокировкой строк (см. usecase create_booking)
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"property_id",
			"guest_id",
			"guest_name",
			"guest_email",
			"check_in",
			"check_out",
			"guests",
			"nightly_rate",
			"cleaning_fee",
			"service_fee",
			"total_amount",
			"currency",
			"status",
			"payment_status",
		).
		Values(
			b.PropertyID,
			b.GuestID,
			b.GuestName,
			b.GuestEmail,
			b.CheckIn,
			b.CheckOut,
			b.Guests,
			b.NightlyRate,
			b.CleaningFee,
			b.ServiceFee,
			b.TotalAmount,
			b.Currency,
			b.Status,
			b.PaymentStatus,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isPQError(err, pgExclusionViolation) {
			return nil, ErrRangeConflict
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByPaymentRef находит бронирование по ссылке платёжной сессии
// или платёжного intent'а. Используется реконсайлером вебхуков
func (r *Repository) GetByPaymentRef(ctx context.Context, ref string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Or{
			squirrel.Eq{"payment_session_ref": ref},
			squirrel.Eq{"payment_intent_ref": ref},
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByPaymentRef - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByPaymentRef")
}

// GetOverlapping получает активные бронирования объекта, пересекающиеся
// с кандидатским диапазоном (полуоткрытые интервалы: checkout == checkin
// соседней брони пересечением не считается)
//
// Внутри транзакции добавляет FOR UPDATE, чтобы create-флоу
// сериализовал конкурентные бронирования одного объекта
func (r *Repository) GetOverlapping(ctx context.Context, propertyID int64, candidate domain.DateRange) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"property_id": propertyID}).
		Where(squirrel.Eq{"status": calendarStatusStrings()}).
		Where(squirrel.Lt{"check_in": candidate.CheckOut}).
		Where(squirrel.Gt{"check_out": candidate.CheckIn}).
		OrderBy("check_in ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByGuestID получает бронирования гостя, опционально фильтруя по статусу
func (r *Repository) GetByGuestID(ctx context.Context, guestID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"guest_id": guestID}).
		OrderBy("check_in DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*status)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGuestID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGuestID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// BeginPayment переводит payment_status в processing и записывает ссылку сессии
//
// Guard допускает повторный вызов с той же ссылкой (идемпотентный no-op)
// и повторную оплату после failed: слот держится за гостем до TTL-свипа,
// поэтому неуспешная оплата не хоронит бронь. Ссылки прежней попытки
// затираются новой сессией. Любой другой исходный статус даёт ErrStaleState
func (r *Repository) BeginPayment(ctx context.Context, id int64, sessionRef string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", domain.PaymentProcessing).
		Set("payment_session_ref", sessionRef).
		Set("payment_intent_ref", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"payment_status": []string{
				string(domain.PaymentPending),
				string(domain.PaymentFailed),
			}},
			squirrel.And{
				squirrel.Eq{"payment_status": domain.PaymentProcessing},
				squirrel.Eq{"payment_session_ref": sessionRef},
			},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: BeginPayment - build update query: %v", ErrBuildQuery, err)
	}

	return r.execGuarded(ctx, executor, query, args, "BeginPayment")
}

// ConfirmPayment переводит бронирование в confirmed/succeeded
// Легально только из status=pending и payment_status in (pending, processing)
func (r *Repository) ConfirmPayment(ctx context.Context, id int64, intentRef *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusConfirmed).
		Set("payment_status", domain.PaymentSucceeded).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Eq{"payment_status": []string{
			string(domain.PaymentPending),
			string(domain.PaymentProcessing),
		}})

	if intentRef != nil {
		updateBuilder = updateBuilder.Set("payment_intent_ref", *intentRef)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ConfirmPayment - build update query: %v", ErrBuildQuery, err)
	}

	return r.execGuarded(ctx, executor, query, args, "ConfirmPayment")
}

// FailPayment переводит payment_status в failed
// status остаётся pending: слот удерживается до TTL-свипа
func (r *Repository) FailPayment(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", domain.PaymentFailed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"payment_status": []string{
			string(domain.PaymentPending),
			string(domain.PaymentProcessing),
		}}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: FailPayment - build update query: %v", ErrBuildQuery, err)
	}

	return r.execGuarded(ctx, executor, query, args, "FailPayment")
}

// Cancel переводит бронирование в cancelled с указанием причины
// Легально из pending или confirmed
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []string{
			string(domain.StatusPending),
			string(domain.StatusConfirmed),
		}}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execGuarded(ctx, executor, query, args, "Cancel")
}

// RecordRefund записывает возврат и переводит payment_status в refunded
// Легально только из succeeded
func (r *Repository) RecordRefund(ctx context.Context, id int64, amount int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", domain.PaymentRefunded).
		Set("refund_amount", amount).
		Set("refund_reason", reason).
		Set("refunded_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"payment_status": domain.PaymentSucceeded}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RecordRefund - build update query: %v", ErrBuildQuery, err)
	}

	return r.execGuarded(ctx, executor, query, args, "RecordRefund")
}

// ExpirePending отменяет зависшие pending-бронирования старше olderThan,
// чей платёж так и не дошёл до терминального состояния
// Возвращает ID отменённых бронирований
func (r *Repository) ExpirePending(ctx context.Context, olderThan time.Time, reason string) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Eq{"payment_status": []string{
			string(domain.PaymentPending),
			string(domain.PaymentProcessing),
			string(domain.PaymentFailed),
		}}).
		Where(squirrel.Lt{"created_at": olderThan}).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - build update query: %v", ErrBuildQuery, err)
	}

	return r.queryIDs(ctx, executor, query, args, "ExpirePending")
}

// CompleteElapsed переводит подтверждённые бронирования с прошедшей
// датой выезда в completed. Возвращает ID завершённых бронирований
func (r *Repository) CompleteElapsed(ctx context.Context, today time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.LtOrEq{"check_out": today}).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CompleteElapsed - build update query: %v", ErrBuildQuery, err)
	}

	return r.queryIDs(ctx, executor, query, args, "CompleteElapsed")
}

// execGuarded выполняет условный UPDATE; 0 затронутых строк = ErrStaleState
func (r *Repository) execGuarded(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrStaleState
	}

	return nil
}

// queryIDs выполняет запрос с RETURNING id и собирает список ID
func (r *Repository) queryIDs(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string) ([]int64, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %s - scan id: %v", ErrScanRow, op, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return ids, nil
}

// scanOne сканирует одну строку в бронирование
func (r *Repository) scanOne(row *sql.Row, op string) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.PropertyID,
		&b.GuestID,
		&b.GuestName,
		&b.GuestEmail,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&b.NightlyRate,
		&b.CleaningFee,
		&b.ServiceFee,
		&b.TotalAmount,
		&b.Currency,
		&b.Status,
		&b.PaymentStatus,
		&b.PaymentSessionRef,
		&b.PaymentIntentRef,
		&b.RefundAmount,
		&b.RefundReason,
		&b.RefundedAt,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&b.PropertyID,
			&b.GuestID,
			&b.GuestName,
			&b.GuestEmail,
			&b.CheckIn,
			&b.CheckOut,
			&b.Guests,
			&b.NightlyRate,
			&b.CleaningFee,
			&b.ServiceFee,
			&b.TotalAmount,
			&b.Currency,
			&b.Status,
			&b.PaymentStatus,
			&b.PaymentSessionRef,
			&b.PaymentIntentRef,
			&b.RefundAmount,
			&b.RefundReason,
			&b.RefundedAt,
			&b.CancellationReason,
			&b.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// calendarStatusStrings статусы, занимающие календарь, как []string для IN
func calendarStatusStrings() []string {
	statuses := make([]string, len(domain.CalendarStatuses))
	for i, s := range domain.CalendarStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// isPQError проверяет код ошибки PostgreSQL
func isPQError(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

// Package worker фоновые обходы бронирований
package worker

import (
	"context"
	"time"

	"github.com/staypoint/STP-ReservationService/internal/domain"
)

// LifecycleService переходы машины состояний, выполняемые по расписанию
type LifecycleService interface {
	ReleaseExpired(ctx context.Context, ttl time.Duration, now time.Time) ([]int64, error)
	CompleteElapsed(ctx context.Context, now time.Time) ([]int64, error)
}

// PaymentEventRepository доступ к журналу платёжных событий
type PaymentEventRepository interface {
	ListUnprocessed(ctx context.Context, minAttempts int) ([]*domain.PaymentEvent, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sweeper периодически освобождает просроченные pending-брони,
// завершает подтверждённые брони с прошедшей датой выезда и
// сигнализирует о событиях шлюза, исчерпавших лимит попыток
//
// Каждый проход независим: ошибка одного шага логируется и не мешает
// ни остальным шагам, ни следующему тику
type Sweeper struct {
	lifecycle   LifecycleService
	events      PaymentEventRepository
	ttl         time.Duration
	interval    time.Duration
	maxAttempts int
	logger      Logger
}

// NewSweeper создает новый экземпляр свипера
func NewSweeper(
	lifecycle LifecycleService,
	events PaymentEventRepository,
	ttl, interval time.Duration,
	maxAttempts int,
	logger Logger,
) *Sweeper {
	return &Sweeper{
		lifecycle:   lifecycle,
		events:      events,
		ttl:         ttl,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Run запускает цикл обходов; блокирует до отмены контекста
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Sweeper: started, ttl=%s interval=%s", s.ttl, s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Первый проход сразу, не дожидаясь тика
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep один проход: TTL-освобождение, завершение прошедших броней
// и сигнал о зависших платёжных событиях
func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()

	released, err := s.lifecycle.ReleaseExpired(ctx, s.ttl, now)
	if err != nil {
		s.logger.Error("Sweeper: failed to release expired bookings: %v", err)
	} else if len(released) > 0 {
		s.logger.Info("Sweeper: released %d expired booking(s)", len(released))
	}

	completed, err := s.lifecycle.CompleteElapsed(ctx, now)
	if err != nil {
		s.logger.Error("Sweeper: failed to complete elapsed bookings: %v", err)
	} else if len(completed) > 0 {
		s.logger.Info("Sweeper: completed %d elapsed booking(s)", len(completed))
	}

	// События, которые редоставка уже не спасёт: нужен разбор оператором
	stuck, err := s.events.ListUnprocessed(ctx, s.maxAttempts)
	if err != nil {
		s.logger.Error("Sweeper: failed to list unprocessed payment events: %v", err)
	} else if len(stuck) > 0 {
		s.logger.Warn("Sweeper: %d payment event(s) exhausted processing attempts and need triage", len(stuck))
	}
}

package holdsweeper

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
)

// Sweeper фоновый обработчик просроченных платежных hold'ов.
// Периодически переводит группы esperando_pago с истекшим сроком в expirada,
// освобождая их интервалы. Каждый запуск идемпотентен: условный UPDATE
// пропускает группы, уже обработанные параллельным экземпляром или
// оплаченные между выборкой и апдейтом.
type Sweeper struct {
	apptRepo     AppointmentRepository
	publisher    EventPublisher
	metrics      Metrics
	timeProvider TimeProvider
	interval     time.Duration
	logger       Logger

	// Защита от наложения запусков при медленной базе
	running atomic.Bool
}

// NewSweeper создает новый экземпляр sweeper'а
func NewSweeper(
	apptRepo AppointmentRepository,
	publisher EventPublisher,
	metrics Metrics,
	intervalSeconds int,
	logger Logger,
) *Sweeper {
	return &Sweeper{
		apptRepo:     apptRepo,
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		interval:     time.Duration(intervalSeconds) * time.Second,
		logger:       logger,
	}
}

// Run запускает цикл очистки до отмены контекста.
// Первый проход выполняется сразу, чтобы подобрать hold'ы,
// истекшие за время простоя сервиса.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Sweeper: started, interval=%s", s.interval)

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep выполняет один проход: находит группы с истекшим hold
// и переводит каждую в expirada. Возвращает число истекших групп.
func (s *Sweeper) Sweep(ctx context.Context) int {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Sweeper: previous run still in progress, skipping")
		return 0
	}
	defer s.running.Store(false)

	s.metrics.IncSweeperRuns()
	now := s.timeProvider.Now()

	groupIDs, err := s.apptRepo.ListExpiredHoldGroupIDs(ctx, now)
	if err != nil {
		s.logger.Error("Sweeper: failed to list expired holds: %v", err)
		return 0
	}
	if len(groupIDs) == 0 {
		return 0
	}

	expired := 0
	for _, groupID := range groupIDs {
		items, err := s.apptRepo.ExpireGroup(ctx, groupID, now)
		if err != nil {
			s.logger.Error("Sweeper: failed to expire group=%s: %v", groupID, err)
			continue
		}
		// Пустой результат: группу оплатили или обработали параллельно
		if len(items) == 0 {
			continue
		}

		expired++
		s.logger.Info("Sweeper: group=%s expired, slot released", groupID)

		if group, err := domain.GroupFromItems(items); err == nil {
			s.publisher.HoldReleased(ctx, group)
		}
	}

	if expired > 0 {
		s.metrics.AddExpiredHolds(expired)
		s.logger.Info("Sweeper: expired %d of %d candidate groups", expired, len(groupIDs))
	}
	return expired
}

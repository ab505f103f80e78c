package holdsweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/agenda-core/internal/domain"
)

type fakeRepo struct {
	mu sync.Mutex
	// groupID -> items; nil items означает, что условный UPDATE
	// не затронул ни одной строки
	expirable map[string][]*domain.Appointment
	expired   []string

	blockExpire chan struct{} // если задан, ExpireGroup ждет сигнала
}

func (f *fakeRepo) ListExpiredHoldGroupIDs(context.Context, time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.expirable))
	for id := range f.expirable {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRepo) ExpireGroup(_ context.Context, groupID string, now time.Time) ([]*domain.Appointment, error) {
	if f.blockExpire != nil {
		<-f.blockExpire
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.expirable[groupID]
	delete(f.expirable, groupID)
	if items == nil {
		return nil, nil
	}

	for _, it := range items {
		it.Status = domain.StatusExpirada
	}
	f.expired = append(f.expired, groupID)
	return items, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	released []string
}

func (f *fakePublisher) HoldReleased(_ context.Context, group *domain.BookingGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, group.GroupID)
}

type countingMetrics struct {
	runs    int
	expired int
}

func (m *countingMetrics) IncSweeperRuns()       { m.runs++ }
func (m *countingMetrics) AddExpiredHolds(n int) { m.expired += n }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func groupItems(groupID string) []*domain.Appointment {
	return []*domain.Appointment{{
		ID: 1, GroupID: groupID, ServiceID: 1, ServiceName: "Corte",
		Date:      time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00", DurationMinutes: 30, Amount: 20,
		Status: domain.StatusEsperandoPago,
	}}
}

func TestSweep_ExpiresCandidates(t *testing.T) {
	repo := &fakeRepo{expirable: map[string][]*domain.Appointment{
		"g1": groupItems("g1"),
		"g2": groupItems("g2"),
	}}
	publisher := &fakePublisher{}
	metrics := &countingMetrics{}
	sweeper := NewSweeper(repo, publisher, metrics, 30, nopLogger{})

	n := sweeper.Sweep(context.Background())

	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"g1", "g2"}, repo.expired)
	assert.ElementsMatch(t, []string{"g1", "g2"}, publisher.released)
	assert.Equal(t, 1, metrics.runs)
	assert.Equal(t, 2, metrics.expired)
}

func TestSweep_NoCandidates(t *testing.T) {
	repo := &fakeRepo{expirable: map[string][]*domain.Appointment{}}
	publisher := &fakePublisher{}
	metrics := &countingMetrics{}
	sweeper := NewSweeper(repo, publisher, metrics, 30, nopLogger{})

	assert.Equal(t, 0, sweeper.Sweep(context.Background()))
	assert.Equal(t, 1, metrics.runs)
	assert.Equal(t, 0, metrics.expired)
}

func TestSweep_SkipsGroupsHandledConcurrently(t *testing.T) {
	// g2 числится кандидатом, но условный UPDATE возвращает пусто:
	// группу успели оплатить между выборкой и апдейтом
	repo := &fakeRepo{expirable: map[string][]*domain.Appointment{
		"g1": groupItems("g1"),
		"g2": nil,
	}}
	publisher := &fakePublisher{}
	sweeper := NewSweeper(repo, publisher, NopMetrics{}, 30, nopLogger{})

	n := sweeper.Sweep(context.Background())

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"g1"}, repo.expired)
	assert.Equal(t, []string{"g1"}, publisher.released)
}

func TestSweep_SingleFlight(t *testing.T) {
	block := make(chan struct{})
	repo := &fakeRepo{
		expirable:   map[string][]*domain.Appointment{"g1": groupItems("g1")},
		blockExpire: block,
	}
	metrics := &countingMetrics{}
	sweeper := NewSweeper(repo, &fakePublisher{}, metrics, 30, nopLogger{})

	done := make(chan int)
	go func() {
		done <- sweeper.Sweep(context.Background())
	}()

	// Ждем, пока первый проход займет флаг и повиснет на ExpireGroup
	require.Eventually(t, func() bool {
		return sweeper.running.Load()
	}, time.Second, time.Millisecond)

	// Наложившийся запуск пропускается без работы
	assert.Equal(t, 0, sweeper.Sweep(context.Background()))

	close(block)
	assert.Equal(t, 1, <-done)
	assert.Equal(t, 1, metrics.runs, "skipped run does not count")
}

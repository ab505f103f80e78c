package create_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/agenda-core/internal/domain"
	catalogRepo "github.com/m04kA/agenda-core/internal/infra/storage/catalog"
	resourceRepo "github.com/m04kA/agenda-core/internal/infra/storage/resource"
	"github.com/m04kA/agenda-core/pkg/ptr"
	"github.com/m04kA/agenda-core/pkg/types"
)

// 2026-03-16 - понедельник
var testDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

type fakeApptRepo struct {
	mu     sync.Mutex
	items  []*domain.Appointment
	nextID int64
}

func (f *fakeApptRepo) ListByDate(_ context.Context, date time.Time, resourceID *int64, includeInactive bool) ([]*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*domain.Appointment, 0)
	for _, it := range f.items {
		if !it.Date.Equal(date) {
			continue
		}
		if resourceID != nil && (it.ResourceID == nil || *it.ResourceID != *resourceID) {
			continue
		}
		if !includeInactive && !it.IsActive() {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeApptRepo) CreateGroup(_ context.Context, items []*domain.Appointment) ([]*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, it := range items {
		f.nextID++
		it.ID = f.nextID
		f.items = append(f.items, it)
	}
	return items, nil
}

type fakeScheduleRepo struct {
	exceptions []domain.ScheduleException
	breaks     []domain.RecurringBreak
}

func (f *fakeScheduleRepo) GetBusinessHours(context.Context) ([]domain.BusinessHour, error) {
	hours := make([]domain.BusinessHour, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours = append(hours, domain.BusinessHour{
			DayOfWeek: d, StartTime: "09:00", EndTime: "18:00", IsActive: true,
		})
	}
	return hours, nil
}

func (f *fakeScheduleRepo) ListBreaks(context.Context) ([]domain.RecurringBreak, error) {
	return f.breaks, nil
}

func (f *fakeScheduleRepo) ListExceptionsCovering(_ context.Context, date time.Time) ([]domain.ScheduleException, error) {
	out := make([]domain.ScheduleException, 0)
	for _, e := range f.exceptions {
		if e.Covers(date) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeResourceRepo struct {
	resources []*domain.Resource
}

func (f *fakeResourceRepo) ListActive(context.Context) ([]*domain.Resource, error) {
	out := make([]*domain.Resource, 0)
	for _, r := range f.resources {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResourceRepo) GetByID(_ context.Context, id int64) (*domain.Resource, error) {
	for _, r := range f.resources {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, resourceRepo.ErrResourceNotFound
}

type fakeCatalogRepo struct {
	services map[int64]*domain.Service
}

func (f *fakeCatalogRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.Service, error) {
	out := make([]*domain.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := f.services[id]
		if !ok {
			return nil, catalogRepo.ErrServiceNotFound
		}
		out = append(out, svc)
	}
	return out, nil
}

// serialTxManager сериализует транзакции мьютексом, имитируя serializable
// изоляцию для конкурентных тестов
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeGateway struct {
	verified bool
	tokens   []string
}

func (f *fakeGateway) Verify(_ context.Context, token string) (bool, error) {
	f.tokens = append(f.tokens, token)
	return f.verified, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	created []*domain.BookingGroup
}

func (f *fakePublisher) BookingCreated(_ context.Context, group *domain.BookingGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, group)
}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	uc        *UseCase
	apptRepo  *fakeApptRepo
	schedule  *fakeScheduleRepo
	resources *fakeResourceRepo
	gateway   *fakeGateway
	publisher *fakePublisher
}

func newFixture(t *testing.T, mode domain.BookingMode, resources ...*domain.Resource) *fixture {
	t.Helper()

	f := &fixture{
		apptRepo:  &fakeApptRepo{},
		schedule:  &fakeScheduleRepo{},
		resources: &fakeResourceRepo{resources: resources},
		gateway:   &fakeGateway{verified: true},
		publisher: &fakePublisher{},
	}
	catalog := &fakeCatalogRepo{services: map[int64]*domain.Service{
		1: {ID: 1, Name: "Corte", DurationMinutes: 30, Price: 20, IsActive: true},
		2: {ID: 2, Name: "Tinte", DurationMinutes: 45, Price: 35, IsActive: true},
		3: {ID: 3, Name: "Cerrado", DurationMinutes: 30, Price: 10, IsActive: false},
	}}

	f.uc = NewUseCase(
		f.apptRepo, f.schedule, f.resources, catalog,
		&serialTxManager{}, f.gateway, f.publisher,
		time.UTC, mode, 0, nopLogger{},
	)
	// Полдень накануне тестовой даты
	f.uc.timeProvider = &fixedTime{now: testDate.AddDate(0, 0, -1).Add(12 * time.Hour)}
	return f
}

func validRequest() *Request {
	return &Request{
		ServiceIDs:  []int64{1},
		Date:        testDate,
		StartTime:   "10:00",
		ClientName:  "Ana",
		ClientPhone: "+34600000000",
	}
}

func TestExecute_CreatesPendingGroup(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	group := resp.Group
	assert.NotEmpty(t, group.GroupID)
	assert.Equal(t, domain.StatusPendiente, group.Status)
	assert.Len(t, group.Items, 1)
	assert.Equal(t, types.TimeString("10:00"), group.StartTime)
	assert.Len(t, f.publisher.created, 1)
}

func TestExecute_MultiServiceContiguousBlock(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)

	req := validRequest()
	req.ServiceIDs = []int64{1, 2}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	group := resp.Group
	require.Len(t, group.Items, 2)
	assert.Equal(t, types.TimeString("10:00"), group.Items[0].StartTime)
	assert.Equal(t, 30, group.Items[0].DurationMinutes)
	assert.Equal(t, types.TimeString("10:30"), group.Items[1].StartTime)
	assert.Equal(t, 45, group.Items[1].DurationMinutes)
	assert.Equal(t, group.Items[0].GroupID, group.Items[1].GroupID)
	assert.Equal(t, 75, group.TotalDurationMinutes())

	// Блок 10:00-11:15 занят: старт 11:00 конфликтует, 11:15 свободен
	conflicting := validRequest()
	conflicting.StartTime = "11:00"
	_, err = f.uc.Execute(context.Background(), conflicting)
	assert.ErrorIs(t, err, ErrOverlapConflict)

	adjacent := validRequest()
	adjacent.StartTime = "11:15"
	_, err = f.uc.Execute(context.Background(), adjacent)
	assert.NoError(t, err)
}

func TestExecute_RejectsUnpaddedStartTime(t *testing.T) {
	// "9:00" сортируется после "18:00" при лексикографическом сравнении
	// и обошел бы проверку окна и пересечений
	f := newFixture(t, domain.ModeLibre)

	first := validRequest()
	first.StartTime = "09:00"
	_, err := f.uc.Execute(context.Background(), first)
	require.NoError(t, err)

	second := validRequest()
	second.StartTime = "9:00"
	_, err = f.uc.Execute(context.Background(), second)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Поверх первой группы ничего не создано
	items, err := f.apptRepo.ListByDate(context.Background(), testDate, nil, false)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestExecute_InactiveService(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)

	req := validRequest()
	req.ServiceIDs = []int64{3}

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestExecute_ClosedByException(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)
	f.schedule.exceptions = []domain.ScheduleException{
		{StartDate: testDate, EndDate: testDate, Type: domain.ExceptionDayOff},
	}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrClosedDay)
}

func TestExecute_OutsideWindow(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)

	req := validRequest()
	req.StartTime = "17:45" // 30 минут не помещаются до 18:00

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_BreakOverlap(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)
	f.schedule.breaks = []domain.RecurringBreak{
		{StartTime: "13:00", EndTime: "14:00", RecurrenceType: domain.RecurrenceDaily},
	}

	req := validRequest()
	req.StartTime = "12:45"
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	// Встык к перерыву - допустимо
	req.StartTime = "12:30"
	_, err = f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_MinNotice(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)
	f.uc.minNotice = 60
	// Сегодня 09:30: с буфером час слот 10:00 уже недоступен
	f.uc.timeProvider = &fixedTime{now: testDate.Add(9*time.Hour + 30*time.Minute)}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrTooLateToBook)

	req := validRequest()
	req.StartTime = "10:30"
	_, err = f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_PastDate(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)
	f.uc.timeProvider = &fixedTime{now: testDate.AddDate(0, 0, 2)}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_NamedResourceConflict(t *testing.T) {
	f := newFixture(t, domain.ModeLibre,
		&domain.Resource{ID: 1, Name: "Marta", IsActive: true},
		&domain.Resource{ID: 2, Name: "Luis", IsActive: true},
	)

	req := validRequest()
	req.ResourceID = ptr.Ptr(int64(1))
	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Тот же ресурс, то же время - конфликт
	again := validRequest()
	again.ResourceID = ptr.Ptr(int64(1))
	_, err = f.uc.Execute(context.Background(), again)
	assert.ErrorIs(t, err, ErrOverlapConflict)

	// Другой ресурс свободен
	other := validRequest()
	other.ResourceID = ptr.Ptr(int64(2))
	_, err = f.uc.Execute(context.Background(), other)
	assert.NoError(t, err)
}

func TestExecute_AutoAssignLeastLoaded(t *testing.T) {
	f := newFixture(t, domain.ModeLibre,
		&domain.Resource{ID: 1, Name: "Marta", IsActive: true, SortOrder: 1},
		&domain.Resource{ID: 2, Name: "Luis", IsActive: true, SortOrder: 2},
	)

	// Загружаем ресурс 1 утренней записью
	busy := validRequest()
	busy.StartTime = "09:00"
	busy.ResourceID = ptr.Ptr(int64(1))
	_, err := f.uc.Execute(context.Background(), busy)
	require.NoError(t, err)

	// Авто-назначение на 10:00: оба свободны, побеждает менее загруженный
	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Group.ResourceID)
	assert.Equal(t, int64(2), *resp.Group.ResourceID)
}

func TestExecute_AutoAssignTieBreakByOrder(t *testing.T) {
	f := newFixture(t, domain.ModeLibre,
		&domain.Resource{ID: 1, Name: "Marta", IsActive: true, SortOrder: 1},
		&domain.Resource{ID: 2, Name: "Luis", IsActive: true, SortOrder: 2},
	)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Group.ResourceID)
	assert.Equal(t, int64(1), *resp.Group.ResourceID)
}

func TestExecute_NoResourceAvailable(t *testing.T) {
	f := newFixture(t, domain.ModeLibre,
		&domain.Resource{ID: 1, Name: "Marta", IsActive: true},
	)

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrNoResourceAvailable)
}

func TestExecute_ImplicitSingleResource(t *testing.T) {
	// Без настроенных ресурсов салон работает как один неявный ресурс
	f := newFixture(t, domain.ModeLibre)

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrOverlapConflict)
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t, domain.ModeLibre)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), validRequest())
		}(i)
	}
	wg.Wait()

	// Ровно одна из двух конкурентных попыток выигрывает слот
	var conflicts, oks int
	for _, err := range errs {
		switch {
		case err == nil:
			oks++
		case assert.ErrorIs(t, err, ErrOverlapConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, oks)
	assert.Equal(t, 1, conflicts)
}

func TestExecute_PrepagoRequiresToken(t *testing.T) {
	f := newFixture(t, domain.ModePrepago)

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestExecute_PrepagoPaymentNotConfirmed(t *testing.T) {
	f := newFixture(t, domain.ModePrepago)
	f.gateway.verified = false

	req := validRequest()
	req.PaymentToken = ptr.Ptr("tok-123")

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
}

func TestExecute_PrepagoCreatesConfirmedAndPaid(t *testing.T) {
	f := newFixture(t, domain.ModePrepago)

	req := validRequest()
	req.PaymentToken = ptr.Ptr("tok-123")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	group := resp.Group
	assert.Equal(t, domain.StatusConfirmada, group.Status)
	assert.Equal(t, []string{"tok-123"}, f.gateway.tokens)
	for _, it := range group.Items {
		assert.Equal(t, it.Amount, it.PaidAmount)
	}
}

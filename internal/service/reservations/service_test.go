package reservations

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/agenda-core/internal/domain"
	apptRepo "github.com/m04kA/agenda-core/internal/infra/storage/appointment"
	"github.com/m04kA/agenda-core/internal/service/reservations/models"
	"github.com/m04kA/agenda-core/pkg/ptr"
)

var (
	bookingDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	clockNow    = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
)

// fakeRepo хранит группы в памяти и воспроизводит семантику условных
// апдейтов: несовпадение ожидаемого статуса означает проигранную гонку
type fakeRepo struct {
	groups            map[string][]*domain.Appointment
	forceStateChanged bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{groups: make(map[string][]*domain.Appointment)}
}

func (f *fakeRepo) GetGroup(_ context.Context, groupID string) ([]*domain.Appointment, error) {
	items, ok := f.groups[groupID]
	if !ok {
		return nil, apptRepo.ErrGroupNotFound
	}
	return items, nil
}

func (f *fakeRepo) GetGroupByToken(_ context.Context, token string) ([]*domain.Appointment, error) {
	for _, items := range f.groups {
		if items[0].PaymentToken != nil && *items[0].PaymentToken == token {
			return items, nil
		}
	}
	return nil, apptRepo.ErrGroupNotFound
}

func (f *fakeRepo) ListByDate(_ context.Context, date time.Time, resourceID *int64, includeInactive bool) ([]*domain.Appointment, error) {
	out := make([]*domain.Appointment, 0)
	for _, items := range f.groups {
		for _, it := range items {
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
	}
	return out, nil
}

func (f *fakeRepo) MarkAwaitingPayment(_ context.Context, groupID string, holdExpiresAt time.Time, token string) error {
	items, ok := f.groups[groupID]
	if !ok {
		return apptRepo.ErrGroupNotFound
	}
	for _, it := range items {
		it.Status = domain.StatusEsperandoPago
		it.HoldExpiresAt = &holdExpiresAt
		it.PaymentToken = &token
	}
	return nil
}

func (f *fakeRepo) SetGroupStatus(_ context.Context, groupID string, from, to domain.AppointmentStatus, markPaid bool) error {
	items, ok := f.groups[groupID]
	if !ok {
		return apptRepo.ErrGroupNotFound
	}
	if f.forceStateChanged || items[0].Status != from {
		return apptRepo.ErrGroupStateChanged
	}
	for _, it := range items {
		it.Status = to
		if markPaid {
			it.PaidAmount = it.Amount
		}
	}
	return nil
}

func (f *fakeRepo) CancelGroup(_ context.Context, groupID string, from domain.AppointmentStatus, reason string) error {
	items, ok := f.groups[groupID]
	if !ok {
		return apptRepo.ErrGroupNotFound
	}
	if f.forceStateChanged || items[0].Status != from {
		return apptRepo.ErrGroupStateChanged
	}
	now := clockNow
	for _, it := range items {
		it.Status = domain.StatusCancelada
		it.CancellationReason = &reason
		it.CancelledAt = &now
	}
	return nil
}

func (f *fakeRepo) DeleteGroup(_ context.Context, groupID string) error {
	if _, ok := f.groups[groupID]; !ok {
		return apptRepo.ErrGroupNotFound
	}
	delete(f.groups, groupID)
	return nil
}

func (f *fakeRepo) seed(groupID string, status domain.AppointmentStatus, items ...*domain.Appointment) {
	if len(items) == 0 {
		items = []*domain.Appointment{{
			ServiceID: 1, ServiceName: "Corte",
			StartTime: "10:00", DurationMinutes: 30, Amount: 20,
		}}
	}
	for i, it := range items {
		it.ID = int64(i + 1)
		it.GroupID = groupID
		it.Date = bookingDate
		it.Status = status
		it.ClientName = "Ana"
		it.ClientPhone = "+34600000000"
	}
	f.groups[groupID] = items
}

type fakeGateway struct {
	verified    bool
	holdTokens  []string
	holdAmounts []float64
}

func (f *fakeGateway) CreateHold(_ context.Context, token string, amount float64, _ string) (string, error) {
	f.holdTokens = append(f.holdTokens, token)
	f.holdAmounts = append(f.holdAmounts, amount)
	return "https://pay.example/" + token, nil
}

func (f *fakeGateway) Verify(context.Context, string) (bool, error) {
	return f.verified, nil
}

type publishedEvent struct {
	groupID string
	event   domain.TransitionEvent
}

type fakePublisher struct {
	statusChanges []publishedEvent
	holdsOpened   []string
}

func (f *fakePublisher) BookingStatusChanged(_ context.Context, group *domain.BookingGroup, event domain.TransitionEvent) {
	f.statusChanges = append(f.statusChanges, publishedEvent{groupID: group.GroupID, event: event})
}

func (f *fakePublisher) PaymentHoldOpened(_ context.Context, group *domain.BookingGroup) {
	f.holdsOpened = append(f.holdsOpened, group.GroupID)
}

type fixedClock struct{ now time.Time }

func (f *fixedClock) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService(mode domain.BookingMode) (*Service, *fakeRepo, *fakeGateway, *fakePublisher) {
	repo := newFakeRepo()
	gateway := &fakeGateway{verified: true}
	publisher := &fakePublisher{}

	svc := NewService(repo, gateway, publisher, mode, 30, nopLogger{})
	svc.timeProvider = &fixedClock{now: clockNow}
	return svc, repo, gateway, publisher
}

func TestGetByGroupID_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(domain.ModeLibre)

	_, err := svc.GetByGroupID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestRespond_ApproveLibre(t *testing.T) {
	svc, repo, _, publisher := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusPendiente)

	resp, err := svc.Respond(context.Background(), "g1", &models.RespondRequest{Approve: true})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmada), resp.Status)
	require.Len(t, publisher.statusChanges, 1)
	assert.Equal(t, domain.EventApprove, publisher.statusChanges[0].event)
	assert.Empty(t, publisher.holdsOpened)
}

func TestRespond_ApproveOpensPaymentHold(t *testing.T) {
	svc, repo, gateway, publisher := newTestService(domain.ModePagoPostAprobacion)
	repo.seed("g1", domain.StatusPendiente,
		&domain.Appointment{ServiceID: 1, ServiceName: "Corte", StartTime: "10:00", DurationMinutes: 30, Amount: 20},
		&domain.Appointment{ServiceID: 2, ServiceName: "Tinte", StartTime: "10:30", DurationMinutes: 45, Amount: 35},
	)

	resp, err := svc.Respond(context.Background(), "g1", &models.RespondRequest{Approve: true})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusEsperandoPago), resp.Status)
	require.NotNil(t, resp.HoldExpiresAt)
	assert.Equal(t, clockNow.Add(30*time.Minute), *resp.HoldExpiresAt)

	// Hold зарегистрирован в шлюзе на полную сумму группы,
	// клиенту возвращается URL страницы оплаты
	require.Len(t, gateway.holdTokens, 1)
	assert.Equal(t, []float64{55}, gateway.holdAmounts)
	require.NotNil(t, resp.PaymentURL)
	assert.Equal(t, "https://pay.example/"+gateway.holdTokens[0], *resp.PaymentURL)

	require.Len(t, publisher.statusChanges, 1)
	assert.Equal(t, domain.EventApprove, publisher.statusChanges[0].event)
	assert.Equal(t, []string{"g1"}, publisher.holdsOpened)
}

func TestRespond_RejectUsesReason(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModePagoPostAprobacion)
	repo.seed("g1", domain.StatusPendiente)

	resp, err := svc.Respond(context.Background(), "g1", &models.RespondRequest{
		Approve: false,
		Reason:  ptr.Ptr("sin disponibilidad"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelada), resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, "sin disponibilidad", *resp.CancellationReason)
}

func TestRespond_AlreadyDecided(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusConfirmada)

	_, err := svc.Respond(context.Background(), "g1", &models.RespondRequest{Approve: true})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConfirmPayment_Confirms(t *testing.T) {
	svc, repo, _, publisher := newTestService(domain.ModePagoPostAprobacion)
	repo.seed("g1", domain.StatusEsperandoPago)
	hold := clockNow.Add(10 * time.Minute)
	repo.groups["g1"][0].HoldExpiresAt = &hold
	repo.groups["g1"][0].PaymentToken = ptr.Ptr("tok-1")

	resp, err := svc.ConfirmPayment(context.Background(), "tok-1")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmada), resp.Status)
	assert.Equal(t, 20.0, resp.Items[0].PaidAmount)
	require.Len(t, publisher.statusChanges, 1)
	assert.Equal(t, domain.EventPay, publisher.statusChanges[0].event)
}

func TestConfirmPayment_ExpiredHold(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModePagoPostAprobacion)
	repo.seed("g1", domain.StatusEsperandoPago)
	// Дедлайн ровно сейчас: hold уже не действует
	hold := clockNow
	repo.groups["g1"][0].HoldExpiresAt = &hold
	repo.groups["g1"][0].PaymentToken = ptr.Ptr("tok-1")

	_, err := svc.ConfirmPayment(context.Background(), "tok-1")
	assert.ErrorIs(t, err, ErrExpiredHold)
}

func TestConfirmPayment_WrongStatus(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModePagoPostAprobacion)
	repo.seed("g1", domain.StatusConfirmada)
	repo.groups["g1"][0].PaymentToken = ptr.Ptr("tok-1")

	_, err := svc.ConfirmPayment(context.Background(), "tok-1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConfirmPayment_NotConfirmedByGateway(t *testing.T) {
	svc, repo, gateway, _ := newTestService(domain.ModePagoPostAprobacion)
	gateway.verified = false
	repo.seed("g1", domain.StatusEsperandoPago)
	hold := clockNow.Add(10 * time.Minute)
	repo.groups["g1"][0].HoldExpiresAt = &hold
	repo.groups["g1"][0].PaymentToken = ptr.Ptr("tok-1")

	_, err := svc.ConfirmPayment(context.Background(), "tok-1")
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
}

func TestConfirmPayment_LostRaceWithSweeper(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModePagoPostAprobacion)
	repo.seed("g1", domain.StatusEsperandoPago)
	hold := clockNow.Add(10 * time.Minute)
	repo.groups["g1"][0].HoldExpiresAt = &hold
	repo.groups["g1"][0].PaymentToken = ptr.Ptr("tok-1")

	// Между чтением и апдейтом группу успел перевести кто-то другой
	repo.forceStateChanged = true

	_, err := svc.ConfirmPayment(context.Background(), "tok-1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConfirmPayment_UnknownToken(t *testing.T) {
	svc, _, _, _ := newTestService(domain.ModePagoPostAprobacion)

	_, err := svc.ConfirmPayment(context.Background(), "tok-missing")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestUpdateStatus_Completes(t *testing.T) {
	svc, repo, _, publisher := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusConfirmada)

	resp, err := svc.UpdateStatus(context.Background(), "g1", &models.UpdateStatusRequest{Status: "completada"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCompletada), resp.Status)
	require.Len(t, publisher.statusChanges, 1)
	assert.Equal(t, domain.EventComplete, publisher.statusChanges[0].event)
}

func TestUpdateStatus_CancelRecordsReason(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusConfirmada)

	resp, err := svc.UpdateStatus(context.Background(), "g1", &models.UpdateStatusRequest{
		Status: "cancelada",
		Reason: ptr.Ptr("el cliente cambió de fecha"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelada), resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, "el cliente cambió de fecha", *resp.CancellationReason)
}

func TestUpdateStatus_CancelDefaultReason(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusConfirmada)

	resp, err := svc.UpdateStatus(context.Background(), "g1", &models.UpdateStatusRequest{Status: "cancelada"})
	require.NoError(t, err)

	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, "cancelada por el negocio", *resp.CancellationReason)
}

func TestUpdateStatus_ConfirmadaIsNotATarget(t *testing.T) {
	// Одобрение идет через Respond, а не через смену статуса
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusPendiente)

	_, err := svc.UpdateStatus(context.Background(), "g1", &models.UpdateStatusRequest{Status: "confirmada"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusPendiente)

	_, err := svc.UpdateStatus(context.Background(), "g1", &models.UpdateStatusRequest{Status: "completada"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusConfirmada)

	_, err := svc.UpdateStatus(context.Background(), "g1", &models.UpdateStatusRequest{Status: "archivada"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel(t *testing.T) {
	svc, repo, _, publisher := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusConfirmada)

	err := svc.Cancel(context.Background(), "g1", &models.CancelRequest{CancellationReason: "cliente enfermo"})
	require.NoError(t, err)

	items := repo.groups["g1"]
	assert.Equal(t, domain.StatusCancelada, items[0].Status)
	require.NotNil(t, items[0].CancellationReason)
	assert.Equal(t, "cliente enfermo", *items[0].CancellationReason)

	require.Len(t, publisher.statusChanges, 1)
	assert.Equal(t, domain.EventCancel, publisher.statusChanges[0].event)
}

func TestCancel_TerminalGroup(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusCompletada)

	err := svc.Cancel(context.Background(), "g1", &models.CancelRequest{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel_ReasonTooLong(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusConfirmada)

	err := svc.Cancel(context.Background(), "g1", &models.CancelRequest{
		CancellationReason: strings.Repeat("x", domain.MaxCancellationReasonLength+1),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusCancelada)

	require.NoError(t, svc.Delete(context.Background(), "g1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "g1"), ErrGroupNotFound)
}

func TestListByDate_AssemblesGroups(t *testing.T) {
	svc, repo, _, _ := newTestService(domain.ModeLibre)
	repo.seed("g1", domain.StatusConfirmada,
		&domain.Appointment{ServiceID: 1, ServiceName: "Corte", StartTime: "10:00", DurationMinutes: 30, Amount: 20},
		&domain.Appointment{ServiceID: 2, ServiceName: "Tinte", StartTime: "10:30", DurationMinutes: 45, Amount: 35},
	)

	resp, err := svc.ListByDate(context.Background(), &models.ListRequest{Date: bookingDate})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "g1", resp.Groups[0].GroupID)
	assert.Len(t, resp.Groups[0].Items, 2)
	assert.Equal(t, 55.0, resp.Groups[0].TotalAmount)
}

func TestListByDate_RequiresDate(t *testing.T) {
	svc, _, _, _ := newTestService(domain.ModeLibre)

	_, err := svc.ListByDate(context.Background(), &models.ListRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

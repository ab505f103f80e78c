package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/agenda-core/internal/api/handlers"
	createBooking "github.com/m04kA/agenda-core/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDateOrTime    = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgInvalidInput         = "некорректные входные данные"
	msgServiceNotFound      = "услуга не найдена"
	msgServiceInactive      = "услуга отключена"
	msgResourceNotFound     = "ресурс не найден"
	msgInvalidDate          = "дата бронирования в прошлом"
	msgClosedDay            = "салон закрыт в выбранную дату"
	msgInvalidTimeSlot      = "интервал вне рабочего окна или пересекает перерыв"
	msgTooLateToBook        = "слишком поздно для бронирования этого слота"
	msgOverlapConflict      = "выбранный интервал уже занят"
	msgNoResourceAvailable  = "нет свободного ресурса на выбранный интервал"
	msgPaymentRequired      = "требуется платежный токен"
	msgPaymentNotConfirmed  = "оплата не подтверждена"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrServiceInactive):
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, createBooking.ErrResourceNotFound):
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, createBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createBooking.ErrClosedDay):
			handlers.RespondBadRequest(w, msgClosedDay)

		case errors.Is(err, createBooking.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrOverlapConflict):
			h.logger.Warn("POST /bookings - Overlap conflict: date=%s, start=%s", req.Date, req.StartTime)
			handlers.RespondConflict(w, msgOverlapConflict)

		case errors.Is(err, createBooking.ErrNoResourceAvailable):
			h.logger.Warn("POST /bookings - No resource available: date=%s, start=%s", req.Date, req.StartTime)
			handlers.RespondConflict(w, msgNoResourceAvailable)

		case errors.Is(err, createBooking.ErrPaymentRequired):
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentRequired)

		case errors.Is(err, createBooking.ErrPaymentNotConfirmed):
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentNotConfirmed)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: group=%s, date=%s, start=%s",
		result.Group.GroupID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

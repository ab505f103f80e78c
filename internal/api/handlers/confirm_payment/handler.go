package confirm_payment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/agenda-core/internal/api/handlers"
	"github.com/m04kA/agenda-core/internal/service/reservations"
)

const (
	msgMissingToken        = "платежный токен обязателен"
	msgGroupNotFound       = "бронь по токену не найдена"
	msgInvalidState        = "бронь не ожидает оплаты"
	msgExpiredHold         = "срок оплаты истек, слот освобожден"
	msgPaymentNotConfirmed = "оплата не подтверждена"
)

type Handler struct {
	service ReservationsService
	logger  Logger
}

func NewHandler(service ReservationsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/{token}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if token == "" {
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	result, err := h.service.ConfirmPayment(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrGroupNotFound):
			h.logger.Warn("POST /payments/{token}/confirm - Group not found")
			handlers.RespondNotFound(w, msgGroupNotFound)

		case errors.Is(err, reservations.ErrInvalidState):
			h.logger.Warn("POST /payments/{token}/confirm - Invalid state")
			handlers.RespondConflict(w, msgInvalidState)

		case errors.Is(err, reservations.ErrExpiredHold):
			h.logger.Warn("POST /payments/{token}/confirm - Hold expired")
			handlers.RespondError(w, http.StatusGone, msgExpiredHold)

		case errors.Is(err, reservations.ErrPaymentNotConfirmed):
			h.logger.Warn("POST /payments/{token}/confirm - Payment not confirmed")
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentNotConfirmed)

		default:
			h.logger.Error("POST /payments/{token}/confirm - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/{token}/confirm - group=%s confirmed", result.GroupID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

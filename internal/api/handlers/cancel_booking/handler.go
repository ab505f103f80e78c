package cancel_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/agenda-core/internal/api/handlers"
	"github.com/m04kA/agenda-core/internal/service/reservations"
	"github.com/m04kA/agenda-core/internal/service/reservations/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingGroupID     = "идентификатор брони обязателен"
	msgInvalidInput       = "некорректные входные данные"
	msgGroupNotFound      = "бронь не найдена"
	msgCannotCancel       = "бронь нельзя отменить из текущего статуса"
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

// Handle PATCH /api/v1/bookings/{groupId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]
	if groupID == "" {
		handlers.RespondBadRequest(w, msgMissingGroupID)
		return
	}

	var req models.CancelRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{groupId}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.Cancel(r.Context(), groupID, &req); err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, reservations.ErrGroupNotFound):
			h.logger.Warn("PATCH /bookings/{groupId}/cancel - Group not found: group=%s", groupID)
			handlers.RespondNotFound(w, msgGroupNotFound)

		case errors.Is(err, reservations.ErrInvalidState):
			h.logger.Warn("PATCH /bookings/{groupId}/cancel - Cannot cancel group=%s", groupID)
			handlers.RespondConflict(w, msgCannotCancel)

		default:
			h.logger.Error("PATCH /bookings/{groupId}/cancel - Failed for group=%s: %v", groupID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{groupId}/cancel - group=%s cancelled", groupID)
	handlers.RespondNoContent(w)
}

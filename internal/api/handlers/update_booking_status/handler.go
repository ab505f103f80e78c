package update_booking_status

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
	msgInvalidStatus      = "некорректный целевой статус"
	msgGroupNotFound      = "бронь не найдена"
	msgInvalidState       = "переход в этот статус недопустим"
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

// Handle PATCH /api/v1/bookings/{groupId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]
	if groupID == "" {
		handlers.RespondBadRequest(w, msgMissingGroupID)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{groupId}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), groupID, &req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{groupId}/status - Invalid status=%s for group=%s", req.Status, groupID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, reservations.ErrGroupNotFound):
			h.logger.Warn("PATCH /bookings/{groupId}/status - Group not found: group=%s", groupID)
			handlers.RespondNotFound(w, msgGroupNotFound)

		case errors.Is(err, reservations.ErrInvalidState):
			h.logger.Warn("PATCH /bookings/{groupId}/status - Invalid transition for group=%s to status=%s", groupID, req.Status)
			handlers.RespondConflict(w, msgInvalidState)

		default:
			h.logger.Error("PATCH /bookings/{groupId}/status - Failed for group=%s: %v", groupID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{groupId}/status - group=%s moved to status=%s", groupID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}

package respond_booking

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
	msgGroupNotFound      = "бронь не найдена"
	msgInvalidState       = "бронь не в ожидающем статусе"
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

// Handle PATCH /api/v1/bookings/{groupId}/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]
	if groupID == "" {
		handlers.RespondBadRequest(w, msgMissingGroupID)
		return
	}

	var req models.RespondRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{groupId}/respond - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Respond(r.Context(), groupID, &req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrGroupNotFound):
			h.logger.Warn("PATCH /bookings/{groupId}/respond - Group not found: group=%s", groupID)
			handlers.RespondNotFound(w, msgGroupNotFound)

		case errors.Is(err, reservations.ErrInvalidState):
			h.logger.Warn("PATCH /bookings/{groupId}/respond - Invalid state: group=%s", groupID)
			handlers.RespondConflict(w, msgInvalidState)

		default:
			h.logger.Error("PATCH /bookings/{groupId}/respond - Failed for group=%s: %v", groupID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{groupId}/respond - group=%s, approve=%v, status=%s",
		groupID, req.Approve, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}

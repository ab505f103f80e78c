package delete_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/agenda-core/internal/api/handlers"
	"github.com/m04kA/agenda-core/internal/service/reservations"
)

const (
	msgMissingGroupID = "идентификатор брони обязателен"
	msgGroupNotFound  = "бронь не найдена"
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

// Handle DELETE /api/v1/bookings/{groupId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]
	if groupID == "" {
		handlers.RespondBadRequest(w, msgMissingGroupID)
		return
	}

	if err := h.service.Delete(r.Context(), groupID); err != nil {
		switch {
		case errors.Is(err, reservations.ErrGroupNotFound):
			h.logger.Warn("DELETE /bookings/{groupId} - Group not found: group=%s", groupID)
			handlers.RespondNotFound(w, msgGroupNotFound)

		default:
			h.logger.Error("DELETE /bookings/{groupId} - Failed for group=%s: %v", groupID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /bookings/{groupId} - group=%s deleted", groupID)
	handlers.RespondNoContent(w)
}

package get_booking

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

// Handle GET /api/v1/bookings/{groupId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]
	if groupID == "" {
		handlers.RespondBadRequest(w, msgMissingGroupID)
		return
	}

	result, err := h.service.GetByGroupID(r.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrGroupNotFound):
			h.logger.Warn("GET /bookings/{groupId} - Group not found: group=%s", groupID)
			handlers.RespondNotFound(w, msgGroupNotFound)

		default:
			h.logger.Error("GET /bookings/{groupId} - Failed to get group=%s: %v", groupID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

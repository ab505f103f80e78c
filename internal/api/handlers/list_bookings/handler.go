package list_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/agenda-core/internal/api/handlers"
	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/internal/service/reservations"
	"github.com/m04kA/agenda-core/internal/service/reservations/models"
)

const (
	msgMissingDate       = "дата обязательна"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidResourceID = "некорректный ID ресурса"
	msgInvalidInput      = "некорректные параметры запроса"
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

// Handle GET /api/v1/bookings
// Query params: date (required, YYYY-MM-DD), resourceId (optional),
// includeInactive (optional, true/false)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dateStr := query.Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /bookings - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	req := &models.ListRequest{Date: date}

	if resourceIDStr := query.Get("resourceId"); resourceIDStr != "" {
		resourceID, err := strconv.ParseInt(resourceIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /bookings - Invalid resource ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidResourceID)
			return
		}
		req.ResourceID = &resourceID
	}

	req.IncludeInactive = query.Get("includeInactive") == "true"

	result, err := h.service.ListByDate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /bookings - Failed to list bookings: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/agenda-core/internal/api/handlers"
	getAvailability "github.com/m04kA/agenda-core/internal/usecase/get_availability"
)

const (
	msgMissingDate       = "дата обязательна"
	msgMissingServiceIDs = "список услуг обязателен"
	msgInvalidParams     = "некорректные параметры запроса"
	msgInvalidInput      = "некорректные входные данные"
	msgServiceNotFound   = "услуга не найдена"
	msgServiceInactive   = "услуга отключена"
	msgResourceNotFound  = "ресурс не найден"
	msgInvalidDate       = "некорректная дата, ожидается YYYY-MM-DD не в прошлом"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: date (required, YYYY-MM-DD), serviceIds (required, CSV),
// resourceId (optional, пусто = любой ресурс)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	serviceIDsStr := query.Get("serviceIds")
	if serviceIDsStr == "" {
		h.logger.Warn("GET /availability - Missing service IDs")
		handlers.RespondBadRequest(w, msgMissingServiceIDs)
		return
	}

	useCaseReq, err := ToUseCaseRequest(dateStr, serviceIDsStr, query.Get("resourceId"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailability.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailability.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrServiceInactive):
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, getAvailability.ErrResourceNotFound):
			handlers.RespondNotFound(w, msgResourceNotFound)

		default:
			h.logger.Error("GET /availability - Failed to get slots: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

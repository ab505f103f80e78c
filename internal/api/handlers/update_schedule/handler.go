package update_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/agenda-core/internal/api/handlers"
	scheduleService "github.com/m04kA/agenda-core/internal/service/schedule"
	"github.com/m04kA/agenda-core/internal/service/schedule/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные входные данные"
	msgInvalidID          = "некорректный идентификатор"
	msgNotFound           = "запись календаря не найдена"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleUpsertBusinessHour PUT /api/v1/schedule/hours
func (h *Handler) HandleUpsertBusinessHour(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertBusinessHourRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /schedule/hours - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpsertBusinessHour(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, "PUT /schedule/hours", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleCreateBreak POST /api/v1/schedule/breaks
func (h *Handler) HandleCreateBreak(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBreakRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /schedule/breaks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateBreak(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, "POST /schedule/breaks", err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleDeleteBreak DELETE /api/v1/schedule/breaks/{id}
func (h *Handler) HandleDeleteBreak(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	if err := h.service.DeleteBreak(r.Context(), id); err != nil {
		h.respondServiceError(w, "DELETE /schedule/breaks/{id}", err)
		return
	}

	handlers.RespondNoContent(w)
}

// HandleCreateException POST /api/v1/schedule/exceptions
func (h *Handler) HandleCreateException(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExceptionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /schedule/exceptions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateException(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, "POST /schedule/exceptions", err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleDeleteException DELETE /api/v1/schedule/exceptions/{id}
func (h *Handler) HandleDeleteException(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	if err := h.service.DeleteException(r.Context(), id); err != nil {
		h.respondServiceError(w, "DELETE /schedule/exceptions/{id}", err)
		return
	}

	handlers.RespondNoContent(w)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, scheduleService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, scheduleService.ErrNotFound):
		h.logger.Warn("%s - Not found: %v", route, err)
		handlers.RespondNotFound(w, msgNotFound)

	default:
		h.logger.Error("%s - Failed: %v", route, err)
		handlers.RespondInternalError(w)
	}
}

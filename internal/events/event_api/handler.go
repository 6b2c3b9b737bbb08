package event_api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/events"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/utils"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

func NewHandler(eventService *events.EventService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{EventService: eventService, Logger: log}
}

// Register mounts the event routes on a router scoped to /api/events.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.ListEvents)
	r.Post("/", h.CreateEvent)
	r.Get("/{slug}", h.GetEvent)
	r.Put("/{slug}", h.UpdateEvent)
	r.Get("/{slug}/similar", h.SimilarEvents)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	slug, ok := utils.SlugParam(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Invalid or missing slug parameter")
		return
	}

	event, found, err := h.EventService.GetEventBySlug(r.Context(), slug)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent: slug=%s: %v", slug, err))
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternalError, "An unexpected error occurred")
		return
	}
	if !found {
		utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, fmt.Sprintf("Event with slug '%s' not found", slug))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, event)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListEvents(r.Context())
	if err != nil {
		utils.WriteServiceError(w, h.Logger, "ListEvents", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, list)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if err := utils.DecodeAndValidate(w, r, &in); err != nil {
		utils.WriteServiceError(w, h.Logger, "CreateEvent", err)
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), in)
	if err != nil {
		utils.WriteServiceError(w, h.Logger, "CreateEvent", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateEvent: created %s", event.Slug))
	utils.WriteSuccess(w, http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	slug, ok := utils.SlugParam(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Invalid or missing slug parameter")
		return
	}

	var in models.EventInput
	if err := utils.DecodeAndValidate(w, r, &in); err != nil {
		utils.WriteServiceError(w, h.Logger, "UpdateEvent", err)
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), slug, in)
	if err != nil {
		utils.WriteServiceError(w, h.Logger, "UpdateEvent", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, event)
}

func (h *Handler) SimilarEvents(w http.ResponseWriter, r *http.Request) {
	slug, ok := utils.SlugParam(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Invalid or missing slug parameter")
		return
	}

	similar, err := h.EventService.SimilarEvents(r.Context(), slug)
	if err != nil {
		utils.WriteServiceError(w, h.Logger, "SimilarEvents", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, similar)
}

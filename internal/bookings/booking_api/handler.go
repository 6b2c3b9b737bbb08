package booking_api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/bookings"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/utils"
)

type Handler struct {
	BookingService *bookings.BookingService
	Logger         *logger.Logger
}

func NewHandler(bookingService *bookings.BookingService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{BookingService: bookingService, Logger: log}
}

// Register mounts the booking routes on a router scoped to /api/bookings.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.CreateBooking)
	r.Get("/{id}", h.GetBooking)
	r.Get("/{id}/pass.png", h.GetPass)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in models.BookingInput
	if err := utils.DecodeAndValidate(w, r, &in); err != nil {
		utils.WriteServiceError(w, h.Logger, "CreateBooking", err)
		return
	}

	booking, err := h.BookingService.CreateBooking(r.Context(), in)
	if err != nil {
		utils.WriteServiceError(w, h.Logger, "CreateBooking", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateBooking: booking %s for event %s", booking.ID, booking.EventID))
	utils.WriteSuccess(w, http.StatusCreated, booking)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	booking, err := h.BookingService.GetBooking(r.Context(), id)
	if err != nil {
		utils.WriteServiceError(w, h.Logger, "GetBooking", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, booking)
}

func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	png, err := h.BookingService.Pass(r.Context(), id)
	if err != nil {
		utils.WriteServiceError(w, h.Logger, "GetPass", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// CountForEvent serves GET /api/events/{slug}/bookings/count.
func (h *Handler) CountForEvent(w http.ResponseWriter, r *http.Request) {
	slug, ok := utils.SlugParam(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Invalid or missing slug parameter")
		return
	}

	n, err := h.BookingService.CountBookings(r.Context(), slug)
	if err != nil {
		utils.WriteServiceError(w, h.Logger, "CountForEvent", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, map[string]int{"count": n})
}

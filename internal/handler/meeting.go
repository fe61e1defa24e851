package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/service"
	"github.com/segyhp/savings-ledger/pkg/response"
)

type MeetingHandler struct {
	base
	service *service.MeetingService
}

func NewMeetingHandler(service *service.MeetingService, validator *validator.Validate, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{
		base:    base{validator: validator, logger: logger},
		service: service,
	}
}

func (h *MeetingHandler) Register(api *mux.Router) {
	api.HandleFunc("/meetings", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/meetings", h.List).Methods(http.MethodGet)
	api.HandleFunc("/meetings/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/meetings/{id}", h.Update).Methods(http.MethodPut)
	api.HandleFunc("/meetings/{id}", h.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/meetings/{id}/summary", h.Summary).Methods(http.MethodGet)
	api.HandleFunc("/meetings/{id}/recalculate", h.Recalculate).Methods(http.MethodPost)
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateMeetingRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	meeting, err := h.service.Create(r.Context(), &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Created(w, meeting)
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, meetings)
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	meeting, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, meeting)
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var request domain.UpdateMeetingRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	meeting, err := h.service.Update(r.Context(), id, &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, meeting)
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	response.NoContent(w)
}

// Summary returns the meeting totals together with total cash
func (h *MeetingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, summary)
}

// Recalculate is the manual "refresh summary" action
func (h *MeetingHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	meeting, err := h.service.Recalculate(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, meeting)
}

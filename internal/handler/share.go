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

type ShareHandler struct {
	base
	service *service.ShareService
}

func NewShareHandler(service *service.ShareService, validator *validator.Validate, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		base:    base{validator: validator, logger: logger},
		service: service,
	}
}

func (h *ShareHandler) Register(api *mux.Router) {
	api.HandleFunc("/shares", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/shares/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/shares/{id}", h.Update).Methods(http.MethodPut)
	api.HandleFunc("/shares/{id}", h.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/members/{id}/shares", h.ListByMember).Methods(http.MethodGet)
	api.HandleFunc("/meetings/{id}/shares", h.ListByMeeting).Methods(http.MethodGet)
}

func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateShareRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	share, err := h.service.Create(r.Context(), &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Created(w, share)
}

func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	share, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, share)
}

func (h *ShareHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var request domain.UpdateShareRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	share, err := h.service.Update(r.Context(), id, &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, share)
}

func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *ShareHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	shares, err := h.service.ListByMember(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, shares)
}

func (h *ShareHandler) ListByMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	shares, err := h.service.ListByMeeting(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, shares)
}

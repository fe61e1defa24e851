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

type WelfareHandler struct {
	base
	service *service.WelfareService
}

func NewWelfareHandler(service *service.WelfareService, validator *validator.Validate, logger *slog.Logger) *WelfareHandler {
	return &WelfareHandler{
		base:    base{validator: validator, logger: logger},
		service: service,
	}
}

func (h *WelfareHandler) Register(api *mux.Router) {
	api.HandleFunc("/welfare", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/welfare/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/welfare/{id}", h.Update).Methods(http.MethodPut)
	api.HandleFunc("/welfare/{id}", h.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/members/{id}/welfare", h.ListByMember).Methods(http.MethodGet)
	api.HandleFunc("/meetings/{id}/welfare", h.ListByMeeting).Methods(http.MethodGet)
}

func (h *WelfareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateWelfareRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	record, err := h.service.Create(r.Context(), &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Created(w, record)
}

func (h *WelfareHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, record)
}

func (h *WelfareHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var request domain.UpdateWelfareRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	record, err := h.service.Update(r.Context(), id, &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, record)
}

func (h *WelfareHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *WelfareHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	records, err := h.service.ListByMember(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, records)
}

func (h *WelfareHandler) ListByMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	records, err := h.service.ListByMeeting(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, records)
}

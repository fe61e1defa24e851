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

type MemberHandler struct {
	base
	service *service.MemberService
}

func NewMemberHandler(service *service.MemberService, validator *validator.Validate, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		base:    base{validator: validator, logger: logger},
		service: service,
	}
}

func (h *MemberHandler) Register(api *mux.Router) {
	api.HandleFunc("/members", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/members", h.List).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}", h.Update).Methods(http.MethodPut)
	api.HandleFunc("/members/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateMemberRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	member, err := h.service.Create(r.Context(), &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Created(w, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, members)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, member)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var request domain.UpdateMemberRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	member, err := h.service.Update(r.Context(), id, &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, member)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

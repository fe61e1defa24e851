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

type LoanHandler struct {
	base
	service *service.LoanService
}

func NewLoanHandler(service *service.LoanService, validator *validator.Validate, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{
		base:    base{validator: validator, logger: logger},
		service: service,
	}
}

func (h *LoanHandler) Register(api *mux.Router) {
	api.HandleFunc("/loans", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.Update).Methods(http.MethodPut)
	api.HandleFunc("/loans/{id}", h.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/loans/{id}/payments", h.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/payments", h.ListPayments).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}/loans", h.ListByMember).Methods(http.MethodGet)
	api.HandleFunc("/meetings/{id}/loans", h.ListByMeeting).Methods(http.MethodGet)
}

func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	loan, err := h.service.Create(r.Context(), &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Created(w, loan)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	loan, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var request domain.UpdateLoanRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	loan, err := h.service.Update(r.Context(), id, &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// RecordPayment applies a repayment; overpayments are rejected with 400 and
// a lost concurrent update with 409
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var request domain.RecordPaymentRequest
	if err := h.decode(r, &request); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.service.RecordPayment(r.Context(), id, &request)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Created(w, result)
}

func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, payments)
}

func (h *LoanHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	loans, err := h.service.ListByMember(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) ListByMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	loans, err := h.service.ListByMeeting(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, loans)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/savings-ledger/internal/cache"
	"github.com/segyhp/savings-ledger/internal/config"
	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository/memory"
	"github.com/segyhp/savings-ledger/internal/service"
	customError "github.com/segyhp/savings-ledger/pkg/errors"
	"github.com/segyhp/savings-ledger/pkg/logger"
	"github.com/segyhp/savings-ledger/pkg/response"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Field   string          `json:"field"`
	Message string          `json:"message"`
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	store := memory.NewStore()
	log := logger.Discard()
	cfg := &config.Config{Business: config.BusinessConfig{DefaultInterestRate: "10"}}
	v := NewValidator()

	meetings := service.NewMeetingService(store.Meetings(), store.Shares(), store.Loans(), store.Welfare(), cache.NoopSummaryCache{}, log)
	members := service.NewMemberService(store.Members(), log)
	shares := service.NewShareService(store.Shares(), store.Members(), store.Meetings(), meetings, log)
	loans := service.NewLoanService(store.Loans(), store.Members(), store.Meetings(), meetings, cfg, log)
	welfare := service.NewWelfareService(store.Welfare(), store.Members(), store.Meetings(), meetings, log)

	health := NewHealthHandler(time.Second, map[string]Checker{"storage": store.Ping})

	return NewRouter(log, health,
		NewMemberHandler(members, v, log),
		NewMeetingHandler(meetings, v, log),
		NewShareHandler(shares, v, log),
		NewLoanHandler(loans, v, log),
		NewWelfareHandler(welfare, v, log),
	)
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func createMember(t *testing.T, router http.Handler) domain.Member {
	t.Helper()
	rec, env := do(t, router, http.MethodPost, "/api/v1/members", map[string]interface{}{"name": "Wanjiru Kamau", "phone": "+254700000001"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var member domain.Member
	require.NoError(t, json.Unmarshal(env.Data, &member))
	return member
}

func createMeeting(t *testing.T, router http.Handler) domain.Meeting {
	t.Helper()
	rec, env := do(t, router, http.MethodPost, "/api/v1/meetings", map[string]interface{}{
		"meeting_date": "2024-04-06T00:00:00Z",
		"venue":        "Church hall",
		"start_time":   "14:00",
		"bank_balance": "1500.50",
		"cash_in_hand": "49.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var meeting domain.Meeting
	require.NoError(t, json.Unmarshal(env.Data, &meeting))
	return meeting
}

func TestLoanHandler_Create_Validation(t *testing.T) {
	router := newTestRouter(t)
	member := createMember(t, router)

	tests := []struct {
		name          string
		body          interface{}
		expectedField string
	}{
		{
			name:          "malformed json",
			body:          `{"member_id": `,
			expectedField: "body",
		},
		{
			name:          "missing member",
			body:          map[string]interface{}{"loan_amount": "100", "loan_date": "2024-04-06T00:00:00Z"},
			expectedField: "member_id",
		},
		{
			name:          "negative amount",
			body:          map[string]interface{}{"member_id": member.ID, "loan_amount": "-10", "loan_date": "2024-04-06T00:00:00Z"},
			expectedField: "loan_amount",
		},
		{
			name:          "interest rate above 100",
			body:          map[string]interface{}{"member_id": member.ID, "loan_amount": "100", "interest_rate": "150", "loan_date": "2024-04-06T00:00:00Z"},
			expectedField: "interest_rate",
		},
		{
			name:          "unknown status",
			body:          map[string]interface{}{"member_id": member.ID, "loan_amount": "100", "loan_date": "2024-04-06T00:00:00Z", "status": "closed"},
			expectedField: "status",
		},
		{
			name: "due date before loan date",
			body: map[string]interface{}{
				"member_id": member.ID, "loan_amount": "100",
				"loan_date": "2024-04-06T00:00:00Z", "due_date": "2024-04-01T00:00:00Z",
			},
			expectedField: "due_date",
		},
		{
			name:          "amount below a cent",
			body:          map[string]interface{}{"member_id": member.ID, "loan_amount": "100.005", "loan_date": "2024-04-06T00:00:00Z"},
			expectedField: "loan_amount",
		},
		{
			name:          "member does not exist",
			body:          map[string]interface{}{"member_id": uuid.New(), "loan_amount": "100", "loan_date": "2024-04-06T00:00:00Z"},
			expectedField: "member_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, router, http.MethodPost, "/api/v1/loans", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, customError.ErrCodeValidation, env.Code)
			assert.Equal(t, tt.expectedField, env.Field)
		})
	}
}

func TestLoanHandler_PaymentFlow(t *testing.T) {
	router := newTestRouter(t)
	member := createMember(t, router)
	meeting := createMeeting(t, router)

	rec, env := do(t, router, http.MethodPost, "/api/v1/loans", map[string]interface{}{
		"member_id":     member.ID,
		"meeting_id":    meeting.ID,
		"loan_amount":   "1000",
		"interest_rate": "10",
		"loan_date":     "2024-04-06T00:00:00Z",
		"status":        domain.LoanStatusActive,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var loan domain.Loan
	require.NoError(t, json.Unmarshal(env.Data, &loan))
	assert.True(t, loan.TotalAmount.Equal(decimal.NewFromInt(1100)))
	assert.True(t, loan.Balance.Equal(decimal.NewFromInt(1100)))

	paymentsPath := "/api/v1/loans/" + loan.ID.String() + "/payments"

	rec, env = do(t, router, http.MethodPost, paymentsPath, map[string]interface{}{"amount": "1200"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, customError.ErrCodePaymentExceedsBalance, env.Code)
	assert.Equal(t, "amount", env.Field)
	assert.Contains(t, env.Message, "100.00")

	rec, env = do(t, router, http.MethodPost, paymentsPath, map[string]interface{}{"amount": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount", env.Field)

	rec, env = do(t, router, http.MethodPost, paymentsPath, map[string]interface{}{"amount": "1100", "payment_method": "cash"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result domain.RecordPaymentResponse
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, domain.LoanStatusCompleted, result.Loan.Status)
	assert.True(t, result.Loan.Balance.IsZero())

	rec, env = do(t, router, http.MethodGet, paymentsPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payments []domain.LoanPayment
	require.NoError(t, json.Unmarshal(env.Data, &payments))
	assert.Len(t, payments, 1)

	rec, env = do(t, router, http.MethodGet, "/api/v1/members/"+member.ID.String()+"/loans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var loans []domain.Loan
	require.NoError(t, json.Unmarshal(env.Data, &loans))
	assert.Len(t, loans, 1)
}

func TestMeetingHandler_SummaryFlow(t *testing.T) {
	router := newTestRouter(t)
	member := createMember(t, router)
	meeting := createMeeting(t, router)

	for _, amount := range []string{"500", "300"} {
		rec, _ := do(t, router, http.MethodPost, "/api/v1/shares", map[string]interface{}{
			"member_id":  member.ID,
			"meeting_id": meeting.ID,
			"amount":     amount,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, env := do(t, router, http.MethodPost, "/api/v1/welfare", map[string]interface{}{
		"member_id":  member.ID,
		"meeting_id": meeting.ID,
		"amount":     "25",
		"type":       domain.WelfareTypeFine,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = do(t, router, http.MethodGet, "/api/v1/meetings/"+meeting.ID.String()+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary domain.SummaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.True(t, summary.TotalSharesCollected.Equal(decimal.NewFromInt(800)))
	assert.True(t, summary.TotalFines.Equal(decimal.NewFromInt(25)))
	assert.True(t, summary.TotalCash.Equal(decimal.NewFromInt(1550)))

	rec, env = do(t, router, http.MethodPost, "/api/v1/meetings/"+meeting.ID.String()+"/recalculate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recalculated domain.Meeting
	require.NoError(t, json.Unmarshal(env.Data, &recalculated))
	assert.True(t, recalculated.TotalSharesCollected.Equal(decimal.NewFromInt(800)))

	rec, _ = do(t, router, http.MethodPut, "/api/v1/meetings/"+meeting.ID.String(), map[string]interface{}{"start_time": "2pm"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_NotFoundAndBadIDs(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name         string
		method       string
		path         string
		expectedCode int
		expectedErr  string
	}{
		{"unknown loan", http.MethodGet, "/api/v1/loans/" + uuid.NewString(), http.StatusNotFound, customError.ErrCodeLoanNotFound},
		{"unknown member", http.MethodDelete, "/api/v1/members/" + uuid.NewString(), http.StatusNotFound, customError.ErrCodeMemberNotFound},
		{"unknown meeting summary", http.MethodGet, "/api/v1/meetings/" + uuid.NewString() + "/summary", http.StatusNotFound, customError.ErrCodeMeetingNotFound},
		{"unknown share", http.MethodDelete, "/api/v1/shares/" + uuid.NewString(), http.StatusNotFound, customError.ErrCodeShareNotFound},
		{"unknown welfare", http.MethodGet, "/api/v1/welfare/" + uuid.NewString(), http.StatusNotFound, customError.ErrCodeWelfareNotFound},
		{"malformed id", http.MethodGet, "/api/v1/loans/not-a-uuid", http.StatusBadRequest, customError.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, router, tt.method, tt.path, nil)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, tt.expectedErr, env.Code)
			assert.NotEmpty(t, rec.Header().Get(response.RequestIDHeader))
		})
	}
}

func TestMemberHandler_CRUD(t *testing.T) {
	router := newTestRouter(t)
	member := createMember(t, router)
	path := "/api/v1/members/" + member.ID.String()

	assert.Equal(t, domain.MemberStatusActive, member.Status)

	rec, env := do(t, router, http.MethodPut, path, map[string]interface{}{"status": domain.MemberStatusSuspended})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Member
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, domain.MemberStatusSuspended, updated.Status)

	rec, env = do(t, router, http.MethodGet, "/api/v1/members?status=suspended", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members []domain.Member
	require.NoError(t, json.Unmarshal(env.Data, &members))
	assert.Len(t, members, 1)

	rec, _ = do(t, router, http.MethodPut, path, map[string]interface{}{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFail_UnknownErrorIsInternal(t *testing.T) {
	b := base{validator: NewValidator(), logger: logger.Discard()}
	rec := httptest.NewRecorder()

	b.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(customError.ErrCodeConcurrentUpdate))
	assert.Equal(t, http.StatusBadRequest, statusFor(customError.ErrCodePaymentExceedsBalance))
	assert.Equal(t, http.StatusNotFound, statusFor(customError.ErrCodeWelfareNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(customError.ErrCodeDatabaseError))
}

func TestValidator_Decimals(t *testing.T) {
	v := NewValidator()

	assert.Error(t, v.Struct(&domain.RecordPaymentRequest{Amount: decimal.Zero}))
	assert.NoError(t, v.Struct(&domain.RecordPaymentRequest{Amount: decimal.RequireFromString("0.01")}))

	rate := decimal.RequireFromString("100.01")
	err := v.Struct(&domain.UpdateLoanRequest{InterestRate: &rate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interest_rate")

	assert.NoError(t, v.Struct(&domain.UpdateLoanRequest{}))
}

func TestHealthHandler_Ready(t *testing.T) {
	failing := NewHealthHandler(time.Second, map[string]Checker{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("dial tcp: connection refused") },
	})
	rec := httptest.NewRecorder()
	failing.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var env struct {
		Data HealthStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "error", env.Data.Status)
	assert.Equal(t, "ok", env.Data.Checks["database"])
	assert.Contains(t, env.Data.Checks["redis"], "failed")

	router := newTestRouter(t)
	rec, _ = do(t, router, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

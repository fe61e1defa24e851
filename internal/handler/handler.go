package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/savings-ledger/pkg/errors"
	"github.com/segyhp/savings-ledger/pkg/response"
)

// NewValidator returns a validator that understands decimal amounts and
// reports fields by their JSON names
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// range tags (gte, lte, gt) compare decimals as float64
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// base carries what every resource handler needs
type base struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// decode reads a JSON body into dst and validates it
func (b base) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.WrapValidation("body", "invalid JSON: "+err.Error())
	}

	if err := b.validator.Struct(dst); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			return customError.WrapValidation(fe.Field(), describe(fe))
		}
		return customError.WrapValidation("body", err.Error())
	}

	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must match the layout " + fe.Param()
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}

// pathID parses a uuid route variable
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, customError.WrapValidation(name, "must be a valid UUID")
	}
	return id, nil
}

func statusFor(code string) int {
	switch code {
	case customError.ErrCodeValidation, customError.ErrCodePaymentExceedsBalance:
		return http.StatusBadRequest
	case customError.ErrCodeMemberNotFound, customError.ErrCodeMeetingNotFound, customError.ErrCodeShareNotFound,
		customError.ErrCodeLoanNotFound, customError.ErrCodeWelfareNotFound:
		return http.StatusNotFound
	case customError.ErrCodeConcurrentUpdate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error envelope. Business errors keep their code and
// field; anything else is logged and reported as an internal error.
func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := response.RequestID(r.Context())

	var be *customError.BusinessError
	if !errors.As(err, &be) {
		b.logger.ErrorContext(r.Context(), "unhandled error",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		response.Error(w, http.StatusInternalServerError, response.ErrorResponse{
			Code:      customError.ErrCodeDatabaseError,
			Message:   "internal server error",
			RequestID: requestID,
		})
		return
	}

	status := statusFor(be.Code)
	if status == http.StatusInternalServerError {
		b.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", requestID),
			slog.String("code", be.Code),
			slog.Any("error", be))
	}

	response.Error(w, status, response.ErrorResponse{
		Code:      be.Code,
		Field:     be.Field,
		Message:   be.Message,
		RequestID: requestID,
	})
}

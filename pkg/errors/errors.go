package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation            = errors.New("validation error")
	ErrMemberNotFound        = errors.New("member not found")
	ErrMeetingNotFound       = errors.New("meeting not found")
	ErrShareNotFound         = errors.New("share not found")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrWelfareNotFound       = errors.New("welfare record not found")
	ErrPaymentExceedsBalance = errors.New("payment amount exceeds loan balance")
	ErrConcurrentUpdate      = errors.New("record was modified concurrently")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeMemberNotFound        = "MEMBER_NOT_FOUND"
	ErrCodeMeetingNotFound       = "MEETING_NOT_FOUND"
	ErrCodeShareNotFound         = "SHARE_NOT_FOUND"
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeWelfareNotFound       = "WELFARE_NOT_FOUND"
	ErrCodePaymentExceedsBalance = "PAYMENT_EXCEEDS_BALANCE"
	ErrCodeConcurrentUpdate      = "CONCURRENT_UPDATE"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// Code extracts the business error code from err, or "" when err is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// WrapValidation reports a field-level validation failure.
func WrapValidation(field, message string) *BusinessError {
	return &BusinessError{
		Code:    ErrCodeValidation,
		Field:   field,
		Message: fmt.Sprintf("%s: %s", field, message),
		Err:     ErrValidation,
	}
}

func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapMeetingNotFound(meetingID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMeetingNotFound,
		fmt.Sprintf("Meeting with ID %s not found", meetingID),
		ErrMeetingNotFound,
	)
}

func WrapShareNotFound(shareID string) *BusinessError {
	return NewBusinessError(
		ErrCodeShareNotFound,
		fmt.Sprintf("Share with ID %s not found", shareID),
		ErrShareNotFound,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapWelfareNotFound(welfareID string) *BusinessError {
	return NewBusinessError(
		ErrCodeWelfareNotFound,
		fmt.Sprintf("Welfare record with ID %s not found", welfareID),
		ErrWelfareNotFound,
	)
}

// WrapPaymentExceedsBalance names both the excess and the balance so the caller can correct the amount.
func WrapPaymentExceedsBalance(amount, balance string, excess string) *BusinessError {
	return &BusinessError{
		Code:    ErrCodePaymentExceedsBalance,
		Field:   "amount",
		Message: fmt.Sprintf("Payment amount %s exceeds loan balance %s by %s", amount, balance, excess),
		Err:     ErrPaymentExceedsBalance,
	}
}

func WrapConcurrentUpdate(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentUpdate,
		fmt.Sprintf("Loan with ID %s was updated by another request, reload and retry", loanID),
		ErrConcurrentUpdate,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

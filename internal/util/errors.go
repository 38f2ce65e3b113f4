package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure; each kind maps to one HTTP status.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindConflict           Kind = "CONFLICT"
	KindNotFound           Kind = "NOT_FOUND"
	KindForbidden          Kind = "FORBIDDEN"
	KindQuotaExceeded      Kind = "QUOTA_EXCEEDED"
	KindLimitExceeded      Kind = "LIMIT_EXCEEDED"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindCodeMismatch       Kind = "CODE_MISMATCH"
	KindUpstreamFailure    Kind = "UPSTREAM_FAILURE"
	KindTooManyRequests    Kind = "TOO_MANY_REQUESTS"
	KindUnauthorized       Kind = "UNAUTHORIZED"
)

var kindStatus = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindConflict:           http.StatusConflict,
	KindNotFound:           http.StatusNotFound,
	KindForbidden:          http.StatusForbidden,
	KindQuotaExceeded:      http.StatusConflict,
	KindLimitExceeded:      http.StatusBadRequest,
	KindPreconditionFailed: http.StatusPreconditionFailed,
	KindCodeMismatch:       http.StatusBadRequest,
	KindUpstreamFailure:    http.StatusBadGateway,
	KindTooManyRequests:    http.StatusTooManyRequests,
	KindUnauthorized:       http.StatusUnauthorized,
}

// AppError is the error type services return for expected failures.
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Kind and Message so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func (e *AppError) Status() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func NewError(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// NewValidationError reports one or more invalid input fields.
func NewValidationError(fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func FieldError(field, message string) *AppError {
	return NewValidationError(map[string]string{field: message})
}

// KindOf returns the kind of the first AppError in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

var (
	ErrAccountNotFound     = NewError(KindNotFound, "account not found")
	ErrNoPendingCode       = NewError(KindNotFound, "no pending verification code")
	ErrCodeMismatch        = NewError(KindCodeMismatch, "verification code does not match")
	ErrAlreadyRegistered   = NewError(KindConflict, "account is already registered")
	ErrNationalCodeTaken   = NewError(KindConflict, "national code is registered to another phone number")
	ErrNotVerified         = NewError(KindPreconditionFailed, "account is not verified")
	ErrResendTooSoon       = NewError(KindTooManyRequests, "a code was sent recently, try again later")
	ErrInvalidToken        = NewError(KindUnauthorized, "invalid or expired token")
	ErrProfileNotFound     = NewError(KindNotFound, "profile not found")
	ErrProfileExists       = NewError(KindConflict, "profile already exists")
	ErrProfileRequired     = NewError(KindPreconditionFailed, "a profile is required before posting ads")
	ErrSampleLimit         = NewError(KindLimitExceeded, "a profile can hold at most 5 sample images")
	ErrImageNotFound       = NewError(KindNotFound, "image not found")
	ErrAdNotFound          = NewError(KindNotFound, "ad not found")
	ErrAdQuotaExceeded     = NewError(KindQuotaExceeded, "ad quota for this role has been reached")
	ErrAdImageLimit        = NewError(KindLimitExceeded, "an ad can hold at most 5 images")
	ErrNotAdOwner          = NewError(KindForbidden, "only the owner can modify this ad")
	ErrRequestNotFound     = NewError(KindNotFound, "cooperation request not found")
	ErrRecipientNotFound   = NewError(KindNotFound, "recipient not found")
	ErrDuplicateRequest    = NewError(KindConflict, "a cooperation request for this ad already exists")
	ErrNotRecipient        = NewError(KindForbidden, "only the recipient can respond to this request")
	ErrNotParticipant      = NewError(KindForbidden, "you are not a participant of this request")
	ErrNotSender           = NewError(KindForbidden, "only the sender can cancel this request")
	ErrRequestNotPending   = NewError(KindConflict, "cooperation request is no longer pending")
	ErrSavedAdNotFound     = NewError(KindNotFound, "saved ad not found")
	ErrAdAlreadySaved      = NewError(KindConflict, "ad is already saved")
	ErrNotSavedAdOwner     = NewError(KindForbidden, "saved ad belongs to another account")
	ErrPermissionDenied    = NewError(KindForbidden, "permission denied")
	ErrSMSDeliveryFailed   = NewError(KindUpstreamFailure, "sms gateway rejected the message")
	ErrSMSGatewayUnreached = NewError(KindUpstreamFailure, "sms gateway is unreachable")
)

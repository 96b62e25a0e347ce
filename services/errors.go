package services

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/utils"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindConflict
)

// Error là lỗi nghiệp vụ; controller dịch Kind sang HTTP status.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func FieldValidation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

var (
	ErrDuplicateEnrollment = Validation("Member is already enrolled in this class")
	ErrClassFull           = Validation("Class is full")
)

// FromDB chuyển lỗi gorm/driver sang lỗi nghiệp vụ: not found, trùng unique, còn lại là internal.
func FromDB(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(notFoundMsg)
	}
	if field, ok := utils.UniqueViolationField(err); ok {
		return &Error{
			Kind:    KindValidation,
			Field:   field,
			Message: fmt.Sprintf("%s already exists", field),
			Err:     err,
		}
	}
	return Internal("Database error", err)
}

// AsError luôn trả về *Error để controller xử lý thống nhất.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return FromDB(err, "Not found").(*Error)
}

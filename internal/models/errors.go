package models

import (
	"errors"
	"fmt"
)

// ErrValidation: корневая ошибка для всех ошибок ввода участника.
// Операция отклоняется, состояние сессии не меняется.
var ErrValidation = errors.New("validation failed")

// ValidationError: ошибка ввода; errors.Is(err, ErrValidation) для нее истинно.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func newValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

var (
	ErrConsentRequired  = newValidationError("participant consent is required")
	ErrIdentityRequired = newValidationError("name and phone suffix are required")
	ErrOfferOutOfRange  = newValidationError("offer is outside of the allowed range")
	ErrInvalidEmotion   = newValidationError("unknown emotion label")
	ErrInvalidResponse  = newValidationError("response must be accept or reject")
	ErrInvalidConfig    = newValidationError("invalid experiment configuration")
	// ErrInvalidState: действие недопустимо в текущем состоянии сессии.
	ErrInvalidState = newValidationError("action is not allowed in the current session state")
	// ErrWrongRole: действие не соответствует роли текущего раунда.
	ErrWrongRole = newValidationError("action does not match the role of the current trial")
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotFinished = errors.New("session is not finished yet")
)

// SinkError: ошибка записи во внешнее хранилище результатов.
// Не фатальна: сессия продолжается на данных в памяти.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("result sink %s: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries a user-facing message and the HTTP status it maps to.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

var (
	ErrNotFound            = New("entity not found", http.StatusNotFound)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)

	// domain sentinels
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidReward      = errors.New("invalid reward")
	ErrReportClaimed      = errors.New("report already claimed")
	ErrAlreadyVerified    = errors.New("report already verified")
	ErrGatewayUnavailable = errors.New("verification gateway unavailable")
	InActiveUserError     = errors.New("user inactive")
)

package domain

import "errors"

var (
	ErrValidation = errors.New("validation error")

	ErrTrainNotFound   = errors.New("train not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateCredential = errors.New("username or mobile already exists")

	ErrSeatUnavailable          = errors.New("no seats available")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
)

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTrainNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsPolicyViolation reports whether err is a business rule rejection.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrSeatUnavailable) || errors.Is(err, ErrCancellationWindowClosed)
}

package response

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"wishlist/internal/lib/errs"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func OKMessage(msg string) Response {
	return Response{
		Status:  StatusOK,
		Message: html.EscapeString(msg),
	}
}

// Error escapes msg; it may echo user input back to a browser.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  html.EscapeString(msg),
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}

	return Error(strings.Join(errMsgs, ", "))
}

// StatusOf maps an engine error to the HTTP status it is reported with.
func StatusOf(err error) int {
	kind := errs.KindOf(err)
	switch {
	case kind == errs.KindMissingRequiredParameter, kind.Within(errs.KindInvalidParameter):
		return http.StatusBadRequest
	case kind.Within(errs.KindInvalidToken):
		return http.StatusUnauthorized
	case kind == errs.KindUnverifiedWishlist:
		return http.StatusForbidden
	case kind == errs.KindWishlistNotFound, kind == errs.KindItemNotFound:
		return http.StatusNotFound
	case kind == errs.KindReservationNotHeld:
		return http.StatusConflict
	case kind == errs.KindRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorOf is the body reported for err. Failures without a client-facing
// kind are not described.
func ErrorOf(err error) Response {
	if StatusOf(err) == http.StatusInternalServerError {
		return Error("Internal error")
	}
	return Error(errs.DetailOf(err))
}

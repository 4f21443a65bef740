package apimodel

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type ErrorMessage struct {
	ErrStatusCode int    `json:"status_code"`
	ErrMessage    string `json:"message"`
}

// NewErrorMessage returns a message for status, with the standard text when
// message is empty.
func NewErrorMessage(status int, message string) *ErrorMessage {
	if message == "" {
		message = defaultMessage(status)
	}
	return &ErrorMessage{ErrStatusCode: status, ErrMessage: message}
}

func (e *ErrorMessage) StatusCode() int {
	return e.ErrStatusCode
}

func (e *ErrorMessage) Title() string {
	return e.ErrMessage
}

func (e *ErrorMessage) Error() string {
	if e.ErrMessage != "" {
		return strconv.Itoa(e.ErrStatusCode) + ":" + e.ErrMessage
	} else {
		return strconv.Itoa(e.ErrStatusCode)
	}
}

func (e *ErrorMessage) SendError(w http.ResponseWriter) {
	if e.ErrMessage == "" {
		e.ErrMessage = defaultMessage(e.ErrStatusCode)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.ErrStatusCode)
	err := json.NewEncoder(w).Encode(e)
	if err != nil {
		logrus.Warnf("error when encoding error: %v", err)
	}
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusOK:
		return "Ok"
	case http.StatusNotFound:
		return "Page not found"
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusServiceUnavailable:
		return "Service unavailable"
	case http.StatusBadRequest:
		return "Bad request"
	default:
		return "Internal error"
	}
}

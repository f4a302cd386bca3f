package rest

import (
	"encoding/json"
	"log"
	"net/http"

	"collectbook/internal/service"
)

type APIResponse struct {
	ErrorCode int    `json:"error_code"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

func Response(w http.ResponseWriter, message string, data any, errorCode int, status string, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	response := APIResponse{
		ErrorCode: errorCode,
		Status:    status,
		Message:   message,
		Data:      data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("[HTTP] write response error: %v", err)
	}
}

func Success(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, "success", http.StatusOK)
}

func SuccessCreated(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, "success", http.StatusCreated)
}

func SuccessAccepted(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, "success", http.StatusAccepted)
}

func Error(w http.ResponseWriter, message string, errorCode int, httpStatus int) {
	Response(w, message, nil, errorCode, "error", httpStatus)
}

func ErrorBadRequest(w http.ResponseWriter, message string) {
	Error(w, message, 400, http.StatusBadRequest)
}

func ErrorUnauthorized(w http.ResponseWriter, message string) {
	Error(w, message, 401, http.StatusUnauthorized)
}

func ErrorNotFound(w http.ResponseWriter, message string) {
	Error(w, message, 404, http.StatusNotFound)
}

func ErrorInternal(w http.ResponseWriter, message string) {
	Error(w, message, 500, http.StatusInternalServerError)
}

// ServiceError maps a service error kind onto the HTTP envelope. The kind
// travels in the status field so clients can branch without parsing the
// message.
func ServiceError(w http.ResponseWriter, err error) {
	kind := service.KindOf(err)

	var httpStatus int
	switch kind {
	case service.KindValidation:
		httpStatus = http.StatusBadRequest
	case service.KindAuthentication:
		httpStatus = http.StatusUnauthorized
	case service.KindNotFound:
		httpStatus = http.StatusNotFound
	case service.KindConflict:
		httpStatus = http.StatusConflict
	case service.KindAmountMismatch, service.KindAlreadyComplete, service.KindInsufficientBalance:
		httpStatus = http.StatusUnprocessableEntity
	default:
		httpStatus = http.StatusInternalServerError
	}

	message := err.Error()
	if kind == service.KindStore {
		log.Printf("[HTTP] store error: %v", err)
		message = "internal error"
	}

	Response(w, message, nil, httpStatus, string(kind), httpStatus)
}

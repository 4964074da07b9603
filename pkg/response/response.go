// Package response writes JSON bodies and maps application errors to HTTP statuses.
package response

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	goahttp "goa.design/goa/v3/http"
	goamiddleware "goa.design/goa/v3/middleware"

	apperrors "realtyhub/pkg/errors"
)

// ErrorBody is the shape of every error response
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody acknowledges a write that returns no record
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	// Pin the content type so browser Accept headers cannot select another encoding
	ctx := context.WithValue(r.Context(), goahttp.ContentTypeKey, "application/json")
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(v); err != nil {
		log.Printf("[RESPONSE] Failed to encode body for %s %s: %v", r.Method, r.URL.Path, err)
	}
}

func OK(w http.ResponseWriter, r *http.Request, v interface{}) {
	JSON(w, r, http.StatusOK, v)
}

func Created(w http.ResponseWriter, r *http.Request, v interface{}) {
	JSON(w, r, http.StatusCreated, v)
}

func Message(w http.ResponseWriter, r *http.Request, message string) {
	JSON(w, r, http.StatusOK, MessageBody{Message: message})
}

// Error writes err as {"error": message}
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, message := Describe(r, err)
	JSON(w, r, status, ErrorBody{Error: message})
}

// Describe maps err to a status and a message safe to show clients. Errors
// without an application code are logged and reported as a generic 500.
func Describe(r *http.Request, err error) (int, string) {
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		log.Printf("[ERROR] %s %s (request %v): %v", r.Method, r.URL.Path, r.Context().Value(goamiddleware.RequestIDKey), err)
		return http.StatusInternalServerError, "Internal server error"
	}
	if status == http.StatusServiceUnavailable {
		log.Printf("[STORAGE] %s %s: %v", r.Method, r.URL.Path, err)
	}
	return status, appErr.Message
}

// Decode reads the request body into v using the request content type
func Decode(r *http.Request, v interface{}) error {
	if err := goahttp.RequestDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.BadRequest("Request body is required")
		}
		return apperrors.Wrap(apperrors.ErrCodeBadRequest, "Invalid request body", err)
	}
	return nil
}

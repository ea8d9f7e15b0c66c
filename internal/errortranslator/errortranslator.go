// Package errortranslator turns the errors produced by the handlers and the
// OpenAPI gate into an HTTP status and a JSON body. It is the only place
// where error responses are rendered.
package errortranslator

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/apidemo/internal/logger"
	"github.com/patric-chuzhbe/apidemo/internal/models"
)

// Classification names understood by Translate.
const (
	NameValidation   = "ValidationError"
	NameUnauthorized = "UnauthorizedError"
	NameNotFound     = "Not Found"
	NameBadRequest   = "Bad Request"
	NameMethod       = "Method Not Allowed"
	NameInternal     = "Internal Server Error"
)

// User facing messages.
const (
	MessageValidation      = "Error de validación de datos"
	MessageUnauthorized    = "No autorizado para acceder a este recurso"
	MessagePageNotFound    = "Pagina no encontrada"
	MessageUserNotFound    = "Recurso no encontrado"
	MessageProductNotFound = "Producto no encontrado"
	MessageInvalidProduct  = "Datos de producto inválidos"
	MessageInvalidUser     = "Datos de usuario inválidos"
)

// Detail is one entry of the `detalles` list.
type Detail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is a classified error. Status 0 means 500.
type Error struct {
	Name    string
	Status  int
	Message string
	Details []Detail
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Envelope is the uniform error body.
type Envelope struct {
	Error    string   `json:"error"`
	Detalles []Detail `json:"detalles"`
}

// MessageBody is the body of resource level errors.
type MessageBody struct {
	Message string `json:"message"`
}

// NewValidationError classifies a schema rejection.
func NewValidationError(details []Detail, err error) *Error {
	return &Error{
		Name:    NameValidation,
		Status:  http.StatusBadRequest,
		Message: "request does not match the API document",
		Details: details,
		Err:     err,
	}
}

// NewBadRequest classifies a request whose body could not be read.
func NewBadRequest(err error) *Error {
	return &Error{
		Name:    NameBadRequest,
		Status:  http.StatusBadRequest,
		Message: err.Error(),
		Err:     err,
	}
}

// NewNotFound classifies a request for an unknown route.
func NewNotFound() *Error {
	return &Error{
		Name:    NameNotFound,
		Status:  http.StatusNotFound,
		Message: "not found",
	}
}

// NewMethodNotAllowed classifies a request with a method the route does not serve.
func NewMethodNotAllowed() *Error {
	return &Error{
		Name:    NameMethod,
		Status:  http.StatusMethodNotAllowed,
		Message: "method not allowed",
	}
}

func messageFor(classified *Error) string {
	switch classified.Name {
	case NameValidation:
		return MessageValidation
	case NameUnauthorized:
		return MessageUnauthorized
	case NameNotFound:
		return MessagePageNotFound
	default:
		return classified.Message
	}
}

// Translate maps err to a status code and the body to send.
func Translate(err error) (int, any) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, MessageBody{Message: MessageUserNotFound}
	case errors.Is(err, models.ErrProductNotFound):
		return http.StatusNotFound, MessageBody{Message: MessageProductNotFound}
	case errors.Is(err, models.ErrInvalidProduct):
		return http.StatusBadRequest, MessageBody{Message: MessageInvalidProduct}
	case errors.Is(err, models.ErrInvalidUser):
		return http.StatusBadRequest, MessageBody{Message: MessageInvalidUser}
	}

	var classified *Error
	if errors.As(err, &classified) {
		status := classified.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, Envelope{
			Error:    messageFor(classified),
			Detalles: classified.Details,
		}
	}

	message := "internal error"
	if err != nil {
		message = err.Error()
	}

	return http.StatusInternalServerError, Envelope{Error: message}
}

// RespondWithJSON writes data as a JSON response with the given status code.
func RespondWithJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Errorln("failed to encode JSON response", zap.Error(err))
	}
}

// Respond translates err and writes the result.
func Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Translate(err)

	if status >= http.StatusInternalServerError {
		logger.Log.Errorln(
			"request failed",
			"request_id", logger.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			zap.Error(err),
		)
	} else {
		logger.Log.Debugln(
			"request rejected",
			"request_id", logger.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			zap.Error(err),
		)
	}

	RespondWithJSON(w, status, body)
}

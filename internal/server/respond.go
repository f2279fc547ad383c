package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// msgServerError is the client message for unexpected failures.
const msgServerError = "Server error"

// responder writes the {success, message, ...} envelope shared by every route.
type responder struct {
	logger *zap.Logger
	// exposeErrors adds the internal error text to 5xx bodies outside production.
	exposeErrors bool
}

// ok writes a success body with the given payload fields.
func (rs responder) ok(w http.ResponseWriter, status int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	rs.write(w, status, body)
}

// message writes a success body carrying only a message.
func (rs responder) message(w http.ResponseWriter, msg string) {
	rs.ok(w, http.StatusOK, map[string]any{"message": msg})
}

// reject writes a failure body for a status the handler picked itself.
func (rs responder) reject(w http.ResponseWriter, status int, msg string) {
	rs.write(w, status, map[string]any{"success": false, "message": msg})
}

// fail writes a failure body for err. Client errors keep their own message; anything else
// is logged and answered with fallback.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := HTTPStatus(err)
	if msg, ok := clientMessage(err); ok {
		rs.reject(w, status, msg)
		return
	}

	rs.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	body := map[string]any{"success": false, "message": fallback}
	if rs.exposeErrors {
		body["error"] = err.Error()
	}
	rs.write(w, status, body)
}

func (rs responder) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rs.logger.Debug("failed to encode response", zap.Error(err))
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &ErrValidation{Message: "Invalid request body"}
	}
	return nil
}

// validationError converts validator output to an ErrValidation naming the first failure.
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return &ErrValidation{Field: fe.Field(), Message: fe.Tag()}
	}
	return &ErrValidation{Message: "validation error: invalid request"}
}

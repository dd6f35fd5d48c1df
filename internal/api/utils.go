package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	// DefaultBodyLimit bounds preference, selection and chat payloads.
	DefaultBodyLimit int64 = 64 << 10
	// SnapshotBodyLimit bounds PDF export payloads, which carry a base64 map image.
	SnapshotBodyLimit int64 = 16 << 20
)

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse writes the JSON error envelope tagged with the request id.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, errorEnvelope{
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// WriteJSONResponse encodes data as the response body. 204 writes no body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		logWriteFailure(r, "Failed to marshal JSON response", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		logWriteFailure(r, "Failed to write response body", err)
	}
}

// WriteAttachment sends an exported document as a download.
func WriteAttachment(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logWriteFailure(r, "Failed to write attachment", err, slog.String("filename", filename))
	}
}

func logWriteFailure(r *http.Request, msg string, err error, attrs ...any) {
	args := append([]any{
		slog.Any("error", err),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}, attrs...)
	slog.ErrorContext(r.Context(), msg, args...)
}

// DecodeJSONBody decodes a single JSON object capped at DefaultBodyLimit.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	return DecodeJSONBodyLimit(w, r, dst, DefaultBodyLimit)
}

// DecodeJSONBodyLimit decodes a single JSON object, rejecting unknown keys,
// trailing values and bodies over limit bytes.
func DecodeJSONBodyLimit(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return describeDecodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// describeDecodeError turns decoder failures into messages safe to return to clients.
func describeDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	var maxBytesError *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q (wanted %s)", unmarshalTypeError.Field, unmarshalTypeError.Type)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return fmt.Errorf("body contains unknown key %q", field)
	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
	case errors.As(err, &invalidUnmarshalError):
		panic(fmt.Errorf("invalid decode target: %w", err))
	default:
		return fmt.Errorf("error decoding JSON body: %w", err)
	}
}

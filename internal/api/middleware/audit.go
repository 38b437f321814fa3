package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

// Audit records one entry for every successful response of the wrapped
// handler. The entry is built after the handler has written its response and
// handed to recorder, which must not block.
//
// The entity id is taken from the integer :id path parameter, falling back
// to the "id" field of a JSON response body, and is left empty otherwise.
func Audit(recorder ports.AuditRecorder, action domain.AuditAction, entityType string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			original := res.Writer
			body := new(bytes.Buffer)
			res.Writer = &captureWriter{Writer: io.MultiWriter(original, body), ResponseWriter: original}
			defer func() { res.Writer = original }()

			if err := next(c); err != nil {
				return err
			}

			if res.Status < http.StatusOK || res.Status >= http.StatusMultipleChoices {
				return nil
			}
			identity, ok := IdentityFrom(c)
			if !ok {
				return nil
			}

			userID := identity.ID
			recorder.Record(domain.AuditEntry{
				UserID:     &userID,
				UserRole:   identity.Role,
				Action:     action,
				EntityType: entityType,
				EntityID:   entityID(c, body.Bytes()),
				Timestamp:  time.Now().UTC(),
			})
			return nil
		}
	}
}

func entityID(c echo.Context, body []byte) *int64 {
	if raw := c.Param("id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return &id
		}
	}

	var payload struct {
		ID *int64 `json:"id"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		return payload.ID
	}
	return nil
}

// captureWriter tees the response body into a buffer.
type captureWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *captureWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *captureWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

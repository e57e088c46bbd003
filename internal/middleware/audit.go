package middleware

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/memories-api/internal/service"
)

// auditWriter tees everything the handler writes into a buffer while
// passing it through to the client untouched.
type auditWriter struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (aw *auditWriter) Write(b []byte) (int, error) {
	aw.body.Write(b)
	return aw.ResponseWriter.Write(b)
}

// Audit returns a middleware that records one audit row per request: the
// request payload, the raw response body, and a source label like
// "PUT /memories/{id}".
//
// OBSERVE, DON'T INTERFERE:
// The middleware never changes what the client receives. The handler's status
// code, headers, and body go out exactly as written; the audit row is written
// AFTER the response, and a failed insert only produces a log line (that rule
// lives in AuditService, not here).
//
// TWO KINDS OF REQUEST BODY:
// JSON bodies are small, so they are buffered whole and stored verbatim (the
// handler reads a replay). Multipart bodies carry up to 5 MiB of media that
// the upload handler must STREAM to disk — those are never buffered; the row
// stores the content type and declared length instead, and the body flows to
// the handler untouched.
func Audit(audits *service.AuditService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request, ok := captureRequest(r, logger)
			if !ok {
				http.Error(w, "", http.StatusBadRequest)
				return
			}

			wrapped := &auditWriter{ResponseWriter: w}
			next.ServeHTTP(wrapped, r)

			audits.Record(r.Context(), auditSource(r), request, wrapped.body.String())
		})
	}
}

// captureRequest produces the string stored in the audit row's request column.
// For multipart requests the body is left alone; everything else is buffered
// and replayed to the handler.
func captureRequest(r *http.Request, logger *slog.Logger) (string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return fmt.Sprintf(`{"contentType":%q,"contentLength":%d}`,
			r.Header.Get("Content-Type"), r.ContentLength), true
	}

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("audit: failed to read request body", slog.String("error", err.Error()))
		return "", false
	}
	r.Body = io.NopCloser(bytes.NewReader(requestBody))
	return string(requestBody), true
}

// auditSource labels the row with the matched route PATTERN, not the concrete
// URL: "PUT /memories/{id}" groups every edit together, where the raw path
// would scatter them across one label per uuid.
func auditSource(r *http.Request) string {
	source := r.URL.Path
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			source = pattern
		}
	}
	return r.Method + " " + source
}

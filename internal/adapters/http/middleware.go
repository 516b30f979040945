package httpadapter

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// Full analysis runs hold the request open for minutes; anything slower than
// this gets flagged in the access log so pipeline latency regressions stand
// out without a metrics query.
const slowRequestAfter = 30 * time.Second

type requestIDKey struct{}

// RequestID returns the identifier the tracing middleware attached to ctx,
// or "" outside a request scope.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tap := &responseTap{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(tap, r)

		elapsed := time.Since(start)
		attrs := []any{
			slog.String("request_id", RequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", tap.status),
			slog.Int64("elapsed_ms", elapsed.Milliseconds()),
			slog.Int("response_bytes", tap.written),
			slog.String("client", clientAddr(r)),
		}
		if elapsed > slowRequestAfter {
			attrs = append(attrs, slog.Bool("slow", true))
		}
		logFor(tap.status)("api_request", attrs...)
	})
}

func logFor(status int) func(string, ...any) {
	switch {
	case status >= 500:
		return slog.Error
	case status >= 400:
		return slog.Warn
	}
	return slog.Info
}

func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// responseTap records what the handler wrote so the access log can report
// status and size.
type responseTap struct {
	http.ResponseWriter
	status  int
	written int
}

func (t *responseTap) WriteHeader(status int) {
	t.status = status
	t.ResponseWriter.WriteHeader(status)
}

func (t *responseTap) Write(b []byte) (int, error) {
	n, err := t.ResponseWriter.Write(b)
	t.written += n
	return n, err
}

func (t *responseTap) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

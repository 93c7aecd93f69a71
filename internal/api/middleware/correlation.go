package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const correlationKey ctxKey = iota

// Inbound ids longer than this are replaced rather than trusted; agent
// frontends send UUIDs, anything bigger is noise or abuse.
const maxCorrelationIDLen = 64

// CorrelationID attaches a correlation id to every request: the inbound
// X-Correlation-ID header when present and sane, a fresh UUID otherwise.
// The id rides the request context and is echoed on the response, letting
// an agent's frontend line up a pull with the server's log lines.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" || len(id) > maxCorrelationIDLen {
			id = uuid.New().String()
		}
		w.Header().Set("X-Correlation-ID", id)
		ctx := context.WithValue(r.Context(), correlationKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID returns the request's correlation id, or "" outside a
// request handled by CorrelationID.
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}

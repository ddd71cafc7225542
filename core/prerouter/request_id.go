package prerouter

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKeyType struct{}

var requestIDKey requestIDKeyType

// RequestIDHeader is set on every response so a client error report
// can be matched to the server logs.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns each request a uuid, unless the client already
// sent one.
type RequestID struct{}

func NewRequestID() *RequestID {
	return &RequestID{}
}

func (ri *RequestID) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id, or the empty string
// when the request did not pass through the middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

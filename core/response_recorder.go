package core

import (
	"net/http"
)

// ResponseRecorder wraps http.ResponseWriter to capture the status
// code and bytes written, so middleware running before the router can
// observe the outcome.
//
// Status starts at 200 because handlers may write the body without
// ever calling WriteHeader.
type ResponseRecorder struct {
	http.ResponseWriter
	Status       int
	BytesWritten int64
	wroteHeader  bool
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{
		ResponseWriter: w,
		Status:         http.StatusOK,
	}
}

func (r *ResponseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.Status = status
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *ResponseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.BytesWritten += int64(n)
	return n, err
}

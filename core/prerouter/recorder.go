// Package prerouter holds the middleware that runs before the router:
// recording, request logging, metrics, request ids and the IP circuit
// breaker.
package prerouter

import (
	"net/http"

	"github.com/caasmo/daybook/core"
)

// Recorder wraps the response writer in a core.ResponseRecorder so
// downstream middleware can read the status code. It must run first in
// the chain.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (rec *Recorder) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(*core.ResponseRecorder); ok {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(core.NewResponseRecorder(w), r)
	})
}

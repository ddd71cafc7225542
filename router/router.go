package router

import (
	"net/http"
)

// Router abstracts the HTTP mux so implementations (httprouter,
// net/http ServeMux) can be swapped via options.
//
// Patterns use the Go 1.22 ServeMux form "METHOD /path/{param}".
type Router interface {
	http.Handler

	Handle(pattern string, handler http.Handler)
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))

	// Param returns the named path parameter for the request, or the
	// empty string when absent.
	Param(req *http.Request, key string) string
}

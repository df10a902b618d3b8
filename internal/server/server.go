package server

import (
	"net/http"

	"connectrpc.com/connect"
)

// ConnectService is implemented by each service to register its connect handler.
type ConnectService interface {
	RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler)
}

// NewMux mounts every service under its procedure prefix.
func NewMux(services []ConnectService, interceptors ...connect.Interceptor) *http.ServeMux {
	mux := http.NewServeMux()
	for _, svc := range services {
		path, handler := svc.RegisterHandler(interceptors...)
		mux.Handle(path, handler)
	}
	return mux
}

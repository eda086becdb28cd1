// Package server assembles the HTTP surface: routes, middleware, health and
// metrics endpoints.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"token-session-service/internal/session/handler"
)

// NewRouter builds the application router with request-id and access-log
// middleware applied to every route.
func NewRouter(log *zap.Logger, sessions *handler.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID)
	r.Use(ClientIP)
	r.Use(AccessLog(log))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	sessions.Register(r)
	return r
}

// New returns an http.Server with sane timeouts for a token endpoint.
func New(addr string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

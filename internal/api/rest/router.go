package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RouterConfig параметры маршрутизатора
type RouterConfig struct {
	UploadDir      string // пусто, если загрузки не раздаются
	RateLimitRPS   float64
	RateLimitBurst int
	MaxUploadBytes int64
}

// NewRouter собирает маршруты дашборда и API
func NewRouter(cfg RouterConfig, h *Handlers, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()

	middlewares := []mux.MiddlewareFunc{
		requestIDMiddleware,
		recoveryMiddleware(log),
		accessLogMiddleware(log),
		rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, log),
	}
	r.Use(middlewares...)

	// mux не прогоняет 404 и 405 через r.Use, оборачиваем их той же цепочкой
	r.NotFoundHandler = chain(middlewares, func(w http.ResponseWriter, req *http.Request) {
		newResponder(w, req, log).fail(http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowedHandler = chain(middlewares, func(w http.ResponseWriter, req *http.Request) {
		newResponder(w, req, log).fail(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.HandleFunc("/", serveDashboard).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	r.HandleFunc("/api/dataset", h.listDataset).Methods(http.MethodGet)
	r.HandleFunc("/api/dataset/{id}", h.getRecord).Methods(http.MethodGet)
	r.HandleFunc("/api/dataset/{id}/view/{mode}", h.viewRecord).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", h.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/setup", h.setup).Methods(http.MethodPost)
	r.Handle("/api/analyze", maxBodyMiddleware(cfg.MaxUploadBytes, log)(http.HandlerFunc(h.analyze))).
		Methods(http.MethodPost)

	if cfg.UploadDir != "" {
		r.PathPrefix("/uploads/").
			Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))).
			Methods(http.MethodGet)
	}

	return r
}

// chain применяет middleware в том же порядке, что и r.Use
func chain(middlewares []mux.MiddlewareFunc, fn http.HandlerFunc) http.Handler {
	var h http.Handler = fn
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

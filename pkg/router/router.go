package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

// Router is a chi mux with request logging and JSON 404/405 replies
type Router struct {
	mux    *chi.Mux
	log    *zap.Logger
	color  bool
	routes map[string]bool // key = METHOD:PATH
}

// New creates a router. color enables ANSI colors in request log lines.
func New(log *zap.Logger, color bool) *Router {
	r := &Router{
		mux:    chi.NewRouter(),
		log:    log,
		color:  color,
		routes: make(map[string]bool),
	}
	r.mux.Use(r.logRequests)
	r.mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, "{\"error\":%q}\n", msg)
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	r.routes[method+":"+path] = true
	r.mux.MethodFunc(method, path, http.HandlerFunc(handler))
}

func (r *Router) GET(path string, handler HandlerFunc) { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc) { r.register(http.MethodPost, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.register(http.MethodDelete, path, handler) }

// Handle mounts a handler for every method on pattern, e.g. "/swagger/*"
func (r *Router) Handle(pattern string, h http.Handler) {
	r.routes["*:"+pattern] = true
	r.mux.Handle(pattern, h)
}

// Routes lists the registered METHOD:PATH keys
func (r *Router) Routes() map[string]bool {
	return r.routes
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// URLParam returns a path parameter such as {name}
func URLParam(req *http.Request, key string) string {
	return chi.URLParam(req, key)
}

// --- Start server ---

// Start serves on addr until ctx is done, then shuts down gracefully
func (r *Router) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		r.log.Info(fmt.Sprintf("🚀 Server started on %shttp://localhost%s%s", r.paint(colorGreen), addr, r.paint(colorReset)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	r.log.Info("🛑 Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// --- Logging middleware ---
func (r *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, req)

		duration := time.Since(start)
		r.log.Info(fmt.Sprintf("%s%s%s %s %s%d%s %s(%v)%s",
			r.paint(methodColor(req.Method)), req.Method, r.paint(colorReset),
			req.URL.Path,
			r.paint(statusColor(lrw.statusCode)), lrw.statusCode, r.paint(colorReset),
			r.paint(colorBlue), duration, r.paint(colorReset),
		),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", lrw.statusCode),
			zap.Duration("duration", duration),
		)
	})
}

func (r *Router) paint(color string) string {
	if !r.color {
		return ""
	}
	return color
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut, http.MethodPatch:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}

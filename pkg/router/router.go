package router

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Router struct {
	mux    *http.ServeMux
	routes map[string]http.HandlerFunc // key = METHOD:PATH
	paths  map[string]bool             // track registered paths
	logger *zap.Logger
}

func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		mux:    http.NewServeMux(),
		routes: make(map[string]http.HandlerFunc),
		paths:  make(map[string]bool),
		logger: logger,
	}

	// Catch-all handler dispatching on method and path
	r.mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if h := r.lookup(req.Method, req.URL.Path); h != nil {
			h(lrw, req)
		} else if r.pathExists(req.URL.Path) {
			http.Error(lrw, "Method Not Allowed", http.StatusMethodNotAllowed)
		} else {
			http.Error(lrw, "Not Found", http.StatusNotFound)
		}

		r.logger.Info("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", lrw.statusCode),
			zap.Duration("duration", time.Since(start)))
	})

	return r
}

// lookup finds the handler for an exact route first, then for a wildcard route
func (r *Router) lookup(method, path string) http.HandlerFunc {
	if h, ok := r.routes[method+":"+path]; ok {
		return h
	}
	for routePath := range r.paths {
		if strings.Contains(routePath, "/*") && matchWildcardRoute(path, routePath) {
			if h, ok := r.routes[method+":"+routePath]; ok {
				return h
			}
		}
	}
	return nil
}

func (r *Router) pathExists(path string) bool {
	if r.paths[path] {
		return true
	}
	for routePath := range r.paths {
		if strings.Contains(routePath, "/*") && matchWildcardRoute(path, routePath) {
			return true
		}
	}
	return false
}

// matchWildcardRoute checks if a request path matches a wildcard route pattern
func matchWildcardRoute(requestPath, routePattern string) bool {
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	// A trailing wildcard matches any number of remaining segments
	if len(routeSegments) > 0 && routeSegments[len(routeSegments)-1] == "*" {
		if len(requestSegments) < len(routeSegments)-1 {
			return false
		}
		for i := 0; i < len(routeSegments)-1; i++ {
			if requestSegments[i] != routeSegments[i] {
				return false
			}
		}
		return true
	}

	if len(requestSegments) != len(routeSegments) {
		return false
	}
	for i, routeSegment := range routeSegments {
		if routeSegment == "*" {
			continue
		}
		if requestSegments[i] != routeSegment {
			return false
		}
	}
	return true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler http.HandlerFunc) {
	key := method + ":" + path
	r.routes[key] = handler
	r.paths[path] = true
}

func (r *Router) GET(path string, handler http.HandlerFunc)  { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler http.HandlerFunc) { r.register(http.MethodPost, path, handler) }

// Getter methods for testing
func (r *Router) Routes() map[string]http.HandlerFunc {
	return r.routes
}

func (r *Router) Paths() map[string]bool {
	return r.paths
}

// Handler exposes the router as an http.Handler
func (r *Router) Handler() http.Handler {
	return r.mux
}

// Server builds an http.Server for addr; the caller owns its lifecycle
func (r *Router) Server(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        r.mux,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
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

package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// CORSConfig lists the origins allowed to call the API. An empty list or
// "*" allows every origin.
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

func (c CORSConfig) allows(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Routes returns the full HTTP surface with CORS and request logging.
func (h *Handler) Routes(cors CORSConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Categories)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /images/{category}", h.Images)
	mux.HandleFunc("GET /image/{category}/{image_name}", h.Image)
	mux.HandleFunc("GET /annotations/{category}/{image_name}", h.Annotations)
	mux.HandleFunc("GET /classify/{category}/{image_name}", h.Classify)
	return h.logRequests(enableCORS(cors, mux))
}

func enableCORS(cfg CORSConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && cfg.allows(origin) {
			// Credentials rule out a literal "*", so the origin is echoed.
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if origin != "" && !cfg.allows(origin) {
				http.Error(w, "Disallowed CORS origin", http.StatusBadRequest)
				return
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
			if hdrs := r.Header.Get("Access-Control-Request-Headers"); hdrs != "" {
				w.Header().Set("Access-Control-Allow-Headers", hdrs)
			}
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		h.logger.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
			"remote":   r.RemoteAddr,
		}).Debug("Request")
	})
}

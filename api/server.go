package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"image-extractor/internal/types"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const serviceName = "Product Image Extractor API"

// ImageExtractor turns a product URL into its images
type ImageExtractor interface {
	Extract(ctx context.Context, productURL string) (*types.ExtractionResult, error)
}

// ExtractResponse is the body of a successful extraction. Image is null when
// nothing was found.
type ExtractResponse struct {
	Success   bool     `json:"success"`
	URL       string   `json:"url"`
	Image     *string  `json:"image"`
	ImageList []string `json:"imageList"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Server exposes the extractor over HTTP
type Server struct {
	logger    *logrus.Logger
	extractor ImageExtractor
	domains   []string
	timeout   time.Duration
}

// NewServer creates a new API server. requestTimeout bounds a single extraction.
func NewServer(logger *logrus.Logger, extractor ImageExtractor, domains []string, requestTimeout time.Duration) *Server {
	return &Server{
		logger:    logger,
		extractor: extractor,
		domains:   domains,
		timeout:   requestTimeout,
	}
}

// Router builds the HTTP handler with all routes and middleware
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/api/extract-images", s.handleExtract)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	return r
}

type ctxKey int

const logEntryKey ctxKey = iota

// requestID tags every request with a uuid, echoed in X-Request-ID
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		entry := s.logger.WithField("request_id", id)
		ctx := context.WithValue(r.Context(), logEntryKey, entry)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs method, path, status and duration of every request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log(r).WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Info("Request handled")
	})
}

// log returns the request-scoped log entry
func (s *Server) log(r *http.Request) *logrus.Entry {
	if entry, ok := r.Context().Value(logEntryKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(s.logger)
}

// handleExtract handles GET /api/extract-images?url=
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	productURL := r.URL.Query().Get("url")
	if productURL == "" {
		s.sendError(w, r, "URL parameter is required", http.StatusBadRequest)
		return
	}

	if _, err := url.ParseRequestURI(productURL); err != nil {
		s.sendError(w, r, "Invalid URL format", http.StatusBadRequest)
		return
	}

	entry := s.log(r).WithField("url", productURL)
	entry.Info("Extraction request received")

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.extractor.Extract(ctx, productURL)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrInvalidURL):
			s.sendError(w, r, "Invalid URL format", http.StatusBadRequest)
		case errors.Is(err, types.ErrUnsupportedDomain):
			s.sendError(w, r, err.Error(), http.StatusBadRequest)
		default:
			entry.Errorf("Extraction failed: %v", err)
			s.sendError(w, r, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	response := ExtractResponse{
		Success:   true,
		URL:       productURL,
		ImageList: result.ImageList,
	}
	if result.Image != "" {
		response.Image = &result.Image
	}
	if response.ImageList == nil {
		response.ImageList = []string{}
	}

	entry.Infof("Extraction succeeded with %d gallery images", len(result.ImageList))
	s.sendJSON(w, r, http.StatusOK, response)
}

// handleIndex describes the service and lists the supported domains
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, r, http.StatusOK, map[string]interface{}{
		"message": serviceName,
		"endpoints": map[string]string{
			"extractImages": "GET /api/extract-images?url=<ecommerce-url>",
			"health":        "GET /health",
		},
		"supportedDomains": s.domains,
	})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.sendError(w, r, "Endpoint not found", http.StatusNotFound)
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	s.sendJSON(w, r, statusCode, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log(r).Errorf("Failed to encode response: %v", err)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/alnah/papyrus"
)

// appName is reported by the health endpoint.
const appName = "Papyrus AI Backend"

// api holds the handlers' dependencies.
type api struct {
	svc    *services
	logger *zap.Logger
	now    func() time.Time
}

// newRouter builds the HTTP API over svc.
func newRouter(svc *services, now func() time.Time) http.Handler {
	if now == nil {
		now = time.Now
	}
	a := &api{svc: svc, logger: svc.logger, now: now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(svc.logger))
	r.Use(middleware.Recoverer)
	if origin := svc.cfg.Server.CORSOrigin; origin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:     []string{origin},
			AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials:   true,
			MaxAge:             300,
			OptionsPassthrough: true,
		}))
	}
	r.Use(preflight)
	r.Use(maxBody(svc.cfg.Server.MaxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.health)

		r.Route("/content", func(r chi.Router) {
			r.Post("/analyze", a.analyzeContent)
			r.Post("/enhance", a.enhanceContent)
			r.Post("/extract", a.extractContent)
			r.Post("/process", a.processContent)
			r.Get("/suggestions/{type}", a.suggestions)
		})

		r.Route("/pdf", func(r chi.Router) {
			r.Post("/generate", a.generatePDF)
			r.Post("/preview", a.previewPDF)
			r.Get("/templates", a.listTemplates)
			r.Get("/templates/{id}", a.getTemplate)
		})

		r.Route("/charts", func(r chi.Router) {
			r.Post("/generate", a.generateChart)
			r.Post("/diagram", a.generateDiagram)
			r.Post("/extract-data", a.extractChartData)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Post("/document", a.uploadDocument)
			r.Post("/batch", a.uploadBatch)
			r.Get("/status/{id}", a.uploadStatus)
		})
	})

	prefix := "/generated"
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(svc.cfg.Paths.OutputDir)))
	r.Get(prefix+"/*", files.ServeHTTP)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Route not found"})
	})
	return r
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

// requestLogger logs one line per request at Info.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr))
		})
	}
}

// preflight answers OPTIONS requests with 204 once the CORS headers are set.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func maxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

// fieldError is one entry of a validation failure.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeValidation(w http.ResponseWriter, details ...fieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Validation failed",
		"details": details,
	})
}

// decodeJSON reads the request body into v. It writes the 400 response
// itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"error":     "Request body too large",
				"max_bytes": tooLarge.Limit,
			})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid JSON body",
			"message": err.Error(),
		})
		return false
	}
	return true
}

// failure maps err to a status code and writes it. action completes
// "Failed to ...".
func (a *api) failure(w http.ResponseWriter, r *http.Request, action string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, papyrus.ErrNoCompleter):
		code = http.StatusServiceUnavailable
	case errors.Is(err, papyrus.ErrTemplateNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Template not found"})
		return
	case errors.Is(err, papyrus.ErrEmptyText),
		errors.Is(err, papyrus.ErrEmptyContent),
		errors.Is(err, papyrus.ErrInvalidFormat),
		errors.Is(err, papyrus.ErrUnsupportedFormat),
		errors.Is(err, papyrus.ErrUnsupportedChartType),
		errors.Is(err, papyrus.ErrInvalidDiagramType),
		errors.Is(err, papyrus.ErrDatasetLength),
		errors.Is(err, papyrus.ErrEmptyChart):
		code = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}

	if code >= http.StatusInternalServerError {
		a.logger.Error("request failed",
			zap.String("action", action),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	writeJSON(w, code, map[string]string{
		"error":   "Failed to " + action,
		"message": err.Error(),
	})
}

// timestamp formats t the way every response does.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// blank reports whether s has no visible characters.
func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": timestamp(a.now()),
		"app":       appName,
		"version":   Version,
		"llm":       a.svc.llmReady,
	})
}

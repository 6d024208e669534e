package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kiesman99/slidestitch/internal/api"
	"github.com/kiesman99/slidestitch/internal/stitch"
	"github.com/kiesman99/slidestitch/internal/stitcher"
	"github.com/kiesman99/slidestitch/pkg/slide"
)

// Server implements api.ServerInterface over one opened slide
type Server struct {
	startTime time.Time
	version   string
	slide     *slide.Slide
}

// NewServer creates a new server instance
func NewServer(version string, s *slide.Slide) *Server {
	return &Server{
		startTime: time.Now(),
		version:   version,
		slide:     s,
	}
}

// Router returns a chi router with the middleware stack and the API mounted
// at /api/v1.
func (s *Server) Router(timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))

	// CORS middleware for API access
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		api.HandlerWithOptions(s, api.ChiServerOptions{
			BaseRouter:       r,
			ErrorHandlerFunc: s.handleParamError,
		})
	})

	// Legacy health endpoint (without /api/v1 prefix)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v1/health", http.StatusMovedPermanently)
	})

	return r
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}
	if !s.slide.Bound() {
		response.Status = api.Unhealthy
	}

	s.writeJSON(w, http.StatusOK, response)
}

// GetSlide describes the slide and all of its layers
func (s *Server) GetSlide(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	comment, err := s.slide.Comment()
	if err != nil {
		s.handleSlideError(w, err, requestID)
		return
	}

	info := api.SlideInfo{
		Comment:    comment,
		LayerCount: s.slide.LayerCount(),
		Layers:     make([]api.LayerInfo, 0, s.slide.LayerCount()),
	}
	for layer := 0; layer < s.slide.LayerCount(); layer++ {
		li, err := s.layerInfo(layer)
		if err != nil {
			s.handleSlideError(w, err, requestID)
			return
		}
		info.Layers = append(info.Layers, li)
	}

	s.writeJSON(w, http.StatusOK, info)
}

// GetLayer describes one layer
func (s *Server) GetLayer(w http.ResponseWriter, r *http.Request, layer int) {
	li, err := s.layerInfo(layer)
	if err != nil {
		s.handleSlideError(w, err, middleware.GetReqID(r.Context()))
		return
	}
	s.writeJSON(w, http.StatusOK, li)
}

// GetRegion renders a region of the slide as an image
func (s *Server) GetRegion(w http.ResponseWriter, r *http.Request, params api.GetRegionParams) {
	requestID := middleware.GetReqID(r.Context())

	opts := &stitch.Options{
		X: params.X,
		Y: params.Y,
	}
	if params.Layer != nil {
		opts.Layer = *params.Layer
	}
	if params.Width != nil {
		opts.Width = *params.Width
	}
	if params.Height != nil {
		opts.Height = *params.Height
	}

	format := api.Png // default
	if params.Format != nil {
		format = *params.Format
	}

	switch format {
	case api.Png:
		opts.Format = stitch.FormatPNG
	case api.Tiff:
		opts.Format = stitch.FormatTIFF
	default:
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("invalid format: %s", format), requestID, nil)
		return
	}

	if opts.X < 0 || opts.Y < 0 || opts.Width < 0 || opts.Height < 0 {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			"x, y, width and height must not be negative", requestID, nil)
		return
	}

	e := stitch.NewExporter(s.slide, opts)
	e.SetOutput(io.Discard, io.Discard)

	img, err := e.Read()
	if err != nil {
		s.handleSlideError(w, err, requestID)
		return
	}

	switch format {
	case api.Png:
		w.Header().Set("Content-Type", "image/png")
	case api.Tiff:
		w.Header().Set("Content-Type", "image/tiff")
	}
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("X-Region-Size", strconv.Itoa(img.Bounds().Dx())+"x"+strconv.Itoa(img.Bounds().Dy()))

	w.WriteHeader(http.StatusOK)
	if err := stitch.Encode(w, img, opts.Format); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func (s *Server) layerInfo(layer int) (api.LayerInfo, error) {
	w, h, err := s.slide.Dimensions(layer)
	if err != nil {
		return api.LayerInfo{}, err
	}
	ds, err := s.slide.Downsample(layer)
	if err != nil {
		return api.LayerInfo{}, err
	}
	return api.LayerInfo{Layer: layer, Width: w, Height: h, Downsample: ds}, nil
}

// handleSlideError maps slide errors to HTTP responses
func (s *Server) handleSlideError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, stitcher.ErrInvalidLayer):
		s.writeErrorResponse(w, http.StatusNotFound, "LAYER_NOT_FOUND",
			err.Error(), requestID, map[string]interface{}{
				"layer_count": s.slide.LayerCount(),
			})
	case errors.Is(err, stitcher.ErrInvalidRegion), errors.Is(err, stitch.ErrTooLarge),
		errors.Is(err, stitch.ErrEmptyRegion):
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			err.Error(), requestID, nil)
	case errors.Is(err, slide.ErrNotBound):
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "SLIDE_CLOSED",
			"Slide is not available", requestID, nil)
	default:
		log.Printf("Error serving slide: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Internal server error", requestID, nil)
	}
}

func (s *Server) handleParamError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR",
		err.Error(), middleware.GetReqID(r.Context()), nil)
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:   errorCode,
		Message: message,
	}
	if requestID != "" {
		response.RequestId = &requestID
	}
	if details != nil {
		response.Details = &details
	}

	s.writeJSON(w, statusCode, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

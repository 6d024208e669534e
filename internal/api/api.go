// Package api defines the HTTP surface of the slide server: response types,
// the ServerInterface implemented by internal/server and the chi routing
// that binds path and query parameters onto it.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// HealthResponseStatus defines values for HealthResponse.Status.
type HealthResponseStatus string

const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// RegionFormat defines values for GetRegionParams.Format.
type RegionFormat string

const (
	Png  RegionFormat = "png"
	Tiff RegionFormat = "tiff"
)

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Uptime    *int                 `json:"uptime,omitempty"`
	Version   *string              `json:"version,omitempty"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Details   *map[string]interface{} `json:"details,omitempty"`
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	RequestId *string                 `json:"request_id,omitempty"`
}

// LayerInfo defines model for LayerInfo.
type LayerInfo struct {
	Layer      int     `json:"layer"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Downsample float64 `json:"downsample"`
}

// SlideInfo defines model for SlideInfo.
type SlideInfo struct {
	Comment    string      `json:"comment"`
	LayerCount int         `json:"layer_count"`
	Layers     []LayerInfo `json:"layers"`
}

// GetRegionParams defines parameters for GetRegion.
type GetRegionParams struct {
	// X and Y are the top-left corner in layer-0 pixels.
	X int `form:"x" json:"x"`
	Y int `form:"y" json:"y"`

	Layer  *int          `form:"layer,omitempty" json:"layer,omitempty"`
	Width  *int          `form:"width,omitempty" json:"width,omitempty"`
	Height *int          `form:"height,omitempty" json:"height,omitempty"`
	Format *RegionFormat `form:"format,omitempty" json:"format,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /slide)
	GetSlide(w http.ResponseWriter, r *http.Request)
	// (GET /layers/{layer})
	GetLayer(w http.ResponseWriter, r *http.Request, layer int)
	// (GET /region)
	GetRegion(w http.ResponseWriter, r *http.Request, params GetRegionParams)
}

// InvalidParamFormatError is passed to the error handler when a parameter
// cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

// GetSlide operation middleware
func (siw *ServerInterfaceWrapper) GetSlide(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetSlide(w, r)
}

// GetLayer operation middleware
func (siw *ServerInterfaceWrapper) GetLayer(w http.ResponseWriter, r *http.Request) {
	var layer int

	err := runtime.BindStyledParameterWithOptions("simple", "layer", chi.URLParam(r, "layer"), &layer, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "layer", Err: err})
		return
	}

	siw.Handler.GetLayer(w, r, layer)
}

// GetRegion operation middleware
func (siw *ServerInterfaceWrapper) GetRegion(w http.ResponseWriter, r *http.Request) {
	var params GetRegionParams
	query := r.URL.Query()

	bindings := []struct {
		name     string
		required bool
		dest     interface{}
	}{
		{"x", true, &params.X},
		{"y", true, &params.Y},
		{"layer", false, &params.Layer},
		{"width", false, &params.Width},
		{"height", false, &params.Height},
		{"format", false, &params.Format},
	}

	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, query, b.dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	siw.Handler.GetRegion(w, r, params)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/slide", wrapper.GetSlide)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/layers/{layer}", wrapper.GetLayer)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/region", wrapper.GetRegion)
	})

	return r
}

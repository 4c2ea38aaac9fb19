package http

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/convert"
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/writable"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Engine defines the conversion operations the service exposes.
type Engine interface {
	Scope() dynamic.Scope
	ToWritable(v any) (writable.Record, error)
	ToOrderedWritable(v any) (writable.Ordered, error)
	ToDynamic(r writable.Record) (dynamic.Value, error)
}

var _ Engine = (*weft.Engine)(nil)

// ServerInterface lists one handler per operation of the OpenAPI document.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	ToWritable(w http.ResponseWriter, r *http.Request)
	ToDynamic(w http.ResponseWriter, r *http.Request)
	ListKinds(w http.ResponseWriter, r *http.Request)
	GetKind(w http.ResponseWriter, r *http.Request, kind string)
}

// Server implements ServerInterface on top of an Engine.
type Server struct {
	Engine Engine
	Logger *slog.Logger
}

var _ ServerInterface = (*Server)(nil)

// Encoding names how record bytes travel inside JSON.
type Encoding string

const (
	EncodingHex    Encoding = "hex"
	EncodingBase64 Encoding = "base64"
)

type EncodeRequest struct {
	Value    json.RawMessage `json:"value"`
	Ordered  bool            `json:"ordered,omitempty"`
	Tagged   bool            `json:"tagged,omitempty"`
	Encoding Encoding        `json:"encoding,omitempty"`
}

type EncodeResponse struct {
	Type     string   `json:"type"`
	Data     string   `json:"data"`
	Encoding Encoding `json:"encoding"`
}

type DecodeRequest struct {
	Type     string   `json:"type,omitempty"`
	Data     string   `json:"data"`
	Tagged   bool     `json:"tagged,omitempty"`
	Encoding Encoding `json:"encoding,omitempty"`
}

type DecodeResponse struct {
	Value dynamic.Value `json:"value"`
}

type KindInfo struct {
	Name      string `json:"name"`
	Class     string `json:"class"`
	Ordered   bool   `json:"ordered"`
	Container bool   `json:"container"`
}

// NewKindInfo describes k.
func NewKindInfo(k writable.Kind) KindInfo {
	return KindInfo{
		Name:      k.String(),
		Class:     k.ClassName(),
		Ordered:   k.IsOrdered(),
		Container: k.IsContainer(),
	}
}

type handlerConfig struct {
	logger      *slog.Logger
	metrics     http.Handler
	metricsPath string
	validate    bool
}

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerConfig)

// WithLogger sets the request logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithMetrics mounts h at path (default: /metrics).
func WithMetrics(path string, h http.Handler) HandlerOption {
	return func(c *handlerConfig) {
		if path == "" {
			path = "/metrics"
		}
		c.metricsPath = path
		c.metrics = h
	}
}

// WithRequestValidation validates requests against the OpenAPI document
// before they reach the handlers.
func WithRequestValidation(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.validate = enabled
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...HandlerOption) (http.Handler, error) {
	cfg := handlerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	server := &Server{Engine: engine, Logger: cfg.logger}
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			cfg.logger.Error("Failed to load OpenAPI spec", "err", err)
			return
		}
		w.Write(spec)
	})
	if cfg.metrics != nil {
		r.Handle(cfg.metricsPath, cfg.metrics)
	}

	var api chi.Router = r
	if cfg.validate {
		api = r.With(validateRequests(doc, cfg.logger))
	}
	registerRoutes(api, server)

	return enableCORS(r), nil
}

func registerRoutes(r chi.Router, si ServerInterface) {
	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	r.Post("/v1/writable", si.ToWritable)
	r.Post("/v1/dynamic", si.ToDynamic)
	r.Get("/v1/kinds", si.ListKinds)
	r.Get("/v1/kinds/{kind}", func(w http.ResponseWriter, r *http.Request) {
		var kind string
		err := runtime.BindStyledParameterWithOptions("simple", "kind", chi.URLParam(r, "kind"), &kind,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid format for parameter kind: %v", err), http.StatusBadRequest)
			return
		}
		si.GetKind(w, r, kind)
	})
}

// validateRequests checks each request against the operation chi matched.
// It runs as an inline middleware, after routing, so the route pattern and
// URL parameters are known.
func validateRequests(doc *openapi3.T, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rctx := chi.RouteContext(r.Context())
			pattern := rctx.RoutePattern()

			item := doc.Paths.Value(pattern)
			if item == nil || item.GetOperation(r.Method) == nil {
				next.ServeHTTP(w, r)
				return
			}

			params := make(map[string]string, len(rctx.URLParams.Keys))
			for i, key := range rctx.URLParams.Keys {
				params[key] = rctx.URLParams.Values[i]
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route: &routers.Route{
					Spec:      doc,
					Path:      pattern,
					PathItem:  item,
					Method:    r.Method,
					Operation: item.GetOperation(r.Method),
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Warn("Request rejected by OpenAPI validation", "path", pattern, "err", err)
				http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ToWritable handles POST /v1/writable.
func (s *Server) ToWritable(w http.ResponseWriter, r *http.Request) {
	var body EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("ToWritable: Invalid request body", "err", err)
		return
	}
	if len(body.Value) == 0 {
		http.Error(w, "Missing value", http.StatusBadRequest)
		return
	}

	value, err := dynamic.ParseJSON(body.Value, s.Engine.Scope())
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid value: %v", err), http.StatusBadRequest)
		return
	}

	var rec writable.Record
	if body.Ordered {
		rec, err = s.Engine.ToOrderedWritable(value)
	} else {
		rec, err = s.Engine.ToWritable(value)
	}
	if err != nil {
		s.conversionError(w, "ToWritable", err)
		return
	}

	var data []byte
	if body.Tagged {
		data, err = writable.MarshalTagged(rec)
	} else {
		data, err = writable.Marshal(rec)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Encode error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("ToWritable: encode failed", "err", err)
		return
	}

	enc := orHex(body.Encoding)
	text, err := encodeBytes(data, enc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Logger, EncodeResponse{Type: writable.TypeFor(rec).String(), Data: text, Encoding: enc})
}

// ToDynamic handles POST /v1/dynamic.
func (s *Server) ToDynamic(w http.ResponseWriter, r *http.Request) {
	var body DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("ToDynamic: Invalid request body", "err", err)
		return
	}

	data, err := decodeBytes(body.Data, orHex(body.Encoding))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var rec writable.Record
	if body.Tagged {
		rec, err = writable.UnmarshalTagged(data)
	} else {
		if body.Type == "" {
			http.Error(w, "Missing type for untagged record", http.StatusBadRequest)
			return
		}
		var t writable.Type
		t, err = writable.ParseType(body.Type)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid type: %v", err), http.StatusBadRequest)
			return
		}
		rec, err = writable.Unmarshal(data, t)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid record: %v", err), http.StatusBadRequest)
		return
	}

	value, err := s.Engine.ToDynamic(rec)
	if err != nil {
		s.conversionError(w, "ToDynamic", err)
		return
	}
	writeJSON(w, s.Logger, DecodeResponse{Value: value})
}

// ListKinds handles GET /v1/kinds.
func (s *Server) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := writable.Kinds()
	out := make([]KindInfo, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, NewKindInfo(k))
	}
	writeJSON(w, s.Logger, out)
}

// GetKind handles GET /v1/kinds/{kind}.
func (s *Server) GetKind(w http.ResponseWriter, r *http.Request, kind string) {
	k, err := writable.ParseKind(kind)
	if err != nil || k == writable.KindOpaque {
		http.Error(w, fmt.Sprintf("Unknown kind: %s", kind), http.StatusNotFound)
		return
	}
	writeJSON(w, s.Logger, NewKindInfo(k))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, s.Logger, map[string]string{
		"app":         "weft-http",
		"version":     strings.TrimSpace(weft.Version),
		"api_version": apiVersion,
	})
}

func (s *Server) conversionError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, convert.ErrNoConverter) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, fmt.Sprintf("Conversion error: %v", err), http.StatusInternalServerError)
	s.Logger.Error(op+" failed", "err", err)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}

func orHex(e Encoding) Encoding {
	if e == "" {
		return EncodingHex
	}
	return e
}

func encodeBytes(data []byte, e Encoding) (string, error) {
	switch e {
	case EncodingHex:
		return hex.EncodeToString(data), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", e)
	}
}

func decodeBytes(text string, e Encoding) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch e {
	case EncodingHex:
		data, err = hex.DecodeString(text)
	case EncodingBase64:
		data, err = base64.StdEncoding.DecodeString(text)
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", e)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", e, err)
	}
	return data, nil
}

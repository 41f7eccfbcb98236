package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/internal/metrics"
	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
	"github.com/goliatone/go-formbridge/pkg/renderers/html"
	"github.com/goliatone/go-formbridge/pkg/viewmodel"
)

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records invocations on m and exposes gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithCORSOrigins restricts the JSON API to the given origins. Without it
// every origin is allowed.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = append([]string(nil), origins...)
	}
}

// Server is the web host: the HTML dashboard plus a JSON API over the same
// view-model.
type Server struct {
	vm          *viewmodel.ViewModel
	renderer    *html.Renderer
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	corsOrigins []string
	engine      *gin.Engine
}

// New wires the routes.
func New(vm *viewmodel.ViewModel, renderer *html.Renderer, options ...Option) (*Server, error) {
	if vm == nil {
		return nil, errors.New("server: view-model is required")
	}
	if renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	s := &Server{vm: vm, renderer: renderer, logger: zerolog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(s.logger), s.cors())

	engine.GET("/", s.dashboard)
	engine.POST("/panels/:panel/sample", s.formSample)
	engine.POST("/panels/:panel/actions/:action", s.formAction)

	api := engine.Group("/api")
	api.GET("/state", s.state)
	api.POST("/panels/:panel/sample", s.apiSample)
	api.POST("/panels/:panel/actions/:action", s.apiAction)

	if s.gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	s.engine = engine
	return s, nil
}

// Handler exposes the router for http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) cors() gin.HandlerFunc {
	if len(s.corsOrigins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:  s.corsOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type", bridge.RequestIDHeader},
		ExposeHeaders: []string{bridge.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}

func (s *Server) dashboard(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(c.Writer, s.vm, c.Query("panel")); err != nil {
		s.logger.Error().Err(err).Msg("render dashboard")
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// formSample keeps whatever the user typed, then overwrites the sample keys.
func (s *Server) formSample(c *gin.Context) {
	p, ok := s.panel(c)
	if !ok {
		return
	}
	s.applyForm(c)
	if err := s.vm.PopulateSample(p.ID); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Redirect(http.StatusSeeOther, backTo(p))
}

func (s *Server) formAction(c *gin.Context) {
	p, ok := s.panel(c)
	if !ok {
		return
	}
	s.applyForm(c)
	if _, ok := s.invoke(c, p); !ok {
		return
	}
	c.Redirect(http.StatusSeeOther, backTo(p))
}

type stateResponse struct {
	Fields  map[string]string `json:"fields"`
	Outputs map[string]string `json:"outputs"`
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, stateResponse{Fields: s.vm.Fields(), Outputs: s.vm.Outputs()})
}

func (s *Server) apiSample(c *gin.Context) {
	p, ok := s.panel(c)
	if !ok {
		return
	}
	if err := s.vm.PopulateSample(p.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	fields := make(map[string]string, len(p.Fields))
	for _, f := range p.Fields {
		id := p.FieldID(f.Name)
		fields[id], _ = s.vm.ReadField(id)
	}
	c.JSON(http.StatusOK, gin.H{"panel": p.ID, "fields": fields})
}

type actionRequest struct {
	Fields map[string]string `json:"fields"`
}

type actionResponse struct {
	Panel     string          `json:"panel"`
	Action    string          `json:"action"`
	Outcome   bridge.Outcome  `json:"outcome"`
	Status    int             `json:"status,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Captured  string          `json:"captured,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`
	Unknown   []string        `json:"unknown_fields,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// apiAction accepts an optional {"fields": {...}} body applied before the
// action runs. Transport failures answer 502; every other outcome answers
// 200 with the rendered output.
func (s *Server) apiAction(c *gin.Context) {
	p, ok := s.panel(c)
	if !ok {
		return
	}

	var req actionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bridge.InvalidJSONMessage})
		return
	}
	unknown := s.vm.SetFields(req.Fields)

	inv, ok := s.invoke(c, p)
	if !ok {
		return
	}

	resp := actionResponse{
		Panel:     inv.Panel,
		Action:    inv.Action,
		Outcome:   inv.Outcome,
		Status:    inv.Result.Envelope.Status,
		RequestID: inv.Result.RequestID,
		Captured:  inv.Captured,
		Unknown:   unknown,
	}
	if inv.Output != "" {
		resp.Output = json.RawMessage(inv.Output)
	}
	status := http.StatusOK
	if inv.Err != nil {
		resp.Error = inv.Err.Error()
		status = http.StatusBadGateway
	}
	c.JSON(status, resp)
}

// invoke runs the action named in the route. It writes the error response
// itself and reports false when the action does not exist.
func (s *Server) invoke(c *gin.Context, p panel.Panel) (viewmodel.Invocation, bool) {
	actionID := c.Param("action")
	inv, err := s.vm.Invoke(c.Request.Context(), p.ID, actionID)
	if errors.Is(err, viewmodel.ErrUnknownAction) || errors.Is(err, viewmodel.ErrUnknownPanel) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return inv, false
	}
	if s.metrics != nil {
		s.metrics.ObserveInvocation(inv)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("panel", p.ID).Str("action", actionID).Msg("action failed")
	}
	return inv, true
}

func (s *Server) panel(c *gin.Context) (panel.Panel, bool) {
	id := c.Param("panel")
	p, ok := s.vm.Catalog().Panel(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": viewmodel.ErrUnknownPanel.Error() + ": " + id})
		return panel.Panel{}, false
	}
	return p, true
}

// applyForm copies posted values into the view-model. Keys that are not
// field ids (submit buttons, stray inputs) are ignored.
func (s *Server) applyForm(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		return
	}
	values := make(map[string]string, len(c.Request.PostForm))
	for key := range c.Request.PostForm {
		values[key] = c.Request.PostForm.Get(key)
	}
	s.vm.SetFields(values)
}

// bindOptionalJSON decodes the request body into dst. A missing or empty
// body, chunked ones included, leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func backTo(p panel.Panel) string {
	return "/?panel=" + url.QueryEscape(p.ID) + "#" + p.Anchor()
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", logging.Since(start)).
			Msg("http request")
	}
}

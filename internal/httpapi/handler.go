// Package httpapi is the Echo-based HTTP transport for the service.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/coreos/cincinnati-graph-builder/internal/graph"
	"github.com/coreos/cincinnati-graph-builder/internal/policy"
	"github.com/coreos/cincinnati-graph-builder/internal/population"
	"github.com/coreos/cincinnati-graph-builder/internal/serialize"
	"github.com/coreos/cincinnati-graph-builder/internal/telemetry"
	"github.com/coreos/cincinnati-graph-builder/internal/wariness"
)

// GraphSource is the subset of the Scraper's API the HTTP layer needs;
// narrowed to an interface so handlers are testable without a live
// actor goroutine.
type GraphSource interface {
	GetCachedGraph(ctx context.Context, basearch, stream string) (graph.Graph, error)
}

// Server wires the scraper into an Echo instance.
type Server struct {
	Echo *echo.Echo

	source     GraphSource
	basearch   string
	stream     string
	metrics    *telemetry.Metrics
	log        *logrus.Entry
	population *population.Tracker
}

// New builds a Server with request logging and panic recovery
// middleware.
func New(source GraphSource, basearch, stream string, metrics *telemetry.Metrics, log *logrus.Entry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{Echo: e, source: source, basearch: basearch, stream: stream, metrics: metrics, log: log, population: population.New()}

	e.GET("/v1/graph", s.handleGraph)
	e.GET("/healthz", s.handleHealthz)
	return s
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// handleGraph implements GET /v1/graph: derive wariness from
// node_uuid (empty string if absent), apply throttle_rollouts then
// filter_deadends, serialize, respond.
func (s *Server) handleGraph(c echo.Context) error {
	ctx := c.Request().Context()
	nodeUUID := c.QueryParam("node_uuid")
	if nodeUUID != "" {
		if _, err := uuid.Parse(nodeUUID); err != nil {
			s.log.WithField("node_uuid", nodeUUID).Warn("node_uuid is not a well-formed UUID; wariness still derived from the raw value")
		}
	}
	if s.population.Observe(nodeUUID) {
		s.metrics.UniqueNodeUUIDsTotal.Inc()
	}

	g, err := s.source.GetCachedGraph(ctx, s.basearch, s.stream)
	if err != nil {
		s.metrics.GraphRequestsTotal.WithLabelValues("error").Inc()
		s.log.WithError(err).Error("cache miss serving /v1/graph")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	w := wariness.Derive(nodeUUID)
	now := time.Now().Unix()

	filtered := policy.FilterDeadends(policy.ThrottleRollouts(g, w, now))

	body, err := serialize.Graph(filtered)
	if err != nil {
		s.metrics.GraphRequestsTotal.WithLabelValues("error").Inc()
		s.log.WithError(err).Error("serialization failure")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to serialize graph"})
	}

	s.metrics.GraphRequestsTotal.WithLabelValues("ok").Inc()
	return c.JSONBlob(http.StatusOK, body)
}

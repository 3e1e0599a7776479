package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"aurum_leasing/internal/counter"
	"aurum_leasing/internal/metrics"
	"aurum_leasing/internal/middleware"
)

type StatsController struct {
	visits counter.VisitCounter
}

func NewStatsController(visits counter.VisitCounter) *StatsController {
	return &StatsController{visits: visits}
}

// Visits counts this request and returns the running total.
func (sc *StatsController) Visits(c *gin.Context) {
	n, err := sc.visits.Incr(c.Request.Context())
	if err != nil {
		middleware.Logger(c).WithError(err).Warn("visit counter unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visit counter unavailable"})
		return
	}
	metrics.VisitsCounted.Inc()
	c.JSON(http.StatusOK, gin.H{"visits": n})
}

// Pinger is anything whose liveness /healthz reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health pings each dependency and answers 503 if any is down.
func Health(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{}
		for name, p := range deps {
			if err := p.Ping(c.Request.Context()); err != nil {
				middleware.Logger(c).WithError(err).WithField("dependency", name).Warn("health check failed")
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

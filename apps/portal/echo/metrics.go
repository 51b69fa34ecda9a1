package echoportal

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var requests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "http_requests_total",
		Help:      "Requests served by the portal, by route and status.",
	},
	[]string{"method", "route", "status"},
)

func init() {
	prometheus.MustRegister(requests)
}

func requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		err := next(ctx)
		status := ctx.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		requests.WithLabelValues(ctx.Request().Method, ctx.Path(), strconv.Itoa(status)).Inc()
		return err
	}
}

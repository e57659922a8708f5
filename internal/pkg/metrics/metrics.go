package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 投递路径标记：precise 表示命中房间，fallback 表示房间为空后的降级投递
const (
	PathPrecise  = "precise"
	PathFallback = "fallback"

	ScopeUser  = "user"
	ScopeGroup = "group"
	ScopeAll   = "all"
)

var (
	EmitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkup_ws_emit_total",
			Help: "Live event emissions by scope and delivery path.",
		},
		[]string{"scope", "path"},
	)

	SessionsOnline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkup_ws_sessions_online",
			Help: "Currently registered live sessions.",
		},
	)

	EmitDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkup_ws_emit_dropped_total",
			Help: "Frames dropped because a session send queue was full.",
		},
	)
)

func init() {
	prometheus.MustRegister(EmitTotal, SessionsOnline, EmitDropped)
}

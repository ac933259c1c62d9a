package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var backtestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gobacktest_backtests_total",
	Help: "Backtests by terminal status",
}, []string{"status"})

package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutsPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "grubline",
			Subsystem: "checkout",
			Name:      "orders_placed_total",
			Help:      "Total number of successfully placed orders",
		},
	)

	checkoutsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grubline",
			Subsystem: "checkout",
			Name:      "failures_total",
			Help:      "Total number of failed checkout attempts",
		},
		[]string{"reason"},
	)

	cartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grubline",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Total number of cart add/remove operations",
		},
		[]string{"op"},
	)
)

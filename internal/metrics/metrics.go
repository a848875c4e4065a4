// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crushradar"

var (
	// CrushToggles counts toggle outcomes: added, removed, rejected, busy, failed.
	CrushToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "crush_toggles_total",
		Help:      "Crush toggle attempts by outcome.",
	}, []string{"result"})

	// MatchFetches counts match list computations: ok, empty, failed.
	MatchFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "match_fetch_total",
		Help:      "Match list computations by outcome.",
	}, []string{"outcome"})

	// MissingCounterparts counts matches rendered with a placeholder profile.
	MissingCounterparts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "match_missing_counterparts_total",
		Help:      "Match entries whose counterpart profile could not be loaded.",
	})

	// AvatarUploads counts avatar uploads: ok, rejected, failed.
	AvatarUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "avatar_uploads_total",
		Help:      "Avatar uploads by outcome.",
	}, []string{"outcome"})
)

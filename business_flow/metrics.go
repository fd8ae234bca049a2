package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution metrics, labeled by where the content came from.
var (
	bannerResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banner_resolutions_total",
		Help: "Total number of successful banner resolutions by source",
	}, []string{"source"})

	bannerResolutionMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "banner_resolution_misses_total",
		Help: "Total number of lookups with no active banner for the pair",
	})

	bannerAdminWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banner_admin_writes_total",
		Help: "Total number of banner admin write operations by kind",
	}, []string{"operation"})
)

// Resolution source label values
const (
	resolutionSourceDB       = "db"
	resolutionSourceCache    = "cache"
	resolutionSourceSnapshot = "snapshot"
)

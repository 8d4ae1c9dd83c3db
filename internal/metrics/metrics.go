package metrics

import (
	"time"

	"coursebot/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coursebot"

var (
	BroadcastsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcasts_total",
		Help:      "Completed broadcasts by audience",
	}, []string{"target_type"})

	BroadcastDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_deliveries_total",
		Help:      "Broadcast delivery attempts by outcome",
	}, []string{"outcome"})

	BroadcastSuccessRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "broadcast_last_success_rate",
		Help:      "Success rate of the most recent broadcast, in percent",
	})

	BroadcastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "broadcast_duration_seconds",
		Help:      "Wall time of a broadcast run",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
	})

	FileDownloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "file_downloads_total",
		Help:      "Files sent to users by resource type",
	}, []string{"resource_type"})

	CatalogRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_refresh_total",
		Help:      "Catalog refreshes by status",
	}, []string{"status"})

	CatalogFiles = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_files",
		Help:      "Files in the current mapping",
	})

	RegistryUsers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registry_users",
		Help:      "Registered users by group",
	}, []string{"group"})

	RateLimitUsage = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rate_limit_sent",
		Help:      "Sends recorded in the rate limit window",
	}, []string{"window"})
)

// MustRegister registers every collector
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		BroadcastsTotal,
		BroadcastDeliveries,
		BroadcastSuccessRate,
		BroadcastDuration,
		FileDownloads,
		CatalogRefreshes,
		CatalogFiles,
		RegistryUsers,
		RateLimitUsage,
	)
}

// Recorder publishes bot events to the collectors
type Recorder struct{}

// NewRecorder creates a recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) TrackDelivery(outcome string) {
	BroadcastDeliveries.WithLabelValues(outcome).Inc()
}

func (r *Recorder) TrackBroadcast(record domain.BroadcastRecord, duration time.Duration) {
	BroadcastsTotal.WithLabelValues(string(record.TargetType)).Inc()
	BroadcastSuccessRate.Set(record.SuccessRate())
	BroadcastDuration.Observe(duration.Seconds())
}

// TrackDownload counts a file sent to a user
func (r *Recorder) TrackDownload(resourceType string) {
	if resourceType == "" {
		resourceType = "unknown"
	}
	FileDownloads.WithLabelValues(resourceType).Inc()
}

// TrackRefresh counts a catalog refresh and, on success, the new file total
func (r *Recorder) TrackRefresh(totalFiles int, err error) {
	if err != nil {
		CatalogRefreshes.WithLabelValues("error").Inc()
		return
	}
	CatalogRefreshes.WithLabelValues("success").Inc()
	CatalogFiles.Set(float64(totalFiles))
}

func (r *Recorder) ObserveRegistry(counts domain.RegistryCounts) {
	RegistryUsers.WithLabelValues("total").Set(float64(counts.Total))
	RegistryUsers.WithLabelValues("subscribers").Set(float64(counts.Subscribers))
	RegistryUsers.WithLabelValues("active").Set(float64(counts.Active))
	RegistryUsers.WithLabelValues("blocked").Set(float64(counts.Blocked))
}

func (r *Recorder) ObserveRateLimit(snapshot domain.RateLimitSnapshot) {
	RateLimitUsage.WithLabelValues("minute").Set(float64(snapshot.SentLastMinute))
	RateLimitUsage.WithLabelValues("hour").Set(float64(snapshot.SentLastHour))
}

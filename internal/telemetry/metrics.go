package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/appdeck"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Folder operations
	FoldersCreatedTotal   metric.Int64Counter
	FolderListTotal       metric.Int64Counter
	FolderListDuration    metric.Float64Histogram
	FolderAppsListedTotal metric.Int64Counter
	FolderAppCountsTotal  metric.Int64Counter

	// Visibility resolution
	ViewableAppQueriesTotal metric.Int64Counter
	AdminListingsTotal      metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.FoldersCreatedTotal, _ = meter.Int64Counter(
		"appdeck.folders.created.total",
		metric.WithDescription("Total number of folders created"),
		metric.WithUnit("{folder}"),
	)

	m.FolderListTotal, _ = meter.Int64Counter(
		"appdeck.folders.listed.total",
		metric.WithDescription("Total number of folder listing requests"),
		metric.WithUnit("{request}"),
	)

	m.FolderListDuration, _ = meter.Float64Histogram(
		"appdeck.folders.list.duration",
		metric.WithDescription("Duration of folder listing requests"),
		metric.WithUnit("ms"),
	)

	m.FolderAppsListedTotal, _ = meter.Int64Counter(
		"appdeck.folders.apps.listed.total",
		metric.WithDescription("Total number of folder app page requests"),
		metric.WithUnit("{request}"),
	)

	m.FolderAppCountsTotal, _ = meter.Int64Counter(
		"appdeck.folders.apps.counted.total",
		metric.WithDescription("Total number of folder app count requests"),
		metric.WithUnit("{request}"),
	)

	m.ViewableAppQueriesTotal, _ = meter.Int64Counter(
		"appdeck.apps.viewable.queries.total",
		metric.WithDescription("Total number of viewable app set resolutions"),
		metric.WithUnit("{query}"),
	)

	m.AdminListingsTotal, _ = meter.Int64Counter(
		"appdeck.folders.admin_listings.total",
		metric.WithDescription("Total number of folder listings served via the admin path"),
		metric.WithUnit("{request}"),
	)

	return m
}

package prometheus

// AppMetrics holds the metric families recorded by a hivscreen run.
type AppMetrics struct {
	// Dataset
	DatasetLoadDuration  HistogramVec
	DatasetRecordsLoaded GaugeVec
	DatasetClassRecords  GaugeVec

	// Charts
	PlotsRenderedTotal CounterVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	ErrorsTotal CounterVec
}

// DefaultLoadDurationBuckets spans small classroom files up to the full
// MoleculeNet HIV set.
var DefaultLoadDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// NewAppMetrics registers every family on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		DatasetLoadDuration:  collector.RegisterHistogram("dataset_load_duration_seconds", "Time spent loading and validating a dataset", DefaultLoadDurationBuckets, "schema"),
		DatasetRecordsLoaded: collector.RegisterGauge("dataset_records_loaded", "Records in the most recently loaded dataset", "dataset"),
		DatasetClassRecords:  collector.RegisterGauge("dataset_class_records", "Records per label class in the most recently summarised dataset", "class"),
		PlotsRenderedTotal:   collector.RegisterCounter("plots_rendered_total", "Count plots rendered", "format"),
		CacheHitsTotal:       collector.RegisterCounter("cache_hits_total", "Summary cache hits", "cache"),
		CacheMissesTotal:     collector.RegisterCounter("cache_misses_total", "Summary cache misses", "cache"),
		ErrorsTotal:          collector.RegisterCounter("errors_total", "Errors by application error code", "code"),
	}
}

// NewNoopAppMetrics returns metrics that discard every observation.
func NewNoopAppMetrics() *AppMetrics {
	return &AppMetrics{
		DatasetLoadDuration:  noopHistogramVec{},
		DatasetRecordsLoaded: noopGaugeVec{},
		DatasetClassRecords:  noopGaugeVec{},
		PlotsRenderedTotal:   noopCounterVec{},
		CacheHitsTotal:       noopCounterVec{},
		CacheMissesTotal:     noopCounterVec{},
		ErrorsTotal:          noopCounterVec{},
	}
}

// LoadTimer starts timing a dataset load validated against schema.  Call
// ObserveDuration once the load succeeded.
func (m *AppMetrics) LoadTimer(schema string) *Timer {
	return NewTimer(m.DatasetLoadDuration.WithLabelValues(sanitizeLabel(schema)))
}

// RecordLoaded records the size of a loaded dataset.
func (m *AppMetrics) RecordLoaded(dataset string, records int) {
	m.DatasetRecordsLoaded.WithLabelValues(sanitizeLabel(dataset)).Set(float64(records))
}

// SetClassRecords replaces the per-class gauge with actives and inactives.
func (m *AppMetrics) SetClassRecords(actives, inactives int) {
	m.DatasetClassRecords.Reset()
	m.DatasetClassRecords.WithLabelValues("active").Set(float64(actives))
	m.DatasetClassRecords.WithLabelValues("inactive").Set(float64(inactives))
}

// RecordPlot counts one rendered chart.
func (m *AppMetrics) RecordPlot(format string) {
	m.PlotsRenderedTotal.WithLabelValues(sanitizeLabel(format)).Inc()
}

// RecordCache counts a cache lookup.
func (m *AppMetrics) RecordCache(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(sanitizeLabel(cache)).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(sanitizeLabel(cache)).Inc()
}

// RecordError counts an error by its code.
func (m *AppMetrics) RecordError(code string) {
	m.ErrorsTotal.WithLabelValues(sanitizeLabel(code)).Inc()
}

//Personal.AI order the ending

package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "modelbridge"

// Outcome labels for conversions.
const (
	OutcomeConverted = "converted"
	OutcomeExhausted = "exhausted"
	OutcomeNoReader  = "no_reader"
	OutcomeNoApps    = "no_apps"
	OutcomeError     = "error"
)

// Collector holds all conversion metrics.
type Collector struct {
	registry *prometheus.Registry

	conversions        *prometheus.CounterVec
	attempts           *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	slotWait           prometheus.Histogram
}

// New creates a collector backed by its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		conversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of conversions by reader and outcome",
			},
			[]string{"reader", "outcome"},
		),
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Total number of (app, format) attempts by outcome",
			},
			[]string{"app", "format", "outcome"},
		),
		conversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Wall time of a conversion including teardown",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"reader"},
		),
		slotWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "slot_wait_seconds",
				Help:      "Time spent waiting for the conversion slot",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
			},
		),
	}
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveConversion records the final outcome of a conversion.
func (c *Collector) ObserveConversion(reader, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.conversions.WithLabelValues(reader, outcome).Inc()
	c.conversionDuration.WithLabelValues(reader).Observe(elapsed.Seconds())
}

// ObserveAttempt records one (app, format) attempt. outcome is a failure
// kind label or "ok".
func (c *Collector) ObserveAttempt(app, format, outcome string) {
	if c == nil {
		return
	}
	c.attempts.WithLabelValues(app, format, outcome).Inc()
}

// ObserveSlotWait records how long a conversion waited for the slot.
func (c *Collector) ObserveSlotWait(elapsed time.Duration) {
	if c == nil {
		return
	}
	c.slotWait.Observe(elapsed.Seconds())
}

// Sample is one flattened metric value.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Key renders the sample as name{k=v,...} for display.
func (s Sample) Key() string {
	if len(s.Labels) == 0 {
		return s.Name
	}
	keys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, s.Labels[k]))
	}
	return s.Name + "{" + strings.Join(parts, ",") + "}"
}

// Snapshot gathers counters and histogram sample counts. Histograms are
// reported as <name>_count and <name>_sum.
func (c *Collector) Snapshot() ([]Sample, error) {
	if c == nil {
		return nil, nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var samples []Sample
	for _, family := range families {
		name := family.GetName()
		for _, m := range family.GetMetric() {
			labels := labelMap(m.GetLabel())
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				samples = append(samples, Sample{Name: name, Labels: labels, Value: m.GetCounter().GetValue()})
			case dto.MetricType_GAUGE:
				samples = append(samples, Sample{Name: name, Labels: labels, Value: m.GetGauge().GetValue()})
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				samples = append(samples,
					Sample{Name: name + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: name + "_sum", Labels: labels, Value: h.GetSampleSum()},
				)
			}
		}
	}
	return samples, nil
}

func labelMap(pairs []*dto.LabelPair) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.GetName()] = p.GetValue()
	}
	return out
}

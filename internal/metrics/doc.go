// Package metrics records conversion outcomes in a private Prometheus
// registry. A nil *Collector is valid and records nothing.
package metrics

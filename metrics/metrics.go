// SPDX-License-Identifier: MIT

// Package metrics instruments ensemble generation and bounds enforcement.
//
// The ensemble package talks to a Recorder; NewPrometheus backs it with
// client_golang collectors registered on a caller-supplied registry, and Nop
// is the default when nothing is configured.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pyemu"

// Recorder receives ensemble events.
type Recorder interface {
	// ObserveDraw records one completed draw of rows×cols values.
	ObserveDraw(kind, dist string, rows, cols int, elapsed time.Duration)
	// AddAdjusted counts values moved by an enforcement policy.
	AddAdjusted(policy string, n int)
	// AddDropped counts realizations removed by enforcement or DropNA.
	AddDropped(reason string, n int)
}

// Nop discards every event.
type Nop struct{}

func (Nop) ObserveDraw(string, string, int, int, time.Duration) {}
func (Nop) AddAdjusted(string, int)                             {}
func (Nop) AddDropped(string, int)                              {}

// Prometheus is a Recorder backed by client_golang collectors.
type Prometheus struct {
	draws        *prometheus.CounterVec
	realizations *prometheus.CounterVec
	drawSeconds  *prometheus.HistogramVec
	adjusted     *prometheus.CounterVec
	dropped      *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg.
// A collector already registered under the same name is reused, so several
// recorders may share one registry.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		return nil, errors.New("metrics: nil registerer")
	}
	p := &Prometheus{
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "draws_total",
			Help: "Completed ensemble draws.",
		}, []string{"kind", "dist"}),
		realizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "realizations_drawn_total",
			Help: "Realizations produced by draws.",
		}, []string{"kind"}),
		drawSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "draw_duration_seconds",
			Help:    "Wall time of ensemble draws.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"kind", "dist"}),
		adjusted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "enforce_adjusted_values_total",
			Help: "Values moved back inside their bounds.",
		}, []string{"policy"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "realizations_dropped_total",
			Help: "Realizations removed from ensembles.",
		}, []string{"reason"}),
	}

	var err error
	if p.draws, err = register(reg, p.draws); err != nil {
		return nil, err
	}
	if p.realizations, err = register(reg, p.realizations); err != nil {
		return nil, err
	}
	if p.drawSeconds, err = register(reg, p.drawSeconds); err != nil {
		return nil, err
	}
	if p.adjusted, err = register(reg, p.adjusted); err != nil {
		return nil, err
	}
	if p.dropped, err = register(reg, p.dropped); err != nil {
		return nil, err
	}

	return p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("metrics: register: %w", err)
	}

	return c, nil
}

// ObserveDraw implements Recorder.
func (p *Prometheus) ObserveDraw(kind, dist string, rows, _ int, elapsed time.Duration) {
	p.draws.WithLabelValues(kind, dist).Inc()
	p.realizations.WithLabelValues(kind).Add(float64(rows))
	p.drawSeconds.WithLabelValues(kind, dist).Observe(elapsed.Seconds())
}

// AddAdjusted implements Recorder.
func (p *Prometheus) AddAdjusted(policy string, n int) {
	if n > 0 {
		p.adjusted.WithLabelValues(policy).Add(float64(n))
	}
}

// AddDropped implements Recorder.
func (p *Prometheus) AddDropped(reason string, n int) {
	if n > 0 {
		p.dropped.WithLabelValues(reason).Add(float64(n))
	}
}

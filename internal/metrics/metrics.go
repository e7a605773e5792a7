// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes node counters to Prometheus.
package metrics

import (
	"net/http"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scoreboard"

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Recorder implements scoreboard.Recorder with Prometheus counters.
type Recorder struct {
	FramesReceived    *prometheus.CounterVec // labels: kind
	FramesDropped     *prometheus.CounterVec // labels: reason
	CommandsApplied   *prometheus.CounterVec // labels: command
	AdvUpdates        *prometheus.CounterVec // labels: result
	AdvSeen           *prometheus.CounterVec // labels: matched
	Renders           *prometheus.CounterVec // labels: result
	RendersSuppressed prometheus.Counter
}

// NewRecorder registers the node counters on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Receive events from the voice module by classification.",
		}, []string{"kind"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Full frames discarded before applying, by reason.",
		}, []string{"reason"}),
		CommandsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_applied_total",
			Help:      "Command words applied to the match.",
		}, []string{"command"}),
		AdvUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advertisement_updates_total",
			Help:      "Advertisement data updates.",
		}, []string{"result"}),
		AdvSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advertisements_seen_total",
			Help:      "Advertisements received by the observer.",
		}, []string{"matched"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Full-strip pushes to the display.",
		}, []string{"result"}),
		RendersSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_suppressed_total",
			Help:      "Advertisements identical to the displayed state.",
		}),
	}
	reg.MustRegister(r.FramesReceived, r.FramesDropped, r.CommandsApplied,
		r.AdvUpdates, r.AdvSeen, r.Renders, r.RendersSuppressed)
	return r
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// FrameReceived implements scoreboard.Recorder.
func (r *Recorder) FrameReceived(kind string) {
	r.FramesReceived.WithLabelValues(kind).Inc()
}

// FrameDropped implements scoreboard.Recorder.
func (r *Recorder) FrameDropped(reason string) {
	r.FramesDropped.WithLabelValues(reason).Inc()
}

// CommandApplied implements scoreboard.Recorder.
func (r *Recorder) CommandApplied(cmd scoreboard.Command) {
	r.CommandsApplied.WithLabelValues(cmd.String()).Inc()
}

// AdvertisementUpdated implements scoreboard.Recorder.
func (r *Recorder) AdvertisementUpdated(err error) {
	r.AdvUpdates.WithLabelValues(result(err)).Inc()
}

// AdvertisementSeen implements scoreboard.Recorder.
func (r *Recorder) AdvertisementSeen(matched bool) {
	label := "false"
	if matched {
		label = "true"
	}
	r.AdvSeen.WithLabelValues(label).Inc()
}

// RenderCompleted implements scoreboard.Recorder.
func (r *Recorder) RenderCompleted(err error) {
	r.Renders.WithLabelValues(result(err)).Inc()
}

// RenderSuppressed implements scoreboard.Recorder.
func (r *Recorder) RenderSuppressed() {
	r.RendersSuppressed.Inc()
}

// RegisterState exports the match held by state as gauges.
func RegisterState(reg prometheus.Registerer, state func() scoreboard.MatchState) {
	gauge := func(name, help string, value func(scoreboard.MatchState) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(state()) })
	}
	reg.MustRegister(
		gauge("home_points", "Home team points.", func(s scoreboard.MatchState) float64 { return float64(s.HomePoints) }),
		gauge("guest_points", "Guest team points.", func(s scoreboard.MatchState) float64 { return float64(s.GuestPoints) }),
		gauge("home_sets", "Home team sets.", func(s scoreboard.MatchState) float64 { return float64(s.HomeSets) }),
		gauge("guest_sets", "Guest team sets.", func(s scoreboard.MatchState) float64 { return float64(s.GuestSets) }),
		gauge("serving", "Serving team: 0 none, 1 home, 2 guest.", func(s scoreboard.MatchState) float64 { return float64(s.Serving) }),
	)
}

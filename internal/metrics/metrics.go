package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
	"github.com/goliatone/go-formbridge/pkg/viewmodel"
)

const namespace = "formbridge"

// Metrics records backend calls and panel action invocations.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	invocations *prometheus.CounterVec
	routes      []route
}

type route struct {
	prefix   string
	template string
}

// New registers the collectors on reg. Request paths are reported by their
// catalog template (/api/simulate/status/{simulation_id}) so polled ids do
// not create new series.
func New(reg prometheus.Registerer, catalog *panel.Catalog) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Backend requests by method, route and outcome.",
			},
			[]string{"method", "route", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Backend request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "panel_actions_total",
				Help:      "Panel action invocations by outcome, including skipped polls.",
			},
			[]string{"panel", "action", "outcome"},
		),
		routes: routesFor(catalog),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.invocations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRequest implements bridge.Observer.
func (m *Metrics) ObserveRequest(evt bridge.Event) {
	r := m.Route(evt.Path)
	m.requests.WithLabelValues(evt.Method, r, string(evt.Outcome)).Inc()
	m.duration.WithLabelValues(evt.Method, r).Observe(evt.Duration.Seconds())
}

// ObserveInvocation counts one handler run.
func (m *Metrics) ObserveInvocation(inv viewmodel.Invocation) {
	m.invocations.WithLabelValues(inv.Panel, inv.Action, string(inv.Outcome)).Inc()
}

// Route maps a concrete request path to its catalog template.
func (m *Metrics) Route(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, r := range m.routes {
		if r.prefix == "" {
			if path == r.template {
				return r.template
			}
			continue
		}
		rest, ok := strings.CutPrefix(path, r.prefix)
		if ok && rest != "" && !strings.Contains(rest, "/") {
			return r.template
		}
	}
	return "other"
}

func routesFor(catalog *panel.Catalog) []route {
	seen := map[string]struct{}{}
	var routes []route
	add := func(path string) {
		if _, ok := seen[path]; ok || path == "" {
			return
		}
		seen[path] = struct{}{}
		r := route{template: path}
		if i := strings.IndexByte(path, '{'); i >= 0 {
			r.prefix = path[:i]
		}
		routes = append(routes, r)
	}
	if catalog != nil {
		for _, p := range catalog.Panels() {
			for _, a := range p.Actions {
				add(a.Path)
				for _, t := range a.Fanout {
					add(t.Path)
				}
			}
		}
	}
	// exact routes first, then longest prefix
	sort.SliceStable(routes, func(i, j int) bool {
		if (routes[i].prefix == "") != (routes[j].prefix == "") {
			return routes[i].prefix == ""
		}
		return len(routes[i].prefix) > len(routes[j].prefix)
	})
	return routes
}

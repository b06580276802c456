package policy

import (
	"sort"
	"strings"
)

// Route is a registered method + pattern pair, as reported by the router.
type Route struct {
	Method string `json:"method" yaml:"method"`
	Path   string `json:"path" yaml:"path"`
}

// Coverage classifies a registered route against a table.
type Coverage string

const (
	CoverageProtected Coverage = "protected"
	CoveragePublic    Coverage = "public"
	CoverageMissing   Coverage = "missing"
)

// RouteStatus is one line of a scan report.
type RouteStatus struct {
	Route       `yaml:",inline"`
	Coverage    Coverage `json:"coverage" yaml:"coverage"`
	Requirement string   `json:"requirement,omitempty" yaml:"requirement,omitempty"`
}

// Report is the outcome of Scan.
type Report struct {
	Routes []RouteStatus `json:"routes" yaml:"routes"`
	// Stale lists table entries that no registered route backs.
	Stale []Entry `json:"stale,omitempty" yaml:"stale,omitempty"`
}

// Count returns the number of routes with the given coverage.
func (r Report) Count(c Coverage) int {
	n := 0
	for _, rs := range r.Routes {
		if rs.Coverage == c {
			n++
		}
	}
	return n
}

// Missing returns the routes that have no policy entry.
func (r Report) Missing() []RouteStatus {
	var out []RouteStatus
	for _, rs := range r.Routes {
		if rs.Coverage == CoverageMissing {
			out = append(out, rs)
		}
	}
	return out
}

// OK reports whether every route is covered and no entry is stale.
func (r Report) OK() bool {
	return len(r.Missing()) == 0 && len(r.Stale) == 0
}

// Scan checks routes against table. Duplicate routes are reported once.
func Scan(routes []Route, table *Table) Report {
	seen := make(map[string]struct{}, len(routes))
	var report Report
	for _, rt := range routes {
		rt.Method = strings.ToUpper(rt.Method)
		key := routeKey(rt.Method, rt.Path)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		req, ok := table.Lookup(rt.Method, rt.Path)
		switch {
		case !ok:
			report.Routes = append(report.Routes, RouteStatus{Route: rt, Coverage: CoverageMissing})
		case req.Mode == ModePublic:
			report.Routes = append(report.Routes, RouteStatus{Route: rt, Coverage: CoveragePublic, Requirement: req.String()})
		default:
			report.Routes = append(report.Routes, RouteStatus{Route: rt, Coverage: CoverageProtected, Requirement: req.String()})
		}
	}

	for _, e := range table.Entries() {
		if _, ok := seen[routeKey(e.Method, e.Path)]; !ok {
			report.Stale = append(report.Stale, e)
		}
	}

	sort.Slice(report.Routes, func(i, j int) bool {
		a, b := report.Routes[i], report.Routes[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Method < b.Method
	})
	return report
}

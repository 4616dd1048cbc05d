// Package internaldefs carries the metric names shared by the Prometheus
// and OpenTelemetry exporters so the two expositions never drift.
package internaldefs

import (
	careauth "github.com/careloop/careauth"
)

// CounterDef binds one careauth counter to its exposition name.
type CounterDef struct {
	ID   careauth.MetricID
	Name string
	Help string
}

// HistogramDef binds one careauth latency histogram to its exposition name.
type HistogramDef struct {
	ID   careauth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: careauth.MetricLoginSuccess, Name: "careauth_login_success_total", Help: "Successful sign-ins."},
	{ID: careauth.MetricLoginFailure, Name: "careauth_login_failure_total", Help: "Rejected or failed sign-ins."},
	{ID: careauth.MetricRestoreSuccess, Name: "careauth_restore_success_total", Help: "Startup restorations that resolved an identity."},
	{ID: careauth.MetricRestoreAnonymous, Name: "careauth_restore_anonymous_total", Help: "Startup restorations with no stored session."},
	{ID: careauth.MetricRestoreFailure, Name: "careauth_restore_failure_total", Help: "Startup restorations that had tokens and failed."},
	{ID: careauth.MetricRefreshSuccess, Name: "careauth_refresh_success_total", Help: "Successful token pair rotations."},
	{ID: careauth.MetricRefreshFailure, Name: "careauth_refresh_failure_total", Help: "Failed rotations, each forcing a logout."},
	{ID: careauth.MetricLogout, Name: "careauth_logout_total", Help: "Explicit logouts."},
}

var HistogramDefs = []HistogramDef{
	{ID: careauth.MetricLoginLatency, Name: "careauth_login_latency_seconds", Help: "Sign-in round trip latency histogram."},
	{ID: careauth.MetricRestoreLatency, Name: "careauth_restore_latency_seconds", Help: "Restoration round trip latency histogram."},
	{ID: careauth.MetricRefreshLatency, Name: "careauth_refresh_latency_seconds", Help: "Rotation round trip latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, as exposed in the
// le label.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are instrument-name-safe forms of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// expositions require.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
